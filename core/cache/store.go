// Copyright 2018 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package cache holds the client side state of linodes and their
// backups. The Store is the only writer of that state and is changed
// exclusively by dispatching Mutation records to it.
package cache

import (
	"sync"

	"github.com/juju/errors"
	"github.com/juju/loggo"
	"github.com/juju/pubsub/v2"

	"github.com/linode/linode-backups/core/backups"
)

var logger = loggo.GetLogger("linode.core.cache")

const linodeUpdatedTopic = "linode-updated"

// Store is a single-writer container for the client state. Each
// dispatched Mutation is applied atomically with respect to readers,
// and readers only ever see copies.
type Store struct {
	mu      sync.Mutex
	linodes map[string]*Linode
	hub     *pubsub.SimpleHub
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		linodes: make(map[string]*Linode),
		hub:     pubsub.NewSimpleHub(&pubsub.SimpleHubConfig{Logger: logger}),
	}
}

// NewStoreFromSnapshot returns a store seeded with previously cached
// backups collections, keyed on linode id.
func NewStoreFromSnapshot(snapshot map[string]backups.Backups) *Store {
	s := NewStore()
	for id, b := range snapshot {
		l := newLinode(id)
		l.backups = b.Copy()
		s.linodes[id] = l
	}
	return s
}

// Dispatch applies the mutation to the store and notifies the watchers
// of the affected linode. It implements backups.Dispatcher.
func (s *Store) Dispatch(m Mutation) {
	id, ok := s.apply(m)
	if !ok {
		return
	}
	s.hub.Publish(linodeUpdatedTopic, id)
}

func (s *Store) apply(m Mutation) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch ch := m.(type) {
	case LinodeChange:
		s.ensureLinode(ch.LinodeID)
		return ch.LinodeID, true
	case RemoveLinode:
		if _, found := s.linodes[ch.LinodeID]; !found {
			return "", false
		}
		delete(s.linodes, ch.LinodeID)
		return ch.LinodeID, true
	case ReplaceCollectionPage:
		l := s.ensureLinode(ch.LinodeID)
		l.backups = backups.MergePage(l.backups, ch.Response)
		logger.Tracef("merged page %d of %d for linode %q", ch.Response.Page, ch.Response.TotalPages, ch.LinodeID)
		return ch.LinodeID, true
	case ReplaceOne:
		l := s.ensureLinode(ch.LinodeID)
		l.backups = backups.ReplaceBackup(l.backups, ch.BackupID, ch.Backup)
		logger.Tracef("replaced backup %q for linode %q", ch.BackupID, ch.LinodeID)
		return ch.LinodeID, true
	default:
		logger.Criticalf("programming error: unexpected mutation %T", m)
		return "", false
	}
}

// ensureLinode must be called with the lock held.
func (s *Store) ensureLinode(id string) *Linode {
	l, found := s.linodes[id]
	if !found {
		logger.Debugf("adding linode %q", id)
		l = newLinode(id)
		s.linodes[id] = l
	}
	return l
}

// Linode returns a copy of the cached linode with the given id.
func (s *Store) Linode(id string) (*Linode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, found := s.linodes[id]
	if !found {
		return nil, errors.NotFoundf("linode %q", id)
	}
	return l.copy(), nil
}

// Backups returns a copy of the backups collection cached for the linode.
func (s *Store) Backups(linodeID string) (backups.Backups, error) {
	l, err := s.Linode(linodeID)
	if err != nil {
		return backups.Backups{}, errors.Trace(err)
	}
	return l.backups, nil
}

// Snapshot returns a copy of every cached backups collection, keyed on
// linode id.
func (s *Store) Snapshot() map[string]backups.Backups {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]backups.Backups, len(s.linodes))
	for id, l := range s.linodes {
		out[id] = l.backups.Copy()
	}
	return out
}

// WatchLinode returns a watcher that notifies once straight away and
// then each time a mutation touches the linode.
func (s *Store) WatchLinode(id string) LinodeWatcher {
	return newLinodeWatcher(id, s.hub)
}
