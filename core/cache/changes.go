// Copyright 2018 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package cache

import (
	"github.com/linode/linode-backups/rpc/params"
)

// Mutation is a serializable description of one change to the client
// state. It is one of LinodeChange, RemoveLinode, ReplaceCollectionPage
// or ReplaceOne.
type Mutation interface {
	mutation()
}

// LinodeChange represents a linode entering the client state. A new
// linode starts with an empty backups collection; a known one keeps
// what is cached for it.
type LinodeChange struct {
	LinodeID string
}

// RemoveLinode represents the linode leaving the client state, along
// with everything cached for it.
type RemoveLinode struct {
	LinodeID string
}

// ReplaceCollectionPage carries one fetched page of a linode's backups
// collection, exactly as the server returned it.
type ReplaceCollectionPage struct {
	LinodeID string
	Response params.BackupsPage
}

// ReplaceOne carries the authoritative state of a single backup.
type ReplaceOne struct {
	LinodeID string
	BackupID string
	Backup   params.Backup
}

func (LinodeChange) mutation()          {}
func (RemoveLinode) mutation()          {}
func (ReplaceCollectionPage) mutation() {}
func (ReplaceOne) mutation()            {}
