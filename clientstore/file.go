// Copyright 2016 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package clientstore keeps the client side backups cache on disk so
// pages fetched by one command are known to the next.
package clientstore

import (
	"os"
	"path/filepath"
	"time"

	"github.com/juju/clock"
	"github.com/juju/collections/set"
	"github.com/juju/errors"
	"github.com/juju/loggo"
	"github.com/juju/mutex/v2"
	"github.com/juju/utils/v4"
	"gopkg.in/yaml.v2"

	"github.com/linode/linode-backups/core/backups"
	"github.com/linode/linode-backups/rpc/params"
)

var logger = loggo.GetLogger("linode.clientstore")

// A second should be enough to write or read the file. But some disks
// are slow when under load, so give the lock a reasonable time.
var lockTimeout = 5 * time.Second

const lockName = "linode-backups-cache"

// FileStore reads and writes the backups cache file, holding a machine
// wide lock while doing so.
type FileStore struct {
	path  string
	clock clock.Clock
}

// NewFileStore returns a store that manages the cache file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, clock: clock.WallClock}
}

// Path returns the file the store manages.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) lock(operation string) (mutex.Releaser, error) {
	releaser, err := mutex.Acquire(mutex.Spec{
		Name:    lockName,
		Clock:   s.clock,
		Delay:   20 * time.Millisecond,
		Timeout: lockTimeout,
	})
	if err != nil {
		return nil, errors.Annotatef(err, "cannot %s", operation)
	}
	return releaser, nil
}

// Load returns the cached backups of every linode. A missing file
// yields an empty result.
func (s *FileStore) Load() (map[string]backups.Backups, error) {
	releaser, err := s.lock("read backups cache")
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer releaser.Release()
	return ReadBackupsFile(s.path)
}

// Update reads the cache file, hands its content to fn and writes back
// what fn returns. The lock is held throughout, so updates from
// concurrent processes are applied one after the other. Nothing is
// written if fn fails.
func (s *FileStore) Update(fn func(map[string]backups.Backups) (map[string]backups.Backups, error)) error {
	releaser, err := s.lock("update backups cache")
	if err != nil {
		return errors.Trace(err)
	}
	defer releaser.Release()

	current, err := ReadBackupsFile(s.path)
	if err != nil {
		return errors.Trace(err)
	}
	next, err := fn(current)
	if err != nil {
		return errors.Trace(err)
	}
	return WriteBackupsFile(s.path, next)
}

// backupsFile is the on-disk layout of the cache.
type backupsFile struct {
	Linodes map[string]linodeBackups `yaml:"linodes"`
}

type linodeBackups struct {
	TotalPages   int                      `yaml:"total-pages"`
	TotalResults int                      `yaml:"total-results"`
	PagesFetched []int                    `yaml:"pages-fetched,omitempty"`
	Backups      map[string]params.Backup `yaml:"backups,omitempty"`
}

// ReadBackupsFile loads the cache file at path.
func ReadBackupsFile(path string) (map[string]backups.Backups, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]backups.Backups{}, nil
		}
		return nil, errors.Trace(err)
	}
	var file backupsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Annotatef(err, "cannot unmarshal backups cache %q", path)
	}
	result := make(map[string]backups.Backups, len(file.Linodes))
	for id, l := range file.Linodes {
		b := backups.New()
		b.TotalPages = l.TotalPages
		b.TotalResults = l.TotalResults
		b.PagesFetched = set.NewInts(l.PagesFetched...)
		for backupID, backup := range l.Backups {
			b.Backups[backupID] = backup
		}
		result[id] = b
	}
	return result, nil
}

// WriteBackupsFile writes the snapshot to the file at path, creating
// the parent directory if needed.
func WriteBackupsFile(path string, snapshot map[string]backups.Backups) error {
	file := backupsFile{Linodes: make(map[string]linodeBackups, len(snapshot))}
	for id, b := range snapshot {
		l := linodeBackups{
			TotalPages:   b.TotalPages,
			TotalResults: b.TotalResults,
			Backups:      b.Backups,
		}
		if b.PagesFetched != nil {
			l.PagesFetched = b.PagesFetched.SortedValues()
		}
		file.Linodes[id] = l
	}
	data, err := yaml.Marshal(file)
	if err != nil {
		return errors.Annotate(err, "cannot marshal backups cache")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return errors.Annotate(err, "cannot create backups cache directory")
	}
	logger.Debugf("writing backups of %d linode(s) to %s", len(snapshot), path)
	return errors.Trace(utils.AtomicWriteFile(path, data, 0600))
}
