// Copyright 2016 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package backups holds the client side view of a linode's backups
// and the pure functions that fold server responses into it.
package backups

import (
	"github.com/juju/collections/set"

	"github.com/linode/linode-backups/rpc/params"
)

// Unknown is the value of TotalPages and TotalResults before the first
// page of a collection has been merged.
const Unknown = -1

// Backups is the cached backups collection of one linode.
type Backups struct {
	// TotalPages and TotalResults are taken from the most recently
	// merged page. They may shrink or grow between fetches.
	TotalPages   int
	TotalResults int

	// PagesFetched holds the 1-based page numbers merged so far.
	// It only ever grows.
	PagesFetched set.Ints

	// Backups is keyed on backup id. Entries are added or replaced,
	// never removed, by a fetch.
	Backups map[string]params.Backup
}

// New returns the sub-record a linode starts with.
func New() Backups {
	return Backups{
		TotalPages:   Unknown,
		TotalResults: Unknown,
		PagesFetched: set.NewInts(),
		Backups:      make(map[string]params.Backup),
	}
}

// Copy returns a deep copy of b.
func (b Backups) Copy() Backups {
	out := Backups{
		TotalPages:   b.TotalPages,
		TotalResults: b.TotalResults,
		PagesFetched: set.NewInts(b.PagesFetched.Values()...),
		Backups:      make(map[string]params.Backup, len(b.Backups)),
	}
	for id, backup := range b.Backups {
		out.Backups[id] = copyBackup(backup)
	}
	return out
}

// MissingPages returns the pages of the collection, in order, that have
// not been merged yet. Nothing is missing while the page count is
// unknown.
func (b Backups) MissingPages() []int {
	var missing []int
	for page := 1; page <= b.TotalPages; page++ {
		if !b.PagesFetched.Contains(page) {
			missing = append(missing, page)
		}
	}
	return missing
}

// MergePage folds one fetched page into current and returns the result.
// current is left untouched.
//
// The totals are overwritten, the page number is added to PagesFetched
// and every backup in the page replaces any cached entry with the same
// id. Entries absent from the page are kept. Merging is idempotent, and
// commutative for pages with disjoint backup ids, so pages may arrive in
// any order and any number of times.
func MergePage(current Backups, page params.BackupsPage) Backups {
	next := current.Copy()
	next.TotalPages = page.TotalPages
	next.TotalResults = page.TotalResults
	next.PagesFetched.Add(page.Page)
	for _, backup := range page.Backups {
		next.Backups[backup.ID] = copyBackup(backup)
	}
	return next
}

// ReplaceBackup returns current with the backup stored under id,
// replacing any previous entry wholesale.
func ReplaceBackup(current Backups, id string, backup params.Backup) Backups {
	next := current.Copy()
	next.Backups[id] = copyBackup(backup)
	return next
}

func copyBackup(b params.Backup) params.Backup {
	if b.Finished != nil {
		finished := *b.Finished
		b.Finished = &finished
	}
	if b.Configs != nil {
		b.Configs = append([]string(nil), b.Configs...)
	}
	if b.Disks != nil {
		b.Disks = append([]params.BackupDisk(nil), b.Disks...)
	}
	return b
}
