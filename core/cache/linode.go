// Copyright 2019 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package cache

import (
	"github.com/linode/linode-backups/core/backups"
)

// Linode represents a linode in the client state.
type Linode struct {
	id      string
	backups backups.Backups
}

func newLinode(id string) *Linode {
	return &Linode{
		id:      id,
		backups: backups.New(),
	}
}

// Note that these property accessors are not lock-protected.
// They are intended for calling on copies handed out by the Store.

// ID returns the linode id.
func (l *Linode) ID() string {
	return l.id
}

// Backups returns the cached backups collection of the linode.
func (l *Linode) Backups() backups.Backups {
	return l.backups
}

func (l *Linode) copy() *Linode {
	return &Linode{
		id:      l.id,
		backups: l.backups.Copy(),
	}
}
