// Copyright 2016 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package params

// Datacenter identifies where a backup is stored.
type Datacenter struct {
	ID         string `json:"id" yaml:"id"`
	Label      string `json:"label" yaml:"label"`
	Datacenter string `json:"datacenter" yaml:"datacenter"`
}

// BackupDisk describes one disk captured by a backup.
type BackupDisk struct {
	Label      string `json:"label" yaml:"label"`
	Size       int64  `json:"size" yaml:"size"`
	Filesystem string `json:"filesystem" yaml:"filesystem"`
}

// Backup holds a backup of a linode, as reported by the server. All
// fields are supplied by the server and replaced wholesale on update.
type Backup struct {
	ID         string     `json:"id" yaml:"id"`
	Type       string     `json:"type,omitempty" yaml:"type,omitempty"`
	Created    string     `json:"created,omitempty" yaml:"created,omitempty"`
	Updated    string     `json:"updated,omitempty" yaml:"updated,omitempty"`
	Finished   *string    `json:"finished,omitempty" yaml:"finished,omitempty"`
	Status     string     `json:"status,omitempty" yaml:"status,omitempty"`
	Label      string     `json:"label,omitempty" yaml:"label,omitempty"`
	Datacenter Datacenter `json:"datacenter,omitempty" yaml:"datacenter,omitempty"`

	Configs      []string     `json:"configs,omitempty" yaml:"configs,omitempty"`
	Disks        []BackupDisk `json:"disks,omitempty" yaml:"disks,omitempty"`
	Availability string       `json:"availability,omitempty" yaml:"availability,omitempty"`
}

// BackupsPage is one page of a linode's backups collection.
type BackupsPage struct {
	Backups      []Backup `json:"backups" yaml:"backups"`
	Page         int      `json:"page" yaml:"page"`
	TotalPages   int      `json:"total_pages" yaml:"total_pages"`
	TotalResults int      `json:"total_results" yaml:"total_results"`
}

// RestoreBackupArgs is the body of a restore request. Linode names the
// destination linode; Overwrite allows replacing its existing disks.
type RestoreBackupArgs struct {
	Linode    string `json:"linode"`
	Overwrite bool   `json:"overwrite"`
}
