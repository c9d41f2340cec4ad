// Copyright 2014 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package backups

import (
	"context"
	"time"

	"github.com/juju/cmd/v3"
	"github.com/juju/errors"
	"github.com/juju/gnuflag"

	linodecmd "github.com/linode/linode-backups/cmd"
	"github.com/linode/linode-backups/rpc/params"
)

const createDoc = `
create-backup takes a snapshot of a linode straight away. The backup
service must be enabled for the linode. The new backup is shown and
added to the local cache.

With --wait the command keeps fetching the backup until it has either
succeeded or failed, or until --timeout has passed.
`

const createExamples = `
    linode create-backup 1234
    linode create-backup 1234 --format json
    linode create-backup 1234 --wait --timeout 1h
`

// Backup statuses the server reports once a backup is over.
const (
	statusSuccessful  = "successful"
	statusFailed      = "failed"
	statusUserAborted = "userAborted"
)

// pollInterval is how often a backup is fetched while waiting for it.
var pollInterval = 10 * time.Second

// NewCreateCommand returns a command used to take a backup of a linode.
func NewCreateCommand() cmd.Command {
	return &createCommand{CommandBase: newCommandBase()}
}

type createCommand struct {
	CommandBase
	out cmd.Output

	linodeID string
	wait     bool
	timeout  time.Duration
}

// Info implements Command.Info.
func (c *createCommand) Info() *cmd.Info {
	return linodecmd.Info(&cmd.Info{
		Name:     "create-backup",
		Args:     "<linode-id>",
		Purpose:  "Takes a snapshot backup of a linode.",
		Doc:      createDoc,
		Examples: createExamples,
		SeeAlso: []string{
			"backups",
			"enable-backups",
		},
	})
}

// SetFlags implements Command.SetFlags.
func (c *createCommand) SetFlags(f *gnuflag.FlagSet) {
	c.CommandBase.SetFlags(f)
	f.BoolVar(&c.wait, "wait", false, "Wait for the backup to finish")
	f.DurationVar(&c.timeout, "timeout", 30*time.Minute, "How long to wait for the backup with --wait")
	c.out.AddFlags(f, "yaml", map[string]cmd.Formatter{
		"yaml": cmd.FormatYaml,
		"json": cmd.FormatJson,
	})
}

// Init implements Command.Init.
func (c *createCommand) Init(args []string) error {
	id, args, err := linodeArg(args)
	if err != nil {
		return errors.Trace(err)
	}
	c.linodeID = id
	if c.timeout <= 0 {
		return errors.NotValidf("timeout %v", c.timeout)
	}
	return cmd.CheckEmpty(args)
}

// Run implements Command.Run.
func (c *createCommand) Run(ctx *cmd.Context) error {
	var result params.Backup
	err := c.run(ctx, func(stdctx context.Context, s session) error {
		var err error
		result, err = s.client.TakeBackup(c.linodeID)(stdctx, s.dispatcher)
		if err != nil {
			return errors.Trace(err)
		}
		ctx.Infof("Backup %q of linode %q started.", result.ID, c.linodeID)
		if !c.wait {
			return nil
		}
		result, err = c.waitForBackup(stdctx, s, result.ID)
		return errors.Trace(err)
	})
	if err != nil {
		return errors.Trace(err)
	}
	if err := c.out.Write(ctx, result); err != nil {
		return errors.Trace(err)
	}
	if c.wait && result.Status != statusSuccessful {
		return errors.Errorf("backup %q of linode %q %s", result.ID, c.linodeID, result.Status)
	}
	return nil
}

// waitForBackup re-fetches the backup every poll interval until it is
// over. The cached linode is watched, so the backup's status is read
// back from the store each time a fetch has been dispatched into it.
func (c *createCommand) waitForBackup(ctx context.Context, s session, backupID string) (params.Backup, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	w := s.store.WatchLinode(c.linodeID)
	defer func() { _ = w.Stop() }()

	fetch := s.client.FetchBackup(c.linodeID, backupID)
	for {
		select {
		case <-ctx.Done():
			return params.Backup{}, errors.Annotatef(ctx.Err(), "waiting for backup %q", backupID)
		case _, ok := <-w.Changes():
			if !ok {
				return params.Backup{}, errors.Errorf("watcher for linode %q stopped", c.linodeID)
			}
		}

		cached, err := s.store.Backups(c.linodeID)
		if err != nil {
			return params.Backup{}, errors.Trace(err)
		}
		backup := cached.Backups[backupID]
		switch backup.Status {
		case statusSuccessful, statusFailed, statusUserAborted:
			return backup, nil
		}
		logger.Debugf("backup %q of linode %q is %s", backupID, c.linodeID, backup.Status)

		select {
		case <-ctx.Done():
			return params.Backup{}, errors.Annotatef(ctx.Err(), "waiting for backup %q", backupID)
		case <-c.clock.After(pollInterval):
		}
		if _, err := fetch(ctx, s.dispatcher); err != nil {
			return params.Backup{}, errors.Trace(err)
		}
	}
}
