// Copyright 2014 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package backups

import (
	"context"

	"github.com/juju/cmd/v3"
	"github.com/juju/errors"
	"github.com/juju/gnuflag"

	linodecmd "github.com/linode/linode-backups/cmd"
)

const restoreDoc = `
restore-backup restores a backup of a linode onto a target linode. The
target defaults to the linode the backup was taken from.

Without --overwrite the backup's disks are added next to the target's
existing disks, which fails if the target lacks the space.
`

const restoreExamples = `
    linode restore-backup 1234 98765
    linode restore-backup 1234 98765 --target 5678 --overwrite
`

// NewRestoreCommand returns a command used to restore a backup.
func NewRestoreCommand() cmd.Command {
	return &restoreCommand{CommandBase: newCommandBase()}
}

type restoreCommand struct {
	CommandBase

	linodeID  string
	backupID  string
	targetID  string
	overwrite bool
}

// Info implements Command.Info.
func (c *restoreCommand) Info() *cmd.Info {
	return linodecmd.Info(&cmd.Info{
		Name:     "restore-backup",
		Args:     "<linode-id> <backup-id>",
		Purpose:  "Restores a backup onto a linode.",
		Doc:      restoreDoc,
		Examples: restoreExamples,
		SeeAlso: []string{
			"backups",
			"show-backup",
		},
	})
}

// SetFlags implements Command.SetFlags.
func (c *restoreCommand) SetFlags(f *gnuflag.FlagSet) {
	c.CommandBase.SetFlags(f)
	f.StringVar(&c.targetID, "target", "", "The linode to restore onto")
	f.BoolVar(&c.overwrite, "overwrite", false, "Replace the target's existing disks")
}

// Init implements Command.Init.
func (c *restoreCommand) Init(args []string) error {
	id, args, err := linodeArg(args)
	if err != nil {
		return errors.Trace(err)
	}
	if len(args) == 0 || args[0] == "" {
		return errors.New("backup id required")
	}
	c.linodeID, c.backupID = id, args[0]
	if c.targetID == "" {
		c.targetID = c.linodeID
	}
	return cmd.CheckEmpty(args[1:])
}

// Run implements Command.Run.
func (c *restoreCommand) Run(ctx *cmd.Context) error {
	err := c.run(ctx, func(stdctx context.Context, s session) error {
		op := s.client.RestoreBackupOverwrite(c.linodeID, c.targetID, c.backupID, c.overwrite)
		return errors.Trace(op(stdctx, s.dispatcher))
	})
	if err != nil {
		return errors.Trace(err)
	}
	ctx.Infof("Restoring backup %q onto linode %q.", c.backupID, c.targetID)
	return nil
}
