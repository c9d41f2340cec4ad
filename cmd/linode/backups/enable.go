// Copyright 2014 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package backups

import (
	"context"

	"github.com/juju/cmd/v3"
	"github.com/juju/errors"

	apibackups "github.com/linode/linode-backups/api/backups"
	linodecmd "github.com/linode/linode-backups/cmd"
	"github.com/linode/linode-backups/core/cache"
)

const enableDoc = `
enable-backups turns on the backup service for a linode. Automatic
backups start on the linode's schedule; use create-backup for an
immediate snapshot.
`

const cancelDoc = `
cancel-backups turns off the backup service for a linode. The backups
already taken are removed by the server.
`

// NewEnableCommand returns a command used to enable backups of a linode.
func NewEnableCommand() cmd.Command {
	return &serviceCommand{
		CommandBase: newCommandBase(),
		info: cmd.Info{
			Name:     "enable-backups",
			Args:     "<linode-id>",
			Purpose:  "Enables the backup service for a linode.",
			Doc:      enableDoc,
			Examples: "\n    linode enable-backups 1234\n",
			SeeAlso:  []string{"cancel-backups", "create-backup"},
		},
		operation: (*apibackups.Client).EnableBackup,
		change: func(id string) cache.Mutation {
			return cache.LinodeChange{LinodeID: id}
		},
		done: "Backups enabled for linode %q.",
	}
}

// NewCancelCommand returns a command used to cancel backups of a linode.
func NewCancelCommand() cmd.Command {
	return &serviceCommand{
		CommandBase: newCommandBase(),
		info: cmd.Info{
			Name:     "cancel-backups",
			Args:     "<linode-id>",
			Purpose:  "Cancels the backup service for a linode.",
			Doc:      cancelDoc,
			Examples: "\n    linode cancel-backups 1234\n",
			SeeAlso:  []string{"enable-backups"},
		},
		operation: (*apibackups.Client).CancelBackup,
		change: func(id string) cache.Mutation {
			return cache.RemoveLinode{LinodeID: id}
		},
		done: "Backups cancelled for linode %q.",
	}
}

// serviceCommand switches the backup service of a linode on or off.
// Once the server has accepted the switch, change updates the cache:
// an enabled linode starts with an unfetched collection, and cancelling
// drops the backups the server deletes.
type serviceCommand struct {
	CommandBase

	info      cmd.Info
	operation func(*apibackups.Client, string) apibackups.Operation
	change    func(linodeID string) cache.Mutation
	done      string

	linodeID string
}

// Info implements Command.Info.
func (c *serviceCommand) Info() *cmd.Info {
	return linodecmd.Info(&c.info)
}

// Init implements Command.Init.
func (c *serviceCommand) Init(args []string) error {
	id, args, err := linodeArg(args)
	if err != nil {
		return errors.Trace(err)
	}
	c.linodeID = id
	return cmd.CheckEmpty(args)
}

// Run implements Command.Run.
func (c *serviceCommand) Run(ctx *cmd.Context) error {
	err := c.run(ctx, func(stdctx context.Context, s session) error {
		if err := c.operation(s.client, c.linodeID)(stdctx, s.dispatcher); err != nil {
			return errors.Trace(err)
		}
		s.dispatcher.Dispatch(c.change(c.linodeID))
		return nil
	})
	if err != nil {
		return errors.Trace(err)
	}
	ctx.Infof(c.done, c.linodeID)
	return nil
}
