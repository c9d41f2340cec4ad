// Copyright 2014 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package backups

import (
	"context"

	"github.com/juju/cmd/v3"
	"github.com/juju/errors"
	"github.com/juju/gnuflag"

	linodecmd "github.com/linode/linode-backups/cmd"
	"github.com/linode/linode-backups/rpc/params"
)

const showDoc = `
show-backup fetches a single backup of a linode and shows it.
`

const showExamples = `
    linode show-backup 1234 98765
`

// NewShowCommand returns a command used to show one backup.
func NewShowCommand() cmd.Command {
	return &showCommand{CommandBase: newCommandBase()}
}

type showCommand struct {
	CommandBase
	out cmd.Output

	linodeID string
	backupID string
}

// Info implements Command.Info.
func (c *showCommand) Info() *cmd.Info {
	return linodecmd.Info(&cmd.Info{
		Name:     "show-backup",
		Args:     "<linode-id> <backup-id>",
		Purpose:  "Shows a backup of a linode.",
		Doc:      showDoc,
		Examples: showExamples,
		SeeAlso: []string{
			"backups",
			"restore-backup",
		},
	})
}

// SetFlags implements Command.SetFlags.
func (c *showCommand) SetFlags(f *gnuflag.FlagSet) {
	c.CommandBase.SetFlags(f)
	c.out.AddFlags(f, "yaml", map[string]cmd.Formatter{
		"yaml": cmd.FormatYaml,
		"json": cmd.FormatJson,
	})
}

// Init implements Command.Init.
func (c *showCommand) Init(args []string) error {
	id, args, err := linodeArg(args)
	if err != nil {
		return errors.Trace(err)
	}
	if len(args) == 0 || args[0] == "" {
		return errors.New("backup id required")
	}
	c.linodeID, c.backupID = id, args[0]
	return cmd.CheckEmpty(args[1:])
}

// Run implements Command.Run.
func (c *showCommand) Run(ctx *cmd.Context) error {
	var result params.Backup
	err := c.run(ctx, func(stdctx context.Context, s session) error {
		var err error
		result, err = s.client.FetchBackup(c.linodeID, c.backupID)(stdctx, s.dispatcher)
		if errors.Is(err, errors.NotFound) {
			return errors.NotFoundf("backup %q of linode %q", c.backupID, c.linodeID)
		}
		return errors.Trace(err)
	})
	if err != nil {
		return errors.Trace(err)
	}
	return c.out.Write(ctx, result)
}
