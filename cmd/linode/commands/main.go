// Copyright 2012, 2013 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package commands

import (
	"fmt"
	"os"

	"github.com/juju/cmd/v3"

	linodecmd "github.com/linode/linode-backups/cmd"
	"github.com/linode/linode-backups/cmd/linode/backups"
	"github.com/linode/linode-backups/config"
)

var linodeDoc = `
linode manages the backups of Linode instances.

Each command makes one call to the Linode API and keeps what it learns
in a local cache, so later commands know which pages of a linode's
backups have already been fetched.

The API token is read from the config file (see --config) or from the
LINODE_TOKEN environment variable.
`

// Main registers subcommands for the linode executable, and hands over
// control to the cmd package. This function is not redundant with main,
// because it provides an entry point for testing with arbitrary command
// line arguments.
func Main(args []string) {
	ctx, err := cmd.DefaultContext()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}
	os.Exit(cmd.Main(NewLinodeCommand(), ctx, args[1:]))
}

// NewLinodeCommand returns the linode super command with every
// subcommand registered.
func NewLinodeCommand() cmd.Command {
	lcmd := linodecmd.NewSuperCommand(cmd.SuperCommandParams{
		Name: "linode",
		Doc:  linodeDoc,
	}, loggingConfig())
	registerCommands(lcmd)
	return lcmd
}

type commandRegistry interface {
	Register(cmd.Command)
}

// registerCommands registers commands in the specified registry.
func registerCommands(r commandRegistry) {
	// Reporting commands.
	r.Register(backups.NewListCommand())
	r.Register(backups.NewShowCommand())

	// Service commands.
	r.Register(backups.NewEnableCommand())
	r.Register(backups.NewCancelCommand())

	// Backup commands.
	r.Register(backups.NewCreateCommand())
	r.Register(backups.NewRestoreCommand())
}

// loggingConfig returns the logging configuration to start with. The
// --logging-config and --debug options still take precedence.
func loggingConfig() string {
	if v := os.Getenv(config.LoggingConfigEnvKey); v != "" {
		return v
	}
	cfg, err := config.Read(config.DefaultPath())
	if err != nil {
		return ""
	}
	return cfg.LoggingConfig()
}
