// Copyright 2015 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package cmd holds the pieces shared by the linode commands.
package cmd

import (
	"runtime"

	"github.com/juju/cmd/v3"
	"github.com/juju/loggo"
)

var logger = loggo.GetLogger("linode.cmd")

// Version is the version reported by --version.
const Version = "0.3.0"

// NewSuperCommand is like cmd.NewSuperCommand but it adds
// linode-specific functionality:
// - The default logging configuration is the one given;
// - The version is configured to the current linode version;
// - The command emits a log message when a command runs.
func NewSuperCommand(p cmd.SuperCommandParams, loggingConfig string) *cmd.SuperCommand {
	p.Log = &cmd.Log{
		DefaultConfig: loggingConfig,
	}
	p.Version = Version
	p.NotifyRun = runNotifier
	return cmd.NewSuperCommand(p)
}

func runNotifier(name string) {
	logger.Infof("running %s [%s %s %s]", name, Version, runtime.Compiler, runtime.Version())
}

// Info returns the given command info with the defaults every linode
// command shares.
func Info(i *cmd.Info) *cmd.Info {
	info := *i
	info.FlagKnownAs = "option"
	info.ShowSuperFlags = []string{"show-log", "debug", "logging-config", "verbose", "quiet", "h", "help"}
	return &info
}
