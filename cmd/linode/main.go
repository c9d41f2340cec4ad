// Copyright 2012, 2013 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"os"

	"github.com/linode/linode-backups/cmd/linode/commands"
)

func main() {
	commands.Main(os.Args)
}
