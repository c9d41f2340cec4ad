// Copyright 2012, 2013 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package commands

import (
	"sort"

	"github.com/juju/cmd/v3"
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"
)

type MainSuite struct {
	testing.IsolationSuite
}

var _ = gc.Suite(&MainSuite{})

type stubRegistry struct {
	names []string
}

func (r *stubRegistry) Register(c cmd.Command) {
	r.names = append(r.names, c.Info().Name)
}

func (s *MainSuite) TestRegisteredCommands(c *gc.C) {
	var registry stubRegistry
	registerCommands(&registry)
	sort.Strings(registry.names)
	c.Check(registry.names, jc.DeepEquals, []string{
		"backups",
		"cancel-backups",
		"create-backup",
		"enable-backups",
		"restore-backup",
		"show-backup",
	})
}

func (s *MainSuite) TestLoggingConfigFromEnvironment(c *gc.C) {
	s.PatchEnvironment("LINODE_LOGGING_CONFIG", "<root>=TRACE")
	c.Check(loggingConfig(), gc.Equals, "<root>=TRACE")
}

func (s *MainSuite) TestLoggingConfigWithoutConfigFile(c *gc.C) {
	s.PatchEnvironment("LINODE_LOGGING_CONFIG", "")
	s.PatchEnvironment("LINODE_TOKEN", "")
	s.PatchEnvironment("XDG_CONFIG_HOME", c.MkDir())
	c.Check(loggingConfig(), gc.Equals, "")
}
