// Copyright 2014 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package backups_test

import (
	"net/http"

	"github.com/juju/cmd/v3/cmdtesting"
	"github.com/juju/errors"
	jc "github.com/juju/testing/checkers"
	"go.uber.org/mock/gomock"
	gc "gopkg.in/check.v1"
	"gopkg.in/yaml.v2"

	"github.com/linode/linode-backups/api/base"
	"github.com/linode/linode-backups/cmd/linode/backups"
	"github.com/linode/linode-backups/rpc/params"
)

type showSuite struct {
	BaseBackupsSuite
}

var _ = gc.Suite(&showSuite{})

func (s *showSuite) TestInit(c *gc.C) {
	err := cmdtesting.InitCommand(backups.NewShowCommand(), []string{"1234"})
	c.Check(err, gc.ErrorMatches, "backup id required")
}

func (s *showSuite) TestShow(c *gc.C) {
	defer s.setupMocks(c).Finish()
	backup := params.Backup{ID: "98765", Status: "successful", Type: "auto"}
	s.requester.EXPECT().Request(gomock.Any(), "/linodes/1234/backups/98765", base.RequestOptions{}, gomock.Any()).
		SetArg(3, backup).Return(nil)

	command := backups.NewShowCommandForTest(s.requester, s.store)
	ctx, err := cmdtesting.RunCommand(c, command, "--config", s.configPath, "1234", "98765")
	c.Assert(err, jc.ErrorIsNil)

	var out params.Backup
	err = yaml.Unmarshal([]byte(cmdtesting.Stdout(ctx)), &out)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(out, jc.DeepEquals, backup)
	c.Check(s.store.snapshot["1234"].Backups["98765"], jc.DeepEquals, backup)
}

func (s *showSuite) TestNotFound(c *gc.C) {
	defer s.setupMocks(c).Finish()
	s.requester.EXPECT().Request(gomock.Any(), "/linodes/1234/backups/98765", base.RequestOptions{}, gomock.Any()).
		Return(&params.Error{Status: http.StatusNotFound})

	command := backups.NewShowCommandForTest(s.requester, s.store)
	_, err := cmdtesting.RunCommand(c, command, "--config", s.configPath, "1234", "98765")
	c.Check(err, gc.ErrorMatches, `backup "98765" of linode "1234" not found`)
	c.Check(errors.Is(err, errors.NotFound), jc.IsTrue)
	c.Check(s.store.saves, gc.Equals, 0)
}
