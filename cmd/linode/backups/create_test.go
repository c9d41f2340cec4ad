// Copyright 2014 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package backups_test

import (
	"encoding/json"
	"time"

	"github.com/juju/cmd/v3/cmdtesting"
	jc "github.com/juju/testing/checkers"
	"go.uber.org/mock/gomock"
	gc "gopkg.in/check.v1"

	"github.com/linode/linode-backups/api/base"
	"github.com/linode/linode-backups/cmd/linode/backups"
	"github.com/linode/linode-backups/rpc/params"
)

type createSuite struct {
	BaseBackupsSuite
}

var _ = gc.Suite(&createSuite{})

var pendingBackup = params.Backup{
	ID:      "backup_123",
	Type:    "snapshot",
	Status:  "pending",
	Created: "2016-07-25T16:59:32",
}

func (s *createSuite) SetUpTest(c *gc.C) {
	s.BaseBackupsSuite.SetUpTest(c)
	s.PatchValue(backups.PollInterval, time.Millisecond)
}

func (s *createSuite) expectTake() {
	s.requester.EXPECT().Request(gomock.Any(), "/linodes/1234/backups", base.RequestOptions{Method: "POST"}, gomock.Any()).
		SetArg(3, pendingBackup).Return(nil)
}

func (s *createSuite) expectFetch(status string) *gomock.Call {
	backup := pendingBackup
	backup.Status = status
	return s.requester.EXPECT().Request(gomock.Any(), "/linodes/1234/backups/backup_123", base.RequestOptions{}, gomock.Any()).
		SetArg(3, backup).Return(nil)
}

func (s *createSuite) TestInit(c *gc.C) {
	err := cmdtesting.InitCommand(backups.NewCreateCommand(), []string{"1234", "--wait", "--timeout", "0s"})
	c.Check(err, gc.ErrorMatches, "timeout 0s not valid")
}

func (s *createSuite) TestCreate(c *gc.C) {
	defer s.setupMocks(c).Finish()
	backup := pendingBackup
	s.expectTake()

	command := backups.NewCreateCommandForTest(s.requester, s.store)
	ctx, err := cmdtesting.RunCommand(c, command, "--config", s.configPath, "1234", "--format", "json")
	c.Assert(err, jc.ErrorIsNil)
	c.Check(cmdtesting.Stderr(ctx), gc.Equals, "Backup \"backup_123\" of linode \"1234\" started.\n")

	var out params.Backup
	err = json.Unmarshal([]byte(cmdtesting.Stdout(ctx)), &out)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(out, jc.DeepEquals, backup)

	cached := s.store.snapshot["1234"]
	c.Check(cached.Backups["backup_123"], jc.DeepEquals, backup)
	c.Check(cached.PagesFetched.IsEmpty(), jc.IsTrue)
}

func (s *createSuite) TestCreateWait(c *gc.C) {
	defer s.setupMocks(c).Finish()
	s.expectTake()
	gomock.InOrder(
		s.expectFetch("running"),
		s.expectFetch("successful"),
	)

	command := backups.NewCreateCommandForTest(s.requester, s.store)
	ctx, err := cmdtesting.RunCommand(c, command, "--config", s.configPath, "1234", "--wait", "--format", "json")
	c.Assert(err, jc.ErrorIsNil)

	var out params.Backup
	err = json.Unmarshal([]byte(cmdtesting.Stdout(ctx)), &out)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(out.Status, gc.Equals, "successful")
	c.Check(s.store.snapshot["1234"].Backups["backup_123"].Status, gc.Equals, "successful")
}

func (s *createSuite) TestCreateWaitFailed(c *gc.C) {
	defer s.setupMocks(c).Finish()
	s.expectTake()
	s.expectFetch("failed")

	command := backups.NewCreateCommandForTest(s.requester, s.store)
	_, err := cmdtesting.RunCommand(c, command, "--config", s.configPath, "1234", "--wait")
	c.Check(err, gc.ErrorMatches, `backup "backup_123" of linode "1234" failed`)

	// The final state is still cached.
	c.Check(s.store.saves, gc.Equals, 1)
	c.Check(s.store.snapshot["1234"].Backups["backup_123"].Status, gc.Equals, "failed")
}

func (s *createSuite) TestCreateWaitTimeout(c *gc.C) {
	defer s.setupMocks(c).Finish()
	s.expectTake()
	s.expectFetch("running").AnyTimes()

	command := backups.NewCreateCommandForTest(s.requester, s.store)
	_, err := cmdtesting.RunCommand(c, command, "--config", s.configPath, "1234", "--wait", "--timeout", "50ms")
	c.Check(err, gc.ErrorMatches, `waiting for backup "backup_123": context deadline exceeded`)
	c.Check(s.store.saves, gc.Equals, 0)
}
