// Copyright 2014 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package backups_test

import (
	"os"
	"path/filepath"

	"github.com/juju/errors"
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	"go.uber.org/mock/gomock"
	gc "gopkg.in/check.v1"

	basemocks "github.com/linode/linode-backups/api/base/mocks"
	"github.com/linode/linode-backups/core/backups"
)

// memoryStore is a CacheStore kept in memory.
type memoryStore struct {
	snapshot map[string]backups.Backups
	saves    int
	loadErr  error
}

func (s *memoryStore) Load() (map[string]backups.Backups, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.snapshot, nil
}

func (s *memoryStore) Update(fn func(map[string]backups.Backups) (map[string]backups.Backups, error)) error {
	next, err := fn(s.snapshot)
	if err != nil {
		return err
	}
	s.snapshot = next
	s.saves++
	return nil
}

// BaseBackupsSuite writes a client config and provides the fakes the
// commands run against.
type BaseBackupsSuite struct {
	testing.IsolationSuite

	configPath string
	store      *memoryStore
	requester  *basemocks.MockRequester
}

func (s *BaseBackupsSuite) SetUpTest(c *gc.C) {
	s.IsolationSuite.SetUpTest(c)
	for _, key := range []string{"LINODE_API_URL", "LINODE_TOKEN", "LINODE_CACHE_FILE", "LINODE_LOGGING_CONFIG"} {
		s.PatchEnvironment(key, "")
	}
	dir := c.MkDir()
	s.configPath = filepath.Join(dir, "config.yaml")
	err := os.WriteFile(s.configPath, []byte("token: sekrit\npage-concurrency: 2\n"), 0600)
	c.Assert(err, jc.ErrorIsNil)
	s.store = &memoryStore{snapshot: map[string]backups.Backups{}}
}

func (s *BaseBackupsSuite) setupMocks(c *gc.C) *gomock.Controller {
	ctrl := gomock.NewController(c)
	s.requester = basemocks.NewMockRequester(ctrl)
	return ctrl
}

var errFailed = errors.New("failed!")
