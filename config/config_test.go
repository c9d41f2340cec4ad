// Copyright 2017 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package config_test

import (
	"os"
	"path/filepath"
	"time"

	"github.com/juju/errors"
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/linode/linode-backups/config"
)

type ConfigSuite struct {
	testing.IsolationSuite
	dir string
}

var _ = gc.Suite(&ConfigSuite{})

func (s *ConfigSuite) SetUpTest(c *gc.C) {
	s.IsolationSuite.SetUpTest(c)
	s.dir = c.MkDir()
	s.PatchEnvironment("XDG_DATA_HOME", s.dir)
	s.PatchEnvironment("XDG_CONFIG_HOME", s.dir)
	for _, key := range []string{
		config.APIURLEnvKey,
		config.TokenEnvKey,
		config.CacheFileEnvKey,
		config.LoggingConfigEnvKey,
	} {
		s.PatchEnvironment(key, "")
	}
}

func (s *ConfigSuite) writeConfig(c *gc.C, content string) string {
	path := filepath.Join(s.dir, "config.yaml")
	err := os.WriteFile(path, []byte(content), 0600)
	c.Assert(err, jc.ErrorIsNil)
	return path
}

func (s *ConfigSuite) TestDefaults(c *gc.C) {
	cfg, err := config.New(map[string]interface{}{"token": "sekrit"})
	c.Assert(err, jc.ErrorIsNil)
	c.Check(cfg.APIURL(), gc.Equals, "https://api.linode.com/v4")
	c.Check(cfg.Token(), gc.Equals, "sekrit")
	c.Check(cfg.RequestTimeout(), gc.Equals, 30*time.Second)
	c.Check(cfg.RetryAttempts(), gc.Equals, 3)
	c.Check(cfg.RetryDelay(), gc.Equals, 500*time.Millisecond)
	c.Check(cfg.PageConcurrency(), gc.Equals, 4)
	c.Check(cfg.CacheFile(), gc.Equals, filepath.Join(s.dir, "linode", "backups.yaml"))
	c.Check(cfg.LoggingConfig(), gc.Equals, "<root>=WARNING")
}

func (s *ConfigSuite) TestValues(c *gc.C) {
	cfg, err := config.New(map[string]interface{}{
		"api-url":          "http://localhost:8080/v4",
		"token":            "sekrit",
		"request-timeout":  "1m",
		"retry-attempts":   5,
		"retry-delay":      "2s",
		"page-concurrency": "8",
		"cache-file":       "/tmp/cache.yaml",
		"logging-config":   "<root>=DEBUG",
	})
	c.Assert(err, jc.ErrorIsNil)
	c.Check(cfg.APIURL(), gc.Equals, "http://localhost:8080/v4")
	c.Check(cfg.RequestTimeout(), gc.Equals, time.Minute)
	c.Check(cfg.RetryAttempts(), gc.Equals, 5)
	c.Check(cfg.RetryDelay(), gc.Equals, 2*time.Second)
	c.Check(cfg.PageConcurrency(), gc.Equals, 8)
	c.Check(cfg.CacheFile(), gc.Equals, "/tmp/cache.yaml")
	c.Check(cfg.LoggingConfig(), gc.Equals, "<root>=DEBUG")
}

func (s *ConfigSuite) TestInvalid(c *gc.C) {
	for i, test := range []struct {
		about string
		attrs map[string]interface{}
		err   string
	}{{
		about: "missing token",
		attrs: map[string]interface{}{},
		err:   `validating config: token: expected string, got nothing`,
	}, {
		about: "empty token",
		attrs: map[string]interface{}{"token": ""},
		err:   `empty token not valid`,
	}, {
		about: "unknown key",
		attrs: map[string]interface{}{"token": "t", "colour": "blue"},
		err:   `unknown key "colour" not valid`,
	}, {
		about: "bad url",
		attrs: map[string]interface{}{"token": "t", "api-url": "ftp://example.com"},
		err:   `api-url "ftp://example.com" not valid`,
	}, {
		about: "bad timeout",
		attrs: map[string]interface{}{"token": "t", "request-timeout": "soon"},
		err:   `request-timeout "soon" not valid`,
	}, {
		about: "negative delay",
		attrs: map[string]interface{}{"token": "t", "retry-delay": "-1s"},
		err:   `retry-delay "-1s" not valid`,
	}, {
		about: "no attempts",
		attrs: map[string]interface{}{"token": "t", "retry-attempts": 0},
		err:   `retry-attempts 0 not valid`,
	}, {
		about: "not an int",
		attrs: map[string]interface{}{"token": "t", "page-concurrency": "many"},
		err:   `validating config: page-concurrency: .*`,
	}} {
		c.Logf("test %d: %s", i, test.about)
		_, err := config.New(test.attrs)
		c.Check(err, gc.ErrorMatches, test.err)
		c.Check(errors.Is(err, errors.NotValid), jc.IsTrue)
	}
}

func (s *ConfigSuite) TestRead(c *gc.C) {
	path := s.writeConfig(c, `
token: sekrit
retry-attempts: 7
cache-file: /var/cache/backups.yaml
`)
	cfg, err := config.Read(path)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(cfg.Token(), gc.Equals, "sekrit")
	c.Check(cfg.RetryAttempts(), gc.Equals, 7)
	c.Check(cfg.CacheFile(), gc.Equals, "/var/cache/backups.yaml")
}

func (s *ConfigSuite) TestReadMissingFileUsesEnvironment(c *gc.C) {
	s.PatchEnvironment(config.TokenEnvKey, "from-env")
	s.PatchEnvironment(config.APIURLEnvKey, "http://127.0.0.1:1234")

	cfg, err := config.Read(filepath.Join(s.dir, "missing.yaml"))
	c.Assert(err, jc.ErrorIsNil)
	c.Check(cfg.Token(), gc.Equals, "from-env")
	c.Check(cfg.APIURL(), gc.Equals, "http://127.0.0.1:1234")
}

func (s *ConfigSuite) TestEnvironmentOverridesFile(c *gc.C) {
	path := s.writeConfig(c, "token: from-file\nlogging-config: <root>=INFO\n")
	s.PatchEnvironment(config.TokenEnvKey, "from-env")
	s.PatchEnvironment(config.CacheFileEnvKey, "/elsewhere.yaml")

	cfg, err := config.Read(path)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(cfg.Token(), gc.Equals, "from-env")
	c.Check(cfg.CacheFile(), gc.Equals, "/elsewhere.yaml")
	c.Check(cfg.LoggingConfig(), gc.Equals, "<root>=INFO")
}

func (s *ConfigSuite) TestReadBadYAML(c *gc.C) {
	path := s.writeConfig(c, "token: [unclosed\n")
	_, err := config.Read(path)
	c.Check(err, gc.ErrorMatches, `parsing config ".*config.yaml": .*`)
}

func (s *ConfigSuite) TestReadInvalidValue(c *gc.C) {
	path := s.writeConfig(c, "token: t\nretry-delay: never\n")
	_, err := config.Read(path)
	c.Check(err, gc.ErrorMatches, `config ".*config.yaml": retry-delay "never" not valid`)
	c.Check(errors.Is(err, errors.NotValid), jc.IsTrue)
}

func (s *ConfigSuite) TestApplyEnvironmentCopies(c *gc.C) {
	s.PatchEnvironment(config.LoggingConfigEnvKey, "<root>=TRACE")
	attrs := map[string]interface{}{"token": "t"}
	result := config.ApplyEnvironment(attrs)
	c.Check(result, jc.DeepEquals, map[string]interface{}{
		"token":          "t",
		"logging-config": "<root>=TRACE",
	})
	c.Check(attrs, jc.DeepEquals, map[string]interface{}{"token": "t"})
}

func (s *ConfigSuite) TestDefaultPath(c *gc.C) {
	c.Check(config.DefaultPath(), gc.Equals, filepath.Join(s.dir, "linode", "config.yaml"))
}
