// Copyright 2017 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package config holds the client configuration: where the API lives,
// how to authenticate, how hard to retry and where to keep the local
// backups cache.
package config

import (
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/juju/errors"
	"github.com/juju/schema"
	"github.com/juju/utils/v4"
	"gopkg.in/juju/environschema.v1"
	"gopkg.in/yaml.v2"
)

const (
	APIURLKey          = "api-url"
	TokenKey           = "token"
	RequestTimeoutKey  = "request-timeout"
	RetryAttemptsKey   = "retry-attempts"
	RetryDelayKey      = "retry-delay"
	PageConcurrencyKey = "page-concurrency"
	CacheFileKey       = "cache-file"
	LoggingConfigKey   = "logging-config"
)

// DefaultAPIURL is the public Linode API.
const DefaultAPIURL = "https://api.linode.com/v4"

// Environment variables that override the matching config keys.
const (
	APIURLEnvKey        = "LINODE_API_URL"
	TokenEnvKey         = "LINODE_TOKEN"
	CacheFileEnvKey     = "LINODE_CACHE_FILE"
	LoggingConfigEnvKey = "LINODE_LOGGING_CONFIG"
)

var envOverrides = map[string]string{
	APIURLEnvKey:        APIURLKey,
	TokenEnvKey:         TokenKey,
	CacheFileEnvKey:     CacheFileKey,
	LoggingConfigEnvKey: LoggingConfigKey,
}

var configSchema = environschema.Fields{
	APIURLKey: {
		Description: "The base URL of the Linode API.",
		Type:        environschema.Tstring,
	},
	TokenKey: {
		Description: "The personal access token used to authenticate.",
		Type:        environschema.Tstring,
		Mandatory:   true,
		Secret:      true,
	},
	RequestTimeoutKey: {
		Description: "How long a single request may take, e.g. 30s.",
		Type:        environschema.Tstring,
	},
	RetryAttemptsKey: {
		Description: "How many times a read request is tried.",
		Type:        environschema.Tint,
	},
	RetryDelayKey: {
		Description: "The pause between attempts of a read request.",
		Type:        environschema.Tstring,
	},
	PageConcurrencyKey: {
		Description: "How many pages are fetched at once when listing every backup.",
		Type:        environschema.Tint,
	},
	CacheFileKey: {
		Description: "The file the backups cache is kept in.",
		Type:        environschema.Tstring,
	},
	LoggingConfigKey: {
		Description: "The logging configuration, e.g. <root>=INFO;linode.api=TRACE.",
		Type:        environschema.Tstring,
	},
}

var configFields = func() schema.Fields {
	fs, _, err := configSchema.ValidationSchema()
	if err != nil {
		panic(err)
	}
	return fs
}()

var configDefaults = schema.Defaults{
	APIURLKey:          DefaultAPIURL,
	RequestTimeoutKey:  "30s",
	RetryAttemptsKey:   3,
	RetryDelayKey:      "500ms",
	PageConcurrencyKey: 4,
	CacheFileKey:       "",
	LoggingConfigKey:   "<root>=WARNING",
}

// Config is a validated client configuration.
type Config struct {
	attrs map[string]interface{}
}

// New returns a Config from the given attributes, filling in defaults.
// Unknown keys and invalid values are rejected.
func New(attrs map[string]interface{}) (*Config, error) {
	for k := range attrs {
		if _, ok := configFields[k]; !ok {
			return nil, errors.NotValidf("unknown key %q", k)
		}
	}
	checker := schema.FieldMap(configFields, configDefaults)
	coerced, err := checker.Coerce(attrs, nil)
	if err != nil {
		return nil, errors.NewNotValid(err, "validating config")
	}
	cfg := &Config{attrs: coerced.(map[string]interface{})}
	if err := cfg.validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return cfg, nil
}

// Read loads the config from the YAML file at path, then applies the
// environment overrides. A missing file is treated as empty.
func Read(path string) (*Config, error) {
	attrs := make(map[string]interface{})
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, errors.Annotatef(err, "reading config %q", path)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &attrs); err != nil {
			return nil, errors.Annotatef(err, "parsing config %q", path)
		}
	}
	cfg, err := New(ApplyEnvironment(attrs))
	if err != nil {
		return nil, errors.Annotatef(err, "config %q", path)
	}
	return cfg, nil
}

// ApplyEnvironment returns a copy of attrs with every set override
// variable replacing its key.
func ApplyEnvironment(attrs map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{}, len(attrs))
	for k, v := range attrs {
		result[k] = v
	}
	for env, key := range envOverrides {
		if v := os.Getenv(env); v != "" {
			result[key] = v
		}
	}
	return result
}

// DefaultPath returns where the config file is looked for when none is
// given.
func DefaultPath() string {
	return filepath.Join(configHome(), "linode", "config.yaml")
}

// DefaultCacheFile returns where the backups cache is kept when the
// cache-file key is unset.
func DefaultCacheFile() string {
	return filepath.Join(dataHome(), "linode", "backups.yaml")
}

func configHome() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir
	}
	return filepath.Join(utils.Home(), ".config")
}

func dataHome() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return dir
	}
	return filepath.Join(utils.Home(), ".local", "share")
}

func (c *Config) validate() error {
	u, err := url.Parse(c.APIURL())
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.NotValidf("%s %q", APIURLKey, c.APIURL())
	}
	if c.Token() == "" {
		return errors.NotValidf("empty %s", TokenKey)
	}
	for _, key := range []string{RequestTimeoutKey, RetryDelayKey} {
		d, err := time.ParseDuration(c.attrs[key].(string))
		if err != nil || d <= 0 {
			return errors.NotValidf("%s %q", key, c.attrs[key])
		}
	}
	for _, key := range []string{RetryAttemptsKey, PageConcurrencyKey} {
		if n := c.int(key); n < 1 {
			return errors.NotValidf("%s %d", key, n)
		}
	}
	return nil
}

// APIURL returns the base URL of the API.
func (c *Config) APIURL() string {
	return c.attrs[APIURLKey].(string)
}

// Token returns the access token.
func (c *Config) Token() string {
	v, _ := c.attrs[TokenKey].(string)
	return v
}

// RequestTimeout returns how long a single request may take.
func (c *Config) RequestTimeout() time.Duration {
	return c.duration(RequestTimeoutKey)
}

// RetryAttempts returns how many times a read request is tried.
func (c *Config) RetryAttempts() int {
	return c.int(RetryAttemptsKey)
}

// RetryDelay returns the pause between attempts.
func (c *Config) RetryDelay() time.Duration {
	return c.duration(RetryDelayKey)
}

// PageConcurrency returns how many pages are fetched at once.
func (c *Config) PageConcurrency() int {
	return c.int(PageConcurrencyKey)
}

// CacheFile returns the path of the backups cache file.
func (c *Config) CacheFile() string {
	if v := c.attrs[CacheFileKey].(string); v != "" {
		return v
	}
	return DefaultCacheFile()
}

// LoggingConfig returns the loggo configuration string.
func (c *Config) LoggingConfig() string {
	return c.attrs[LoggingConfigKey].(string)
}

func (c *Config) duration(key string) time.Duration {
	d, _ := time.ParseDuration(c.attrs[key].(string))
	return d
}

func (c *Config) int(key string) int {
	switch v := c.attrs[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	}
	return 0
}
