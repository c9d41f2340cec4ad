// Copyright 2014 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package backups holds the commands that act on linode backups.
package backups

import (
	"context"
	"io"

	"github.com/juju/clock"
	"github.com/juju/cmd/v3"
	"github.com/juju/errors"
	"github.com/juju/gnuflag"
	"github.com/juju/loggo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	apibackups "github.com/linode/linode-backups/api/backups"
	"github.com/linode/linode-backups/api/base"
	"github.com/linode/linode-backups/api/httpclient"
	"github.com/linode/linode-backups/clientstore"
	"github.com/linode/linode-backups/config"
	"github.com/linode/linode-backups/core/backups"
	"github.com/linode/linode-backups/core/cache"
)

var logger = loggo.GetLogger("linode.cmd.backups")

// CacheStore persists the backups cache between commands.
type CacheStore interface {
	Load() (map[string]backups.Backups, error)
	Update(func(map[string]backups.Backups) (map[string]backups.Backups, error)) error
}

// session is what a command runs its operation with. Operations
// dispatch through the recorder so the same mutations can be applied
// to the cache file when the command is done.
type session struct {
	client     *apibackups.Client
	store      *cache.Store
	dispatcher *recorder
	config     *config.Config
}

// recorder applies mutations to a store and remembers them in order.
type recorder struct {
	store   *cache.Store
	applied []cache.Mutation
}

// Dispatch is part of the apibackups.Dispatcher interface.
func (r *recorder) Dispatch(m cache.Mutation) {
	r.store.Dispatch(m)
	r.applied = append(r.applied, m)
}

// replay applies the recorded mutations on top of snapshot. Merging a
// page or replacing a backup commutes with whatever other commands
// wrote in the meantime, so nothing they cached is lost.
func (r *recorder) replay(snapshot map[string]backups.Backups) map[string]backups.Backups {
	store := cache.NewStoreFromSnapshot(snapshot)
	for _, m := range r.applied {
		store.Dispatch(m)
	}
	return store.Snapshot()
}

// CommandBase is the base type for backups commands.
type CommandBase struct {
	cmd.CommandBase

	configPath  string
	showMetrics bool
	clock       clock.Clock

	newRequester  func(*config.Config, *httpclient.Collector) (base.Requester, error)
	newCacheStore func(path string) CacheStore
}

func newCommandBase() CommandBase {
	return CommandBase{
		clock:         clock.WallClock,
		newRequester:  newRequester,
		newCacheStore: newCacheStore,
	}
}

// SetFlags implements Command.SetFlags.
func (c *CommandBase) SetFlags(f *gnuflag.FlagSet) {
	c.CommandBase.SetFlags(f)
	f.StringVar(&c.configPath, "config", config.DefaultPath(), "The client config file")
	f.BoolVar(&c.showMetrics, "show-metrics", false, "Print API request metrics to stderr when done")
}

func newRequester(cfg *config.Config, collector *httpclient.Collector) (base.Requester, error) {
	client, err := httpclient.New(httpclient.Config{
		BaseURL:       cfg.APIURL(),
		Token:         cfg.Token(),
		Timeout:       cfg.RequestTimeout(),
		RetryAttempts: cfg.RetryAttempts(),
		RetryDelay:    cfg.RetryDelay(),
		Clock:         clock.WallClock,
		Transport:     httpclient.DefaultHTTPTransport(collector),
	})
	return client, errors.Trace(err)
}

func newCacheStore(path string) CacheStore {
	return clientstore.NewFileStore(path)
}

// run loads the config and the cache and hands both to fn. If fn
// succeeds, the mutations it dispatched are applied to the cache file
// as it is by then, not to the copy loaded here.
func (c *CommandBase) run(ctx *cmd.Context, fn func(context.Context, session) error) error {
	cfg, err := config.Read(ctx.AbsPath(c.configPath))
	if err != nil {
		return errors.Trace(err)
	}
	collector := httpclient.NewMetricsCollector()
	requester, err := c.newRequester(cfg, collector)
	if err != nil {
		return errors.Trace(err)
	}

	cacheStore := c.newCacheStore(cfg.CacheFile())
	snapshot, err := cacheStore.Load()
	if err != nil {
		return errors.Annotate(err, "cannot load backups cache")
	}
	store := cache.NewStoreFromSnapshot(snapshot)
	rec := &recorder{store: store}

	err = fn(context.Background(), session{
		client:     apibackups.NewClient(requester),
		store:      store,
		dispatcher: rec,
		config:     cfg,
	})
	if c.showMetrics {
		if merr := writeMetrics(ctx.Stderr, collector); merr != nil {
			logger.Warningf("cannot write metrics: %v", merr)
		}
	}
	if err != nil {
		return errors.Trace(err)
	}
	if len(rec.applied) == 0 {
		return nil
	}
	logger.Debugf("saving %d change(s) to the backups cache", len(rec.applied))
	err = cacheStore.Update(func(current map[string]backups.Backups) (map[string]backups.Backups, error) {
		return rec.replay(current), nil
	})
	return errors.Annotate(err, "cannot save backups cache")
}

// writeMetrics prints the collected metrics in the prometheus text
// format.
func writeMetrics(w io.Writer, collector prometheus.Collector) error {
	registry := prometheus.NewPedanticRegistry()
	if err := registry.Register(collector); err != nil {
		return errors.Trace(err)
	}
	families, err := registry.Gather()
	if err != nil {
		return errors.Trace(err)
	}
	for _, family := range families {
		if _, err := expfmt.MetricFamilyToText(w, family); err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}

// linodeArg pops the linode id off args.
func linodeArg(args []string) (string, []string, error) {
	if len(args) == 0 || args[0] == "" {
		return "", nil, errors.New("linode id required")
	}
	return args[0], args[1:], nil
}
