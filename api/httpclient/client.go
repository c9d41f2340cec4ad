// Copyright 2020 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package httpclient implements base.Requester over HTTP against the
// Linode REST API.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/loggo"
	"github.com/juju/retry"
	"gopkg.in/httprequest.v1"

	"github.com/linode/linode-backups/api/base"
	"github.com/linode/linode-backups/rpc/params"
)

var logger = loggo.GetLogger("linode.api.httpclient")

// Config holds what a Client needs to reach the API.
type Config struct {
	// BaseURL is prefixed to every request path, e.g.
	// https://api.linode.com/v4.
	BaseURL string

	// Token is sent as a bearer token.
	Token string

	// Timeout bounds each attempt of a request. Zero means no bound.
	Timeout time.Duration

	// RetryAttempts is how many times a GET is tried before giving up.
	RetryAttempts int

	// RetryDelay is the pause between attempts.
	RetryDelay time.Duration

	// Clock is used for the pauses between attempts.
	Clock clock.Clock

	// Transport makes the HTTP requests.
	Transport Transport
}

// Validate returns an error if the config cannot be used.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return errors.NotValidf("empty BaseURL")
	}
	if _, err := url.Parse(c.BaseURL); err != nil {
		return errors.NotValidf("BaseURL %q", c.BaseURL)
	}
	if c.Token == "" {
		return errors.NotValidf("empty Token")
	}
	if c.Timeout < 0 {
		return errors.NotValidf("negative Timeout")
	}
	if c.RetryAttempts < 1 {
		return errors.NotValidf("RetryAttempts %d", c.RetryAttempts)
	}
	if c.RetryDelay <= 0 {
		return errors.NotValidf("RetryDelay %v", c.RetryDelay)
	}
	if c.Clock == nil {
		return errors.NotValidf("nil Clock")
	}
	if c.Transport == nil {
		return errors.NotValidf("nil Transport")
	}
	return nil
}

// Client is a base.Requester making JSON requests against the API.
type Client struct {
	config    Config
	transport Transport
}

var _ base.Requester = (*Client)(nil)

// New returns a client for the given config.
func New(config Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	config.BaseURL = strings.TrimSuffix(config.BaseURL, "/")
	return &Client{
		config:    config,
		transport: apiRequester{transport: config.Transport},
	}, nil
}

// Request is part of the base.Requester interface. GET requests are
// retried when the server is overloaded or failing, or the connection
// breaks. Other methods are tried once.
func (c *Client) Request(ctx context.Context, path string, opts base.RequestOptions, result interface{}) error {
	method := opts.MethodOrDefault()
	var body []byte
	if opts.Body != nil {
		var err error
		if body, err = json.Marshal(opts.Body); err != nil {
			return errors.Annotatef(err, "encoding %s %s body", method, path)
		}
	}

	call := func() error {
		return c.do(ctx, method, path, body, result)
	}
	if method != http.MethodGet {
		return errors.Trace(call())
	}

	err := retry.Call(retry.CallArgs{
		Func: call,
		IsFatalError: func(err error) bool {
			return !isRetryable(ctx, err)
		},
		NotifyFunc: func(lastErr error, attempt int) {
			logger.Debugf("%s %s attempt %d failed: %v", method, path, attempt, lastErr)
		},
		Attempts: c.config.RetryAttempts,
		Delay:    c.config.RetryDelay,
		Clock:    c.config.Clock,
		Stop:     ctx.Done(),
	})
	if retry.IsAttemptsExceeded(err) || retry.IsRetryStopped(err) {
		err = retry.LastError(err)
	}
	return errors.Trace(err)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, result interface{}) error {
	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, reader)
	if err != nil {
		return errors.Annotate(err, "can not make new request")
	}
	req.Header.Set("Accept", JSON)
	if body != nil {
		req.Header.Set("Content-Type", JSON)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.Token)

	resp, err := c.transport.Do(req)
	if err != nil {
		return errors.Trace(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if result == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := httprequest.UnmarshalJSONResponse(resp, result); err != nil {
		return errors.Annotatef(err, "%s %s", method, path)
	}
	return nil
}

// isRetryable reports whether a failed GET is worth another attempt.
func isRetryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	if params.ErrStatus(err) != 0 {
		return params.IsRetryable(err)
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
