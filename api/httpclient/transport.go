// Copyright 2020 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package httpclient

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httputil"

	"github.com/juju/errors"
	jujuhttp "github.com/juju/http/v2"

	"github.com/linode/linode-backups/rpc/params"
)

// MIME represents a MIME type for identifying requests and response bodies.
type MIME = string

const (
	// JSON represents the MIME type for JSON request and response types.
	JSON MIME = "application/json"
)

// Transport defines a type for making the actual request.
type Transport interface {
	// Do performs the *http.Request and returns a *http.Response or an error
	// if it fails to construct the transport.
	Do(*http.Request) (*http.Response, error)
}

// DefaultHTTPTransport creates a transport that reports every request
// to the given recorder. A nil recorder records nothing.
func DefaultHTTPTransport(recorder jujuhttp.RequestRecorder) Transport {
	opts := []jujuhttp.Option{jujuhttp.WithLogger(logger)}
	if recorder != nil {
		opts = append(opts, jujuhttp.WithRequestRecorder(recorder))
	}
	return jujuhttp.NewClient(opts...)
}

// apiRequester wraps a transport, turning every response outside the
// 2xx range into a *params.Error.
type apiRequester struct {
	transport Transport
}

// Do is part of the Transport interface.
func (t apiRequester) Do(req *http.Request) (*http.Response, error) {
	if logger.IsTraceEnabled() {
		if data, err := httputil.DumpRequest(req, true); err == nil {
			logger.Tracef("%s request %s", req.Method, data)
		} else {
			logger.Tracef("%s request DumpRequest error %s", req.Method, err.Error())
		}
	}

	resp, err := t.transport.Do(req)
	if err != nil {
		return nil, errors.Trace(err)
	}

	if logger.IsTraceEnabled() {
		if data, err := httputil.DumpResponse(resp, true); err == nil {
			logger.Tracef("%s response %s", req.Method, data)
		} else {
			logger.Tracef("%s response DumpResponse error %s", req.Method, err.Error())
		}
	}

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return resp, nil
	}

	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()
	return nil, responseError(req, resp)
}

// responseError builds the error for a failed response. The body is
// decoded as the API's error list when possible and kept verbatim
// otherwise.
func responseError(req *http.Request, resp *http.Response) error {
	apiErr := &params.Error{Status: resp.StatusCode}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Debugf("reading %d response body: %v", resp.StatusCode, err)
		return apiErr
	}
	if err := json.Unmarshal(data, apiErr); err != nil || len(apiErr.Reasons) == 0 {
		apiErr.Reasons = nil
		apiErr.Body = data
	}
	logger.Debugf("%s %s: %v", req.Method, req.URL.Path, apiErr)
	return apiErr
}
