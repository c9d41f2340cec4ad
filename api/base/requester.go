// Copyright 2015 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package base

import (
	"context"
	"net/http"
)

//go:generate go run go.uber.org/mock/mockgen -package mocks -destination mocks/requester_mock.go github.com/linode/linode-backups/api/base Requester

// RequestOptions describes how a request is made. The zero value is a
// GET without a body.
type RequestOptions struct {
	// Method is the HTTP method. Empty means GET.
	Method string

	// Body, when not nil, is sent JSON encoded.
	Body interface{}
}

// MethodOrDefault returns the method to use for the request.
func (o RequestOptions) MethodOrDefault() string {
	if o.Method == "" {
		return http.MethodGet
	}
	return o.Method
}

// Requester makes a single call against the API. It either decodes the
// response body into result, or returns an error; there is no other
// outcome. A nil result means the response body is not wanted.
//
// Failed requests return a *params.Error when the server answered, and
// any other error for transport or decoding failures.
type Requester interface {
	Request(ctx context.Context, path string, opts RequestOptions, result interface{}) error
}
