// Copyright 2016 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package params

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/juju/errors"
)

// ErrorReason is one entry of the "errors" list the API returns with a
// failed request.
type ErrorReason struct {
	Reason string `json:"reason"`
	Field  string `json:"field,omitempty"`
}

// Error is the error returned when the API answers with a non-2xx
// status. Status always holds the HTTP status code; Reasons is filled
// when the body could be decoded, and Body keeps the raw body otherwise.
type Error struct {
	Status  int           `json:"-"`
	Reasons []ErrorReason `json:"errors,omitempty"`
	Body    []byte        `json:"-"`
}

// Error implements error.
func (e *Error) Error() string {
	var msgs []string
	for _, r := range e.Reasons {
		if r.Field != "" {
			msgs = append(msgs, fmt.Sprintf("%s: %s", r.Field, r.Reason))
			continue
		}
		msgs = append(msgs, r.Reason)
	}
	if len(msgs) == 0 {
		if body := strings.TrimSpace(string(e.Body)); body != "" {
			msgs = append(msgs, body)
		}
	}
	text := http.StatusText(e.Status)
	if text == "" {
		text = "unexpected status"
	}
	if len(msgs) == 0 {
		return fmt.Sprintf("%s (%d)", text, e.Status)
	}
	return fmt.Sprintf("%s (%d): %s", text, e.Status, strings.Join(msgs, "; "))
}

// Is reports whether the API error matches one of the well known
// juju/errors kinds, so callers can use errors.Is(err, errors.NotFound)
// without knowing about HTTP status codes.
func (e *Error) Is(target error) bool {
	kind, ok := statusKinds[e.Status]
	return ok && target == kind
}

var statusKinds = map[int]error{
	http.StatusBadRequest:       errors.BadRequest,
	http.StatusUnauthorized:     errors.Unauthorized,
	http.StatusForbidden:        errors.Forbidden,
	http.StatusNotFound:         errors.NotFound,
	http.StatusMethodNotAllowed: errors.MethodNotAllowed,
	http.StatusConflict:         errors.AlreadyExists,
	http.StatusNotImplemented:   errors.NotImplemented,
}

// ErrStatus returns the HTTP status of the API error wrapped by err,
// or 0 if err does not wrap one.
func ErrStatus(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// IsRetryable reports whether a request that failed with err may be
// repeated: server side failures and rate limiting are, client errors
// are not.
func IsRetryable(err error) bool {
	status := ErrStatus(err)
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}
