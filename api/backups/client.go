// Copyright 2014 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package backups builds the operations that act on the backups of a
// linode. Each operation makes exactly one request and, on success,
// dispatches the mutations that fold the response into client state.
package backups

import (
	"context"
	"net/http"
	"net/url"

	"github.com/juju/errors"
	"github.com/juju/loggo"

	"github.com/linode/linode-backups/api/base"
	"github.com/linode/linode-backups/core/cache"
	"github.com/linode/linode-backups/rpc/params"
)

//go:generate go run go.uber.org/mock/mockgen -package mocks -destination mocks/dispatcher_mock.go github.com/linode/linode-backups/api/backups Dispatcher

var logger = loggo.GetLogger("linode.api.backups")

// ErrMalformedResponse is the cause of errors returned when a response
// lacks a field the operation needs.
const ErrMalformedResponse = errors.ConstError("malformed response")

// Dispatcher applies mutations to the client state. *cache.Store
// implements it.
type Dispatcher interface {
	Dispatch(cache.Mutation)
}

// Operation is a request that yields no value.
type Operation func(ctx context.Context, dispatcher Dispatcher) error

// ListOperation fetches one page of a backups collection.
type ListOperation func(ctx context.Context, dispatcher Dispatcher) (params.BackupsPage, error)

// BackupOperation yields a single backup.
type BackupOperation func(ctx context.Context, dispatcher Dispatcher) (params.Backup, error)

// Client builds backup operations that run against a Requester.
type Client struct {
	requester base.Requester
}

// NewClient returns a client whose operations use the given requester.
func NewClient(requester base.Requester) *Client {
	if requester == nil {
		panic("requester is nil")
	}
	return &Client{requester: requester}
}

// FetchBackups returns an operation fetching one page of the linode's
// backups. page is 0-based; the API's pages are 1-based.
func (c *Client) FetchBackups(page int, linodeID string) ListOperation {
	return func(ctx context.Context, dispatcher Dispatcher) (params.BackupsPage, error) {
		if err := validatePage(page); err != nil {
			return params.BackupsPage{}, errors.Trace(err)
		}
		if err := validateIDs(linodeID); err != nil {
			return params.BackupsPage{}, errors.Trace(err)
		}
		result, err := c.fetchPage(ctx, linodeID, page+1)
		if err != nil {
			return params.BackupsPage{}, errors.Trace(err)
		}
		logger.Debugf("fetched page %d of %d for linode %q", result.Page, result.TotalPages, linodeID)
		dispatcher.Dispatch(cache.ReplaceCollectionPage{
			LinodeID: linodeID,
			Response: result,
		})
		return result, nil
	}
}

// FetchBackup returns an operation fetching a single backup. A missing
// backup fails with an error satisfying errors.Is(err, errors.NotFound).
// A response for any other backup, or with no id at all, fails with
// ErrMalformedResponse and leaves the cached entry alone.
func (c *Client) FetchBackup(linodeID, backupID string) BackupOperation {
	path := backupPath(linodeID, backupID)
	return func(ctx context.Context, dispatcher Dispatcher) (params.Backup, error) {
		if err := validateIDs(linodeID, backupID); err != nil {
			return params.Backup{}, errors.Trace(err)
		}
		var result params.Backup
		if err := c.requester.Request(ctx, path, base.RequestOptions{}, &result); err != nil {
			return params.Backup{}, errors.Trace(err)
		}
		if result.ID != backupID {
			return params.Backup{}, errors.Annotatef(ErrMalformedResponse,
				"fetching backup %q of linode %q: response has id %q", backupID, linodeID, result.ID)
		}
		dispatcher.Dispatch(cache.ReplaceOne{
			LinodeID: linodeID,
			BackupID: backupID,
			Backup:   result,
		})
		return result, nil
	}
}

// EnableBackup returns an operation enabling the backup service for
// the linode. Nothing is dispatched; re-fetch to see the new state.
func (c *Client) EnableBackup(linodeID string) Operation {
	return c.post(collectionPath(linodeID)+"/enable", nil, linodeID)
}

// CancelBackup returns an operation cancelling the backup service for
// the linode. Nothing is dispatched.
func (c *Client) CancelBackup(linodeID string) Operation {
	return c.post(collectionPath(linodeID)+"/cancel", nil, linodeID)
}

// TakeBackup returns an operation taking a snapshot of the linode. The
// new backup is cached under the id the server assigned to it.
func (c *Client) TakeBackup(linodeID string) BackupOperation {
	path := collectionPath(linodeID)
	return func(ctx context.Context, dispatcher Dispatcher) (params.Backup, error) {
		if err := validateIDs(linodeID); err != nil {
			return params.Backup{}, errors.Trace(err)
		}
		var result params.Backup
		opts := base.RequestOptions{Method: http.MethodPost}
		if err := c.requester.Request(ctx, path, opts, &result); err != nil {
			return params.Backup{}, errors.Trace(err)
		}
		if result.ID == "" {
			return params.Backup{}, errors.Annotatef(ErrMalformedResponse, "taking backup of linode %q: response has no id", linodeID)
		}
		logger.Debugf("took backup %q of linode %q", result.ID, linodeID)
		dispatcher.Dispatch(cache.ReplaceOne{
			LinodeID: linodeID,
			BackupID: result.ID,
			Backup:   result,
		})
		return result, nil
	}
}

// RestoreBackup returns an operation restoring a backup of sourceID onto
// targetID without overwriting the target's existing disks. Nothing is
// dispatched.
func (c *Client) RestoreBackup(sourceID, targetID, backupID string) Operation {
	return c.RestoreBackupOverwrite(sourceID, targetID, backupID, false)
}

// RestoreBackupOverwrite is RestoreBackup with control over whether the
// target linode's disks may be replaced.
func (c *Client) RestoreBackupOverwrite(sourceID, targetID, backupID string, overwrite bool) Operation {
	args := params.RestoreBackupArgs{
		Linode:    targetID,
		Overwrite: overwrite,
	}
	return c.post(backupPath(sourceID, backupID)+"/restore", args, sourceID, targetID, backupID)
}

// post returns an operation making a POST whose response is not used.
func (c *Client) post(path string, body interface{}, ids ...string) Operation {
	return func(ctx context.Context, dispatcher Dispatcher) error {
		if err := validateIDs(ids...); err != nil {
			return errors.Trace(err)
		}
		opts := base.RequestOptions{
			Method: http.MethodPost,
			Body:   body,
		}
		if err := c.requester.Request(ctx, path, opts, nil); err != nil {
			return errors.Trace(err)
		}
		logger.Debugf("POST %s done", path)
		return nil
	}
}

func collectionPath(linodeID string) string {
	return "/linodes/" + url.PathEscape(linodeID) + "/backups"
}

func backupPath(linodeID, backupID string) string {
	return collectionPath(linodeID) + "/" + url.PathEscape(backupID)
}

func validatePage(page int) error {
	if page < 0 {
		return errors.NotValidf("page %d", page)
	}
	return nil
}

func validateIDs(ids ...string) error {
	for _, id := range ids {
		if id == "" {
			return errors.NotValidf("empty id")
		}
	}
	return nil
}
