// Copyright 2016 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package backups

import (
	"context"
	"fmt"

	"github.com/juju/errors"
	"golang.org/x/sync/errgroup"

	"github.com/linode/linode-backups/api/base"
	"github.com/linode/linode-backups/core/cache"
	"github.com/linode/linode-backups/rpc/params"
)

// DefaultPageConcurrency bounds the pages FetchAllBackups requests at
// the same time.
const DefaultPageConcurrency = 4

// MaxPages is the largest page count a backups collection may report.
const MaxPages = 1000

// AllOperation fetches every page of a backups collection.
type AllOperation func(ctx context.Context, dispatcher Dispatcher) ([]params.BackupsPage, error)

// FetchAllBackups returns an operation fetching every page of the
// linode's backups. The first page gives the page count; the remaining
// pages are fetched concurrently, at most concurrency at a time (zero
// or less means DefaultPageConcurrency).
//
// Nothing is dispatched until every page has been fetched. Then one
// ReplaceCollectionPage per page is dispatched, in page order. If any
// page fails the operation fails and the state is left alone.
func (c *Client) FetchAllBackups(linodeID string, concurrency int) AllOperation {
	if concurrency <= 0 {
		concurrency = DefaultPageConcurrency
	}
	return func(ctx context.Context, dispatcher Dispatcher) ([]params.BackupsPage, error) {
		if err := validateIDs(linodeID); err != nil {
			return nil, errors.Trace(err)
		}
		first, err := c.fetchPage(ctx, linodeID, 1)
		if err != nil {
			return nil, errors.Trace(err)
		}
		pages := make([]params.BackupsPage, 1, max(first.TotalPages, 1))
		pages[0] = first
		if first.TotalPages > 1 {
			rest := make([]params.BackupsPage, first.TotalPages-1)
			g, gctx := errgroup.WithContext(ctx)
			g.SetLimit(concurrency)
			for i := range rest {
				i := i
				g.Go(func() error {
					page, err := c.fetchPage(gctx, linodeID, i+2)
					if err != nil {
						return errors.Trace(err)
					}
					rest[i] = page
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return nil, errors.Trace(err)
			}
			pages = append(pages, rest...)
		}

		logger.Debugf("fetched %d page(s) of backups for linode %q", len(pages), linodeID)
		for _, page := range pages {
			dispatcher.Dispatch(cache.ReplaceCollectionPage{
				LinodeID: linodeID,
				Response: page,
			})
		}
		return pages, nil
	}
}

func (c *Client) fetchPage(ctx context.Context, linodeID string, page int) (params.BackupsPage, error) {
	path := fmt.Sprintf("%s?page=%d", collectionPath(linodeID), page)
	var result params.BackupsPage
	if err := c.requester.Request(ctx, path, base.RequestOptions{}, &result); err != nil {
		return params.BackupsPage{}, errors.Annotatef(err, "fetching page %d of linode %q", page, linodeID)
	}
	if err := validateBackupsPage(result); err != nil {
		return params.BackupsPage{}, errors.Annotatef(err, "fetching page %d of linode %q", page, linodeID)
	}
	return result, nil
}

// validateBackupsPage checks the fields the cache merge relies on. Each
// page holds at least one result, so a collection never has more pages
// than results, bar the single empty page of an empty collection.
func validateBackupsPage(page params.BackupsPage) error {
	switch {
	case page.Page < 1:
		return errors.Annotatef(ErrMalformedResponse, "page number %d", page.Page)
	case page.TotalPages < 0 || page.TotalResults < 0:
		return errors.Annotatef(ErrMalformedResponse, "totals %d/%d", page.TotalPages, page.TotalResults)
	case page.TotalPages > MaxPages || page.TotalPages > max(page.TotalResults, 1):
		return errors.Annotatef(ErrMalformedResponse, "%d pages for %d results", page.TotalPages, page.TotalResults)
	}
	for _, backup := range page.Backups {
		if backup.ID == "" {
			return errors.Annotatef(ErrMalformedResponse, "backup without id")
		}
	}
	return nil
}
