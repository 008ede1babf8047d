package service

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/sakif/portfolio/internal/media"
)

// imageCleaner deletes images that a committed write has orphaned. It never
// fails the caller: every delete error is logged at Warn and dropped.
//
// Cleanup runs on a context detached from the request so a client that hangs
// up after the DB commit does not leave the image behind.
type imageCleaner struct {
	store  media.Store
	logger *slog.Logger
}

func newImageCleaner(store media.Store, logger *slog.Logger) imageCleaner {
	return imageCleaner{store: store, logger: logger}
}

// replaced deletes oldURL after it was swapped for newURL.
func (c imageCleaner) replaced(ctx context.Context, oldURL, newURL string) {
	if oldURL == "" || oldURL == newURL {
		return
	}
	c.remove(ctx, oldURL)
}

// remove attempts every delete concurrently and waits for all of them.
// URLs the store does not manage are skipped.
func (c imageCleaner) remove(ctx context.Context, urls ...string) {
	ctx = context.WithoutCancel(ctx)

	var g errgroup.Group
	seen := make(map[string]bool, len(urls))
	for _, url := range urls {
		if url == "" || seen[url] || !c.store.Manages(url) {
			continue
		}
		seen[url] = true

		g.Go(func() error {
			if err := c.store.Delete(ctx, url); err != nil {
				c.logger.Warn("image cleanup failed",
					slog.String("url", url),
					slog.String("error", err.Error()),
				)
				return nil
			}
			c.logger.Debug("image deleted", slog.String("url", url))
			return nil
		})
	}
	_ = g.Wait()
}
