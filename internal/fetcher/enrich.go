package fetcher

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nikbrunner/sbm/internal/capture"
	"github.com/nikbrunner/sbm/internal/logger"
	"github.com/nikbrunner/sbm/internal/model"
)

// EnrichOptions tunes Backfill.
type EnrichOptions struct {
	Concurrency int
	// Timeout bounds each page fetch. Zero means no per-page limit.
	Timeout time.Duration
	// Force re-fetches bookmarks that already carry metadata.
	Force      bool
	OnProgress ProgressFunc
}

// EnrichReport counts what Backfill did.
type EnrichReport struct {
	Attempted int
	Updated   int
	Failed    int
}

// Fetched is the outcome of FetchMissing: metadata keyed by bookmark ID.
type Fetched struct {
	Attempted int
	Failed    int
	Pages     map[string]*model.PageMetadata
}

// Backfill fetches metadata for bookmarks that lack it and merges the result
// into store in place. Failures are logged and counted, never returned; the
// only error is ctx cancellation.
func Backfill(ctx context.Context, store *model.Store, e capture.Enricher, opts EnrichOptions, log logger.Logger) (EnrichReport, error) {
	if log == nil {
		log = logger.Nop()
	}
	fetched, err := FetchMissing(ctx, store.Bookmarks, e, opts, log)
	if err != nil {
		return EnrichReport{Attempted: fetched.Attempted}, err
	}
	report := ApplyFetched(store, fetched)
	log.Info("metadata backfill finished",
		logger.Int("updated", report.Updated),
		logger.Int("failed", report.Failed))
	return report, nil
}

// FetchMissing fetches metadata for the bookmarks that lack it, or for all of
// them with opts.Force. bookmarks is only read, so callers can pass a
// snapshot and apply the result later with ApplyFetched.
func FetchMissing(ctx context.Context, bookmarks []model.Bookmark, e capture.Enricher, opts EnrichOptions, log logger.Logger) (Fetched, error) {
	if log == nil {
		log = logger.Nop()
	}

	type target struct{ id, url string }
	var targets []target
	for _, b := range bookmarks {
		if opts.Force || b.Metadata.IsEmpty() {
			targets = append(targets, target{b.ID, b.URL})
		}
	}
	fetched := Fetched{Attempted: len(targets), Pages: make(map[string]*model.PageMetadata)}
	if len(targets) == 0 {
		return fetched, nil
	}

	limit := opts.Concurrency
	if limit < 1 {
		limit = 1
	}

	metas := make([]*model.PageMetadata, len(targets))
	var mu sync.Mutex
	completed := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for n, tg := range targets {
		n, tg := n, tg
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			meta, err := enrichOne(gctx, e, tg.url, opts.Timeout)
			if err != nil {
				log.Debug("metadata backfill failed", logger.String("url", tg.url), logger.Error(err))
			} else {
				metas[n] = meta
			}

			if opts.OnProgress != nil {
				mu.Lock()
				completed++
				opts.OnProgress(completed, len(targets))
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fetched, err
	}

	for n, tg := range targets {
		if metas[n].IsEmpty() {
			fetched.Failed++
			continue
		}
		fetched.Pages[tg.id] = metas[n]
	}
	return fetched, nil
}

// ApplyFetched merges fetched metadata into store by bookmark ID. Bookmarks
// deleted since the fetch are skipped.
func ApplyFetched(store *model.Store, fetched Fetched) EnrichReport {
	report := EnrichReport{Attempted: fetched.Attempted, Failed: fetched.Failed}
	for id, meta := range fetched.Pages {
		b := store.GetBookmarkByID(id)
		if b == nil {
			continue
		}
		applyMetadata(b, meta)
		report.Updated++
	}
	return report
}

func enrichOne(ctx context.Context, e capture.Enricher, url string, timeout time.Duration) (*model.PageMetadata, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return e.Enrich(ctx, url)
}

// applyMetadata attaches meta and upgrades fields the user never set.
func applyMetadata(b *model.Bookmark, meta *model.PageMetadata) {
	b.Metadata = meta
	if meta.Title != "" && (b.Title == "" || b.Title == b.URL || capture.IsPlaceholderTitle(b.Title)) {
		b.Title = meta.Title
	}
	if b.Category == model.CategoryText && meta.Category.Valid() && meta.Category != model.CategoryText {
		b.Category = meta.Category
	}
	if (b.Platform == "" || b.Platform == model.DefaultPlatform) && meta.Platform != "" {
		b.Platform = meta.Platform
	}
}
