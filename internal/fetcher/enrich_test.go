package fetcher

import (
	"context"
	"errors"
	"sync"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/nikbrunner/sbm/internal/capture"
	"github.com/nikbrunner/sbm/internal/model"
)

type mapEnricher struct {
	mu    sync.Mutex
	pages map[string]*model.PageMetadata
	seen  []string
}

func (m *mapEnricher) Enrich(_ context.Context, url string) (*model.PageMetadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen = append(m.seen, url)
	if meta, ok := m.pages[url]; ok {
		return meta, nil
	}
	return nil, capture.ErrNoMetadata
}

func TestBackfill(t *testing.T) {
	store := model.NewStore()
	store.Bookmarks = []model.Bookmark{
		{ID: "a", URL: "https://example.com/a", Title: "https://example.com/a", Category: model.CategoryText, Platform: "Web"},
		{ID: "b", URL: "https://example.com/b", Title: "Keep me", Category: model.CategoryText, Platform: "Web"},
		{ID: "c", URL: "https://example.com/c", Title: "Done", Metadata: &model.PageMetadata{Title: "Already"}},
		{ID: "d", URL: "https://example.com/d", Title: "Nothing"},
	}
	e := &mapEnricher{pages: map[string]*model.PageMetadata{
		"https://example.com/a": {Title: "Page A", Category: model.CategoryVideo, Platform: "Vimeo"},
		"https://example.com/b": {Title: "Page B", Description: "about b"},
	}}

	var progress []int
	var mu sync.Mutex
	report, err := Backfill(context.Background(), store, e, EnrichOptions{
		Concurrency: 2,
		OnProgress: func(completed, total int) {
			mu.Lock()
			progress = append(progress, completed)
			mu.Unlock()
		},
	}, nil)
	assert.NilError(t, err)
	assert.DeepEqual(t, report, EnrichReport{Attempted: 3, Updated: 2, Failed: 1})
	assert.Equal(t, len(e.seen), 3)
	assert.Equal(t, len(progress), 3)

	a := store.GetBookmarkByID("a")
	assert.Equal(t, a.Title, "Page A")
	assert.Equal(t, a.Category, model.CategoryVideo)
	assert.Equal(t, a.Platform, "Vimeo")

	b := store.GetBookmarkByID("b")
	assert.Equal(t, b.Title, "Keep me")
	assert.Equal(t, b.Metadata.Description, "about b")

	assert.Equal(t, store.GetBookmarkByID("c").Metadata.Title, "Already")
	assert.Assert(t, store.GetBookmarkByID("d").Metadata == nil)
}

func TestBackfill_Force(t *testing.T) {
	store := model.NewStore()
	store.Bookmarks = []model.Bookmark{
		{ID: "c", URL: "https://example.com/c", Title: "Done", Metadata: &model.PageMetadata{Title: "Old"}},
	}
	e := &mapEnricher{pages: map[string]*model.PageMetadata{
		"https://example.com/c": {Title: "New"},
	}}

	report, err := Backfill(context.Background(), store, e, EnrichOptions{Force: true}, nil)
	assert.NilError(t, err)
	assert.Equal(t, report.Updated, 1)
	assert.Equal(t, store.Bookmarks[0].Metadata.Title, "New")
	assert.Equal(t, store.Bookmarks[0].Title, "Done")
}

func TestBackfill_Canceled(t *testing.T) {
	store := model.NewStore()
	store.Bookmarks = []model.Bookmark{{ID: "a", URL: "https://example.com/a"}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Backfill(ctx, store, &mapEnricher{}, EnrichOptions{}, nil)
	assert.Assert(t, errors.Is(err, context.Canceled))
	assert.Assert(t, store.Bookmarks[0].Metadata == nil)
}

func TestBackfill_NothingToDo(t *testing.T) {
	report, err := Backfill(context.Background(), model.NewStore(), &mapEnricher{}, EnrichOptions{}, nil)
	assert.NilError(t, err)
	assert.Equal(t, report, EnrichReport{})
}

func TestFetchMissing_AppliedToLaterStore(t *testing.T) {
	snapshot := []model.Bookmark{
		{ID: "a", URL: "https://example.com/a", Title: "https://example.com/a", Category: model.CategoryText},
		{ID: "gone", URL: "https://example.com/gone", Title: "Gone"},
	}
	e := &mapEnricher{pages: map[string]*model.PageMetadata{
		"https://example.com/a":    {Title: "Page A"},
		"https://example.com/gone": {Title: "Gone Page"},
	}}

	fetched, err := FetchMissing(context.Background(), snapshot, e, EnrichOptions{Concurrency: 2}, nil)
	assert.NilError(t, err)
	assert.Equal(t, fetched.Attempted, 2)
	assert.Equal(t, len(fetched.Pages), 2)

	// The store moved on while fetching: one bookmark was added, one deleted.
	store := model.NewStore()
	store.Bookmarks = []model.Bookmark{
		{ID: "new", URL: "https://example.com/new", Title: "New"},
		{ID: "a", URL: "https://example.com/a", Title: "https://example.com/a", Category: model.CategoryText},
	}
	report := ApplyFetched(store, fetched)
	assert.DeepEqual(t, report, EnrichReport{Attempted: 2, Updated: 1})
	assert.Equal(t, store.GetBookmarkByID("a").Title, "Page A")
	assert.Assert(t, store.GetBookmarkByID("new").Metadata == nil)
}
