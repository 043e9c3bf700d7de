package messaging_test

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/nikbrunner/sbm/internal/capture"
	"github.com/nikbrunner/sbm/internal/messaging"
	"github.com/nikbrunner/sbm/internal/model"
	"github.com/nikbrunner/sbm/internal/storage"
)

type staticEnricher struct {
	meta *model.PageMetadata
	err  error
}

func (s staticEnricher) Enrich(context.Context, string) (*model.PageMetadata, error) {
	return s.meta, s.err
}

// gateEnricher blocks every call until release is closed.
type gateEnricher struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGateEnricher() *gateEnricher {
	return &gateEnricher{entered: make(chan struct{}), release: make(chan struct{})}
}

func (g *gateEnricher) Enrich(ctx context.Context, _ string) (*model.PageMetadata, error) {
	g.once.Do(func() { close(g.entered) })
	select {
	case <-g.release:
		return &model.PageMetadata{Title: "Slow Title"}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func newDispatcher(t *testing.T, fetch capture.Enricher) (*messaging.Dispatcher, *storage.JSONStorage) {
	t.Helper()
	st := storage.NewJSONStorage(filepath.Join(t.TempDir(), "bookmarks.json"))
	return messaging.NewDispatcher(st, fetch, nil), st
}

func TestPing(t *testing.T) {
	d, _ := newDispatcher(t, nil)
	resp := d.Handle(context.Background(), messaging.Request{Action: messaging.ActionPing})
	assert.Equal(t, resp.Status, "pong")
}

func TestUnknownAction(t *testing.T) {
	d, _ := newDispatcher(t, nil)
	resp := d.Handle(context.Background(), messaging.Request{Action: "launchRockets"})
	assert.Equal(t, resp.Status, messaging.StatusError)
	assert.Assert(t, is.Contains(resp.Error, "unknown action"))
}

func TestGetMetadata_FromHTML(t *testing.T) {
	d, _ := newDispatcher(t, nil)
	page := `<html><head>
		<meta property="og:title" content="Lo-fi beats">
		<meta name="description" content="relax">
	</head><body></body></html>`

	resp := d.Handle(context.Background(), messaging.Request{
		Action: messaging.ActionGetMetadata,
		URL:    "https://www.youtube.com/watch?v=abc",
		HTML:   page,
	})
	assert.Equal(t, resp.Status, messaging.StatusOK, resp.Error)
	assert.Equal(t, resp.Metadata.Title, "Lo-fi beats")
	assert.Equal(t, resp.Metadata.Description, "relax")
	assert.Equal(t, resp.Metadata.Category, model.CategoryVideo)
	assert.Equal(t, resp.Metadata.Platform, "YouTube")
}

func TestGetMetadata_Fetched(t *testing.T) {
	d, _ := newDispatcher(t, staticEnricher{meta: &model.PageMetadata{Title: "Fetched"}})
	resp := d.Handle(context.Background(), messaging.Request{Action: messaging.ActionGetMetadata, URL: "https://example.com"})
	assert.Equal(t, resp.Status, messaging.StatusOK)
	assert.Equal(t, resp.Metadata.Title, "Fetched")
}

func TestGetMetadata_NoSource(t *testing.T) {
	d, _ := newDispatcher(t, nil)
	resp := d.Handle(context.Background(), messaging.Request{Action: messaging.ActionGetMetadata, URL: "https://example.com"})
	assert.Equal(t, resp.Status, messaging.StatusError)

	resp = d.Handle(context.Background(), messaging.Request{Action: messaging.ActionGetMetadata})
	assert.Equal(t, resp.Status, messaging.StatusError)
}

func TestGetPageInfo(t *testing.T) {
	d, _ := newDispatcher(t, nil)
	resp := d.Handle(context.Background(), messaging.Request{
		Action: messaging.ActionGetPageInfo,
		URL:    "https://open.spotify.com/track/1",
		Title:  "Song",
	})
	assert.Equal(t, resp.Status, messaging.StatusOK)
	assert.Equal(t, resp.Page.Category, model.CategoryAudio)
	assert.Equal(t, resp.Page.Platform, "Spotify")
	assert.Equal(t, resp.Page.Title, "Song")
	assert.Equal(t, resp.Page.Icon, "🎵")
}

func TestPushedMetadataIsUsedOnSave(t *testing.T) {
	d, st := newDispatcher(t, nil)
	ctx := context.Background()
	url := "https://example.com/post"

	resp := d.Handle(ctx, messaging.Request{
		Action:   messaging.ActionPageMetadataExtracted,
		URL:      url,
		Metadata: &model.PageMetadata{Title: "Real Title", Category: model.CategoryImage},
	})
	assert.Equal(t, resp.Status, messaging.StatusOK)

	resp = d.Handle(ctx, messaging.Request{
		Action: messaging.ActionSaveBookmark,
		URL:    url,
		Title:  "example.com",
		Form:   &capture.Form{Category: capture.CategoryAuto, Tags: "a, b"},
	})
	assert.Equal(t, resp.Status, messaging.StatusOK, resp.Error)
	assert.Equal(t, resp.Bookmark.Title, "Real Title")
	assert.Equal(t, resp.Bookmark.Category, model.CategoryImage)
	assert.DeepEqual(t, resp.Bookmark.Tags, []string{"a", "b"})

	store, err := st.Load(ctx)
	assert.NilError(t, err)
	assert.Equal(t, len(store.Bookmarks), 1)
	assert.Equal(t, store.Bookmarks[0].ID, resp.Bookmark.ID)
}

func TestSaveBookmark_Prepends(t *testing.T) {
	d, st := newDispatcher(t, nil)
	ctx := context.Background()
	for _, u := range []string{"https://example.com/1", "https://example.com/2"} {
		resp := d.Handle(ctx, messaging.Request{Action: messaging.ActionSaveBookmark, URL: u, Title: u})
		assert.Equal(t, resp.Status, messaging.StatusOK, resp.Error)
	}
	store, err := st.Load(ctx)
	assert.NilError(t, err)
	assert.Equal(t, len(store.Bookmarks), 2)
	assert.Equal(t, store.Bookmarks[0].URL, "https://example.com/2")
}

func TestSaveBookmark_NoURL(t *testing.T) {
	d, _ := newDispatcher(t, nil)
	resp := d.Handle(context.Background(), messaging.Request{Action: messaging.ActionSaveBookmark})
	assert.Equal(t, resp.Status, messaging.StatusError)
	assert.Assert(t, strings.Contains(resp.Error, "no page URL"))
}

func TestPageMetadataExtracted_Empty(t *testing.T) {
	d, _ := newDispatcher(t, nil)
	resp := d.Handle(context.Background(), messaging.Request{Action: messaging.ActionPageMetadataExtracted, URL: "https://example.com"})
	assert.Equal(t, resp.Status, messaging.StatusError)

	d.Notify(context.Background(), messaging.Request{Action: messaging.ActionPageMetadataExtracted})
}

func TestUpdate(t *testing.T) {
	d, st := newDispatcher(t, nil)
	ctx := context.Background()

	err := d.Update(ctx, func(store *model.Store) (bool, error) {
		store.AddBookmark(model.NewBookmark(model.NewBookmarkParams{URL: "https://example.com", Title: "Example"}))
		return true, nil
	})
	assert.NilError(t, err)

	err = d.Update(ctx, func(store *model.Store) (bool, error) {
		store.Reset()
		return false, nil
	})
	assert.NilError(t, err)

	store, err := st.Load(ctx)
	assert.NilError(t, err)
	assert.Assert(t, is.Len(store.Bookmarks, 1))
	assert.Equal(t, store.Bookmarks[0].Title, "Example")
}

func TestSaveBookmark_DropsPushedMetadata(t *testing.T) {
	d, _ := newDispatcher(t, nil)
	ctx := context.Background()
	url := "https://example.com/post"

	resp := d.Handle(ctx, messaging.Request{
		Action:   messaging.ActionSaveBookmark,
		URL:      url,
		Title:    "example.com",
		Metadata: &model.PageMetadata{Title: "Pushed Title"},
	})
	assert.Equal(t, resp.Status, messaging.StatusOK, resp.Error)
	assert.Equal(t, resp.Bookmark.Title, "Pushed Title")

	resp = d.Handle(ctx, messaging.Request{Action: messaging.ActionSaveBookmark, URL: url, Title: "Tab Title"})
	assert.Equal(t, resp.Status, messaging.StatusOK, resp.Error)
	assert.Equal(t, resp.Bookmark.Title, "Tab Title")
}

func TestSaveBookmark_EnrichmentDoesNotBlockUpdate(t *testing.T) {
	gate := newGateEnricher()
	d, st := newDispatcher(t, gate)
	d.Builder().Timeout = time.Minute
	ctx := context.Background()

	saved := make(chan messaging.Response, 1)
	go func() {
		saved <- d.Handle(ctx, messaging.Request{
			Action: messaging.ActionSaveBookmark,
			URL:    "https://example.com/slow",
			Title:  "example.com",
		})
	}()
	<-gate.entered

	updated := make(chan error, 1)
	go func() {
		updated <- d.Update(ctx, func(store *model.Store) (bool, error) {
			store.AddBookmark(model.NewBookmark(model.NewBookmarkParams{URL: "https://example.com/fast", Title: "Fast"}))
			return true, nil
		})
	}()
	select {
	case err := <-updated:
		assert.NilError(t, err)
	case <-time.After(5 * time.Second):
		close(gate.release)
		t.Fatal("update waited for the save's enrichment")
	}

	close(gate.release)
	resp := <-saved
	assert.Equal(t, resp.Status, messaging.StatusOK, resp.Error)
	assert.Equal(t, resp.Bookmark.Title, "Slow Title")

	store, err := st.Load(ctx)
	assert.NilError(t, err)
	assert.Assert(t, is.Len(store.Bookmarks, 2))
	assert.Equal(t, store.Bookmarks[0].URL, "https://example.com/slow")
	assert.Equal(t, store.Bookmarks[1].URL, "https://example.com/fast")
}
