package capture_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gotest.tools/v3/assert"

	"github.com/nikbrunner/sbm/internal/capture"
	"github.com/nikbrunner/sbm/internal/classify"
	"github.com/nikbrunner/sbm/internal/logger"
	"github.com/nikbrunner/sbm/internal/model"
)

type stubEnricher struct {
	meta  *model.PageMetadata
	err   error
	delay time.Duration
	calls int
}

func (s *stubEnricher) Enrich(_ context.Context, _ string) (*model.PageMetadata, error) {
	s.calls++
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return s.meta, s.err
}

func TestMerge_CategoryPrecedence(t *testing.T) {
	settings := model.DefaultSettings()

	tests := []struct {
		name string
		url  string
		meta *model.PageMetadata
		form capture.Form
		want model.Category
	}{
		{"classifier", "https://youtube.com/watch?v=1", nil, capture.Form{}, model.CategoryVideo},
		{"auto uses classifier", "https://pinterest.com/pin/1", nil, capture.Form{Category: "auto"}, model.CategoryImage},
		{"form override", "https://youtube.com/watch?v=1", nil, capture.Form{Category: "audio"}, model.CategoryAudio},
		{"enrichment upgrades text", "https://example.com/clip", &model.PageMetadata{Category: model.CategoryVideo}, capture.Form{}, model.CategoryVideo},
		{"enrichment does not override non-text", "https://youtube.com/watch?v=1", &model.PageMetadata{Category: model.CategoryImage}, capture.Form{}, model.CategoryVideo},
		{"unknown form value falls through", "https://example.com", nil, capture.Form{Category: "podcast"}, model.CategoryText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := capture.Merge(capture.TabInfo{URL: tt.url, Title: "t"}, classify.Detect(tt.url), tt.meta, tt.form, settings)
			assert.Equal(t, b.Category, tt.want)
		})
	}
}

func TestMerge_Title(t *testing.T) {
	settings := model.DefaultSettings()
	url := "https://www.instagram.com/reel/abc/"
	detected := classify.Detect(url)

	tests := []struct {
		name string
		tab  string
		meta *model.PageMetadata
		form capture.Form
		want string
	}{
		{"tab title only", "Tab", nil, capture.Form{}, "Tab"},
		{"extracted replaces tab", "Tab", &model.PageMetadata{Title: "Real"}, capture.Form{}, "Real"},
		{"placeholder ignored", "Tab", &model.PageMetadata{Title: "Instagram Reel"}, capture.Form{}, "Tab"},
		{"platform name ignored", "Tab", &model.PageMetadata{Title: "Instagram"}, capture.Form{}, "Tab"},
		{"username appended", "Tab", &model.PageMetadata{Title: "Sunset", Username: "@joe"}, capture.Form{}, "Sunset - @joe"},
		{"channel when no username", "Tab", &model.PageMetadata{Channel: "Chan"}, capture.Form{}, "Tab - Chan"},
		{"form override wins", "Tab", &model.PageMetadata{Title: "Real", Username: "@joe"}, capture.Form{Title: "Mine"}, "Mine"},
		{"empty falls back to URL", "", nil, capture.Form{}, url},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := capture.Merge(capture.TabInfo{URL: url, Title: tt.tab}, detected, tt.meta, tt.form, settings)
			assert.Equal(t, b.Title, tt.want)
		})
	}
}

func TestMerge_PlatformFolderTags(t *testing.T) {
	settings := model.DefaultSettings()
	settings.DefaultFolder = "tutorials"

	url := "https://example.com/a"
	b := capture.Merge(
		capture.TabInfo{URL: url, Title: "A", Favicon: "https://example.com/favicon.ico"},
		classify.Detect(url),
		&model.PageMetadata{Platform: "Medium"},
		capture.Form{Tags: "go, cli ,,"},
		settings,
	)
	assert.Equal(t, b.Platform, "Medium")
	assert.Equal(t, b.FolderID, "tutorials")
	assert.DeepEqual(t, b.Tags, []string{"go", "cli"})
	assert.Equal(t, b.Favicon, "https://example.com/favicon.ico")
	assert.Assert(t, b.Metadata != nil)
	assert.Assert(t, b.ID != "")
	assert.Assert(t, b.Timestamp > 0)

	yt := "https://youtube.com/watch?v=1"
	b = capture.Merge(capture.TabInfo{URL: yt}, classify.Detect(yt), &model.PageMetadata{Platform: "Other"},
		capture.Form{Folder: "videos"}, model.Settings{})
	assert.Equal(t, b.Platform, "YouTube")
	assert.Equal(t, b.FolderID, "videos")

	b = capture.Merge(capture.TabInfo{URL: url}, classify.Detect(url), nil, capture.Form{}, model.Settings{})
	assert.Equal(t, b.Platform, model.DefaultPlatform)
	assert.Equal(t, b.FolderID, model.DefaultFolderID)
	assert.Assert(t, b.Metadata == nil)
	assert.DeepEqual(t, b.Tags, []string{})
}

func TestBuild_ExampleIsTextWeb(t *testing.T) {
	b, err := capture.NewBuilder(nil, nil).Build(context.Background(),
		capture.TabInfo{URL: "https://example.com", Title: "Example Domain"}, capture.Form{}, model.DefaultSettings())
	assert.NilError(t, err)
	assert.Equal(t, b.Category, model.CategoryText)
	assert.Equal(t, b.Platform, "Web")
	assert.Equal(t, b.Title, "Example Domain")
}

func TestBuild_NoURL(t *testing.T) {
	_, err := capture.NewBuilder(nil, nil).Build(context.Background(), capture.TabInfo{URL: "  "}, capture.Form{}, model.DefaultSettings())
	assert.Assert(t, errors.Is(err, capture.ErrNoURL))
}

func TestBuild_UsesEnrichment(t *testing.T) {
	stub := &stubEnricher{meta: &model.PageMetadata{Title: "Great Talk", Channel: "Chan"}}
	b, err := capture.NewBuilder(stub, nil).Build(context.Background(),
		capture.TabInfo{URL: "https://youtube.com/watch?v=1", Title: "(3) YouTube"}, capture.Form{}, model.DefaultSettings())
	assert.NilError(t, err)
	assert.Equal(t, b.Title, "Great Talk - Chan")
	assert.Equal(t, stub.calls, 1)
}

func TestBuild_AutoDetectOffSkipsEnrichment(t *testing.T) {
	stub := &stubEnricher{meta: &model.PageMetadata{Title: "Enriched"}}
	settings := model.DefaultSettings()
	settings.AutoDetect = false

	b, err := capture.NewBuilder(stub, nil).Build(context.Background(),
		capture.TabInfo{URL: "https://example.com", Title: "Tab"}, capture.Form{}, settings)
	assert.NilError(t, err)
	assert.Equal(t, b.Title, "Tab")
	assert.Equal(t, stub.calls, 0)
}

func TestBuild_EnrichmentFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	stub := &stubEnricher{err: errors.New("connection refused")}

	b, err := capture.NewBuilder(stub, logger.FromZap(zap.New(core))).Build(context.Background(),
		capture.TabInfo{URL: "https://example.com", Title: "Tab"}, capture.Form{}, model.DefaultSettings())
	assert.NilError(t, err)
	assert.Equal(t, b.Title, "Tab")
	assert.Equal(t, logs.FilterMessage("metadata enrichment failed").Len(), 1)
}

func TestBuild_EnrichmentTimeout(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	stub := &stubEnricher{meta: &model.PageMetadata{Title: "Late"}, delay: 300 * time.Millisecond}

	builder := capture.NewBuilder(stub, logger.FromZap(zap.New(core)))
	builder.Timeout = 20 * time.Millisecond

	b, err := builder.Build(context.Background(),
		capture.TabInfo{URL: "https://example.com", Title: "Tab"}, capture.Form{}, model.DefaultSettings())
	assert.NilError(t, err)
	assert.Equal(t, b.Title, "Tab")
	assert.Equal(t, logs.FilterMessage("metadata enrichment timed out").Len(), 1)
}
