// Package capture turns the page a user is looking at into a Bookmark,
// reconciling the URL classifier, optional page metadata and the save form.
package capture

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/nikbrunner/sbm/internal/classify"
	"github.com/nikbrunner/sbm/internal/extract"
	"github.com/nikbrunner/sbm/internal/logger"
	"github.com/nikbrunner/sbm/internal/model"
)

// ErrNoURL is returned when there is no page to save.
var ErrNoURL = errors.New("no page URL")

// DefaultTimeout bounds how long a save waits for enrichment.
const DefaultTimeout = 5 * time.Second

// CategoryAuto in Form.Category asks for automatic detection.
const CategoryAuto = "auto"

// TabInfo describes the page being saved.
type TabInfo struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Favicon string `json:"favicon,omitempty"`
}

// Form holds the user's choices from the save dialog. Empty fields mean
// "not chosen".
type Form struct {
	Category string `json:"category,omitempty"` // category name or "auto"
	Folder   string `json:"folder,omitempty"`
	Tags     string `json:"tags,omitempty"` // comma-separated
	Title    string `json:"title,omitempty"`
}

// Builder creates bookmarks. The zero value works without enrichment.
type Builder struct {
	Enricher Enricher
	Timeout  time.Duration
	Logger   logger.Logger
}

// NewBuilder returns a Builder that enriches through e.
func NewBuilder(e Enricher, log logger.Logger) *Builder {
	if log == nil {
		log = logger.Nop()
	}
	return &Builder{Enricher: e, Timeout: DefaultTimeout, Logger: log}
}

type enrichResult struct {
	meta *model.PageMetadata
	err  error
}

// Build classifies tab, waits for enrichment when settings allow it, and
// returns the merged bookmark. Enrichment problems never fail a save.
func (b *Builder) Build(ctx context.Context, tab TabInfo, form Form, settings model.Settings) (model.Bookmark, error) {
	tab.URL = strings.TrimSpace(tab.URL)
	if tab.URL == "" {
		return model.Bookmark{}, ErrNoURL
	}

	var meta *model.PageMetadata
	if settings.AutoDetect {
		meta = b.enrich(ctx, tab.URL)
	}
	return Merge(tab, classify.Detect(tab.URL), meta, form, settings), nil
}

func (b *Builder) enrich(ctx context.Context, url string) *model.PageMetadata {
	if b.Enricher == nil {
		return nil
	}
	log := b.logger()

	timeout := b.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan enrichResult, 1)
	go func() {
		meta, err := b.Enricher.Enrich(ctx, url)
		done <- enrichResult{meta: meta, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			if errors.Is(res.err, context.DeadlineExceeded) {
				log.Warn("metadata enrichment timed out", logger.String("url", url), logger.Duration("timeout", timeout))
			} else if errors.Is(res.err, ErrNoMetadata) {
				log.Debug("no metadata for page", logger.String("url", url))
			} else {
				log.Warn("metadata enrichment failed", logger.String("url", url), logger.Error(res.err))
			}
			return nil
		}
		return res.meta
	case <-ctx.Done():
		log.Warn("metadata enrichment timed out", logger.String("url", url), logger.Duration("timeout", timeout))
		return nil
	}
}

func (b *Builder) logger() logger.Logger {
	if b.Logger == nil {
		return logger.Nop()
	}
	return b.Logger
}

// Merge reconciles the sources into one bookmark. It is pure apart from the
// generated id and timestamp.
func Merge(tab TabInfo, detected classify.Result, meta *model.PageMetadata, form Form, settings model.Settings) model.Bookmark {
	if meta.IsEmpty() {
		meta = nil
	}

	return model.NewBookmark(model.NewBookmarkParams{
		URL:      tab.URL,
		Title:    mergeTitle(tab, meta, form),
		Category: mergeCategory(detected, meta, form),
		Platform: mergePlatform(detected, meta),
		FolderID: mergeFolder(form, settings),
		Tags:     model.ParseTags(form.Tags),
		Favicon:  tab.Favicon,
		Metadata: meta,
	})
}

func mergeCategory(detected classify.Result, meta *model.PageMetadata, form Form) model.Category {
	if c, err := model.ParseCategory(form.Category); err == nil {
		return c
	}
	if detected.Category == model.CategoryText && meta != nil && meta.Category.Valid() {
		return meta.Category
	}
	return detected.Category
}

func mergeTitle(tab TabInfo, meta *model.PageMetadata, form Form) string {
	if t := strings.TrimSpace(form.Title); t != "" {
		return t
	}

	title := strings.TrimSpace(tab.Title)
	if meta != nil {
		if t := strings.TrimSpace(meta.Title); t != "" && !IsPlaceholderTitle(t) {
			title = t
		}
		suffix := meta.Username
		if suffix == "" {
			suffix = meta.Channel
		}
		if suffix = strings.TrimSpace(suffix); suffix != "" && title != "" && !strings.HasSuffix(title, " - "+suffix) {
			title += " - " + suffix
		}
	}
	if title == "" {
		return tab.URL
	}
	return title
}

// IsPlaceholderTitle reports whether t is a stand-in rather than a real
// page title: a bare platform name or one of the extractor fallbacks.
func IsPlaceholderTitle(t string) bool {
	switch t {
	case extract.InstagramReelTitle, extract.InstagramPostTitle, extract.TikTokVideoTitle:
		return true
	}
	return classify.IsPlatformName(t)
}

func mergePlatform(detected classify.Result, meta *model.PageMetadata) string {
	if detected.Platform != "" && detected.Platform != model.DefaultPlatform {
		return detected.Platform
	}
	if meta != nil && meta.Platform != "" {
		return meta.Platform
	}
	return model.DefaultPlatform
}

func mergeFolder(form Form, settings model.Settings) string {
	if f := strings.TrimSpace(form.Folder); f != "" {
		return f
	}
	if settings.DefaultFolder != "" {
		return settings.DefaultFolder
	}
	return model.DefaultFolderID
}
