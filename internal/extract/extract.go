// Package extract turns an HTML page into a sparse PageMetadata record.
package extract

import (
	"strings"

	"github.com/nikbrunner/sbm/internal/classify"
	"github.com/nikbrunner/sbm/internal/model"
)

// Extractor pulls platform-specific fields out of a document. Fields it
// cannot find are left empty.
type Extractor interface {
	Extract(doc *Document) model.PageMetadata
}

// ExtractorFunc adapts a function to Extractor.
type ExtractorFunc func(doc *Document) model.PageMetadata

func (f ExtractorFunc) Extract(doc *Document) model.PageMetadata { return f(doc) }

type entry struct {
	id        string
	domains   []string
	extractor Extractor
}

// Registry selects a platform extractor by the hostname of the page.
type Registry struct {
	entries []entry
}

// NewRegistry returns an empty registry. Pages it has no extractor for
// still get the generic meta fields.
func NewRegistry() *Registry {
	return &Registry{}
}

// DefaultRegistry returns a registry with every built-in platform.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("youtube", ExtractorFunc(youtube), "youtube.com", "youtu.be")
	r.Register("instagram", ExtractorFunc(instagram), "instagram.com")
	r.Register("tiktok", ExtractorFunc(tiktok), "tiktok.com")
	r.Register("twitter", ExtractorFunc(twitter), "twitter.com", "x.com")
	r.Register("spotify", ExtractorFunc(spotify), "spotify.com")
	return r
}

// Register adds an extractor for the given domains. A later registration
// with the same id replaces the earlier one.
func (r *Registry) Register(id string, ex Extractor, domains ...string) {
	for i := range r.entries {
		if r.entries[i].id == id {
			r.entries[i] = entry{id: id, domains: domains, extractor: ex}
			return
		}
	}
	r.entries = append(r.entries, entry{id: id, domains: domains, extractor: ex})
}

// Lookup returns the id and extractor registered for rawURL's host.
func (r *Registry) Lookup(rawURL string) (string, Extractor, bool) {
	host := classify.Hostname(rawURL)
	if host == "" {
		return "", nil, false
	}
	for _, e := range r.entries {
		for _, d := range e.domains {
			if classify.MatchesDomain(host, d) {
				return e.id, e.extractor, true
			}
		}
	}
	return "", nil, false
}

// Extract returns the generic meta fields of doc overlaid with whatever the
// matching platform extractor found. It never fails; a panicking extractor
// is treated as having found nothing.
func (r *Registry) Extract(doc *Document) model.PageMetadata {
	meta := Generic(doc)
	if doc == nil {
		return meta
	}
	_, ex, ok := r.Lookup(doc.URL)
	if !ok {
		return meta
	}
	overlay(&meta, safeExtract(ex, doc))
	return meta
}

func safeExtract(ex Extractor, doc *Document) (out model.PageMetadata) {
	defer func() {
		if recover() != nil {
			out = model.PageMetadata{}
		}
	}()
	return ex.Extract(doc)
}

// Generic reads the fields every page may carry in its head.
func Generic(doc *Document) model.PageMetadata {
	if doc == nil {
		return model.PageMetadata{}
	}
	meta := model.PageMetadata{
		URL:         doc.URL,
		Title:       doc.Meta("og:title"),
		Description: doc.Meta("description", "og:description"),
		Image:       doc.Meta("og:image"),
		Author:      doc.Meta("author", "article:author"),
		SiteName:    doc.Meta("og:site_name"),
	}
	if meta.Title == "" {
		meta.Title = doc.Title()
	}
	if doc.URL != "" {
		meta.Category = classify.Category(doc.URL)
		if p := classify.Platform(doc.URL); p != model.DefaultPlatform {
			meta.Platform = p
		}
	}
	return meta
}

// overlay copies every non-empty field of src onto dst.
func overlay(dst *model.PageMetadata, src model.PageMetadata) {
	set := func(d *string, s string) {
		if s != "" {
			*d = s
		}
	}
	set(&dst.Title, src.Title)
	set(&dst.Description, src.Description)
	set(&dst.Image, src.Image)
	set(&dst.Author, src.Author)
	set(&dst.SiteName, src.SiteName)
	set(&dst.Platform, src.Platform)
	set(&dst.Username, src.Username)
	set(&dst.Channel, src.Channel)
	set(&dst.Duration, src.Duration)
	set(&dst.ViewCount, src.ViewCount)
	if src.Category != "" {
		dst.Category = src.Category
	}
}

// pathOf returns the path of the document URL.
func pathOf(doc *Document) string {
	rest := doc.URL
	if i := strings.Index(rest, "://"); i >= 0 {
		rest = rest[i+3:]
	}
	if i := strings.IndexAny(rest, "?#"); i >= 0 {
		rest = rest[:i]
	}
	if i := strings.Index(rest, "/"); i >= 0 {
		return rest[i:]
	}
	return "/"
}
