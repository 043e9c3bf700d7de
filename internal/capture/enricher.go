package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"

	"github.com/nikbrunner/sbm/internal/extract"
	"github.com/nikbrunner/sbm/internal/model"
)

// ErrNoMetadata means an enricher had nothing for the requested URL.
var ErrNoMetadata = errors.New("no metadata available")

// Enricher produces page metadata for a URL. Implementations may be slow
// or fail; the Builder treats both as "no enrichment".
type Enricher interface {
	Enrich(ctx context.Context, url string) (*model.PageMetadata, error)
}

// maxPageBytes bounds how much of a page is read for extraction.
const maxPageBytes = 2 << 20

// HTTPEnricher downloads the page and runs the extractor registry on it.
type HTTPEnricher struct {
	Client    *http.Client
	Registry  *extract.Registry
	UserAgent string
}

// NewHTTPEnricher returns an HTTPEnricher with the default registry.
func NewHTTPEnricher(client *http.Client) *HTTPEnricher {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPEnricher{
		Client:    client,
		Registry:  extract.DefaultRegistry(),
		UserAgent: "sbm/1.0 (+bookmark metadata)",
	}
}

func (e *HTTPEnricher) Enrich(ctx context.Context, url string) (*model.PageMetadata, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	if e.UserAgent != "" {
		req.Header.Set("User-Agent", e.UserAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := e.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetching page: unexpected status %s", resp.Status)
	}

	doc, err := extract.Parse(io.LimitReader(resp.Body, maxPageBytes), url)
	if err != nil {
		return nil, fmt.Errorf("parsing page: %w", err)
	}
	meta := registryOrDefault(e.Registry).Extract(doc)
	return &meta, nil
}

// DocumentEnricher extracts metadata from a saved HTML file, for pages the
// user already has on disk.
type DocumentEnricher struct {
	Path     string
	Registry *extract.Registry
}

func (e *DocumentEnricher) Enrich(_ context.Context, url string) (*model.PageMetadata, error) {
	f, err := os.Open(e.Path)
	if err != nil {
		return nil, fmt.Errorf("opening document: %w", err)
	}
	defer f.Close()

	doc, err := extract.Parse(f, url)
	if err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}
	meta := registryOrDefault(e.Registry).Extract(doc)
	return &meta, nil
}

// DefaultCacheSize bounds a CacheEnricher made by NewCacheEnricher.
const DefaultCacheSize = 256

// CacheEnricher serves metadata that was pushed ahead of a save, keyed by URL.
// Once full, the oldest entry is dropped first.
type CacheEnricher struct {
	mu      sync.RWMutex
	max     int
	order   []string
	entries map[string]model.PageMetadata
}

func NewCacheEnricher() *CacheEnricher {
	return NewCacheEnricherSize(DefaultCacheSize)
}

// NewCacheEnricherSize returns a cache holding at most max pages.
func NewCacheEnricherSize(max int) *CacheEnricher {
	if max < 1 {
		max = 1
	}
	return &CacheEnricher{max: max, entries: make(map[string]model.PageMetadata)}
}

// Put stores meta under url, replacing any earlier entry.
func (c *CacheEnricher) Put(url string, meta model.PageMetadata) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[url]; !ok {
		for len(c.order) >= c.max {
			delete(c.entries, c.order[0])
			c.order = c.order[1:]
		}
		c.order = append(c.order, url)
	}
	c.entries[url] = meta
}

// Delete drops the entry for url, if any.
func (c *CacheEnricher) Delete(url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[url]; !ok {
		return
	}
	delete(c.entries, url)
	for i, u := range c.order {
		if u == url {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of cached pages.
func (c *CacheEnricher) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *CacheEnricher) Enrich(_ context.Context, url string) (*model.PageMetadata, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	meta, ok := c.entries[url]
	if !ok {
		return nil, ErrNoMetadata
	}
	return &meta, nil
}

// Chain tries each enricher in order and returns the first non-empty result.
type Chain []Enricher

func (c Chain) Enrich(ctx context.Context, url string) (*model.PageMetadata, error) {
	var errs []error
	for _, e := range c {
		if e == nil {
			continue
		}
		meta, err := e.Enrich(ctx, url)
		if err == nil && !meta.IsEmpty() {
			return meta, nil
		}
		if err != nil {
			errs = append(errs, err)
		}
		if ctx.Err() != nil {
			break
		}
	}
	if len(errs) == 0 {
		return nil, ErrNoMetadata
	}
	return nil, errors.Join(errs...)
}

func registryOrDefault(r *extract.Registry) *extract.Registry {
	if r == nil {
		return extract.DefaultRegistry()
	}
	return r
}
