// Package messaging answers the action messages a browser extension sends:
// health pings, metadata scraping, page info and bookmark saves.
package messaging

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/nikbrunner/sbm/internal/capture"
	"github.com/nikbrunner/sbm/internal/classify"
	"github.com/nikbrunner/sbm/internal/extract"
	"github.com/nikbrunner/sbm/internal/logger"
	"github.com/nikbrunner/sbm/internal/model"
	"github.com/nikbrunner/sbm/internal/storage"
)

// ErrUnknownAction is returned for a message whose action is not handled.
var ErrUnknownAction = errors.New("unknown action")

type Action string

const (
	ActionPing                  Action = "ping"
	ActionGetMetadata           Action = "getMetadata"
	ActionGetPageInfo           Action = "getPageInfo"
	ActionPageMetadataExtracted Action = "pageMetadataExtracted"
	ActionSaveBookmark          Action = "saveBookmark"
)

const (
	StatusPong  = "pong"
	StatusOK    = "ok"
	StatusError = "error"
)

// Request is one inbound message.
type Request struct {
	Action   Action              `json:"action"`
	URL      string              `json:"url,omitempty"`
	Title    string              `json:"title,omitempty"`
	Favicon  string              `json:"favicon,omitempty"`
	HTML     string              `json:"html,omitempty"`
	Metadata *model.PageMetadata `json:"metadata,omitempty"`
	Form     *capture.Form       `json:"form,omitempty"`
}

// PageInfo describes the active page as the popup shows it.
type PageInfo struct {
	URL      string         `json:"url"`
	Title    string         `json:"title"`
	Favicon  string         `json:"favicon,omitempty"`
	Category model.Category `json:"category"`
	Platform string         `json:"platform"`
	Icon     string         `json:"icon"`
}

// Response is the reply to a Request.
type Response struct {
	Status   string              `json:"status"`
	Metadata *model.PageMetadata `json:"metadata,omitempty"`
	Page     *PageInfo           `json:"page,omitempty"`
	Bookmark *model.Bookmark     `json:"bookmark,omitempty"`
	Error    string              `json:"error,omitempty"`
}

// Dispatcher routes requests to their handlers. Saves within one process
// are serialized; other writers to the same storage still race.
type Dispatcher struct {
	storage  storage.Storage
	registry *extract.Registry
	cache    *capture.CacheEnricher
	fetch    capture.Enricher
	builder  *capture.Builder
	log      logger.Logger

	saveMu sync.Mutex
}

// NewDispatcher wires a dispatcher. fetch may be nil, in which case
// getMetadata needs the page HTML and saves only use pushed metadata.
func NewDispatcher(st storage.Storage, fetch capture.Enricher, log logger.Logger) *Dispatcher {
	if log == nil {
		log = logger.Nop()
	}
	cache := capture.NewCacheEnricher()
	chain := capture.Chain{cache}
	if fetch != nil {
		chain = append(chain, fetch)
	}
	return &Dispatcher{
		storage:  st,
		registry: extract.DefaultRegistry(),
		cache:    cache,
		fetch:    fetch,
		builder:  capture.NewBuilder(chain, log),
		log:      log,
	}
}

// Builder exposes the save pipeline so callers can tune its timeout.
func (d *Dispatcher) Builder() *capture.Builder { return d.builder }

// Handle processes req. Failures are reported in the response, never as a
// panic or transport error.
func (d *Dispatcher) Handle(ctx context.Context, req Request) Response {
	var (
		resp Response
		err  error
	)
	switch req.Action {
	case ActionPing:
		return Response{Status: StatusPong}
	case ActionGetMetadata:
		resp, err = d.getMetadata(ctx, req)
	case ActionGetPageInfo:
		resp, err = d.getPageInfo(req)
	case ActionPageMetadataExtracted:
		resp, err = d.pageMetadataExtracted(req)
	case ActionSaveBookmark:
		resp, err = d.saveBookmark(ctx, req)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownAction, req.Action)
	}
	if err != nil {
		d.log.Debug("message failed", logger.String("action", string(req.Action)), logger.Error(err))
		return Response{Status: StatusError, Error: err.Error()}
	}
	resp.Status = StatusOK
	return resp
}

func (d *Dispatcher) getMetadata(ctx context.Context, req Request) (Response, error) {
	if strings.TrimSpace(req.URL) == "" {
		return Response{}, capture.ErrNoURL
	}
	if req.HTML != "" {
		doc, err := extract.ParseString(req.HTML, req.URL)
		if err != nil {
			return Response{}, fmt.Errorf("parsing page: %w", err)
		}
		meta := d.registry.Extract(doc)
		return Response{Metadata: &meta}, nil
	}
	if d.fetch == nil {
		return Response{}, capture.ErrNoMetadata
	}
	meta, err := d.fetch.Enrich(ctx, req.URL)
	if err != nil {
		return Response{}, err
	}
	return Response{Metadata: meta}, nil
}

func (d *Dispatcher) getPageInfo(req Request) (Response, error) {
	url := strings.TrimSpace(req.URL)
	if url == "" {
		return Response{}, capture.ErrNoURL
	}
	detected := classify.Detect(url)
	return Response{Page: &PageInfo{
		URL:      url,
		Title:    req.Title,
		Favicon:  req.Favicon,
		Category: detected.Category,
		Platform: detected.Platform,
		Icon:     classify.Icon(detected.Category),
	}}, nil
}

func (d *Dispatcher) pageMetadataExtracted(req Request) (Response, error) {
	if strings.TrimSpace(req.URL) == "" {
		return Response{}, capture.ErrNoURL
	}
	if req.Metadata.IsEmpty() {
		return Response{}, capture.ErrNoMetadata
	}
	d.cache.Put(req.URL, *req.Metadata)
	return Response{}, nil
}

func (d *Dispatcher) saveBookmark(ctx context.Context, req Request) (Response, error) {
	if d.storage == nil {
		return Response{}, errors.New("no storage configured")
	}
	if req.Metadata != nil && !req.Metadata.IsEmpty() {
		d.cache.Put(req.URL, *req.Metadata)
	}
	var form capture.Form
	if req.Form != nil {
		form = *req.Form
	}

	// Build runs outside the save lock.
	current, err := d.storage.Load(ctx)
	if err != nil {
		return Response{}, fmt.Errorf("loading bookmarks: %w", err)
	}
	tab := capture.TabInfo{URL: req.URL, Title: req.Title, Favicon: req.Favicon}
	b, err := d.builder.Build(ctx, tab, form, current.CurrentSettings())
	if err != nil {
		return Response{}, err
	}

	d.saveMu.Lock()
	defer d.saveMu.Unlock()

	store, err := d.storage.Load(ctx)
	if err != nil {
		return Response{}, fmt.Errorf("loading bookmarks: %w", err)
	}
	store.AddBookmark(b)
	if err := d.storage.Save(ctx, store); err != nil {
		return Response{}, fmt.Errorf("saving bookmarks: %w", err)
	}
	d.cache.Delete(req.URL)
	d.log.Info("bookmark saved",
		logger.String("url", b.URL),
		logger.String("category", string(b.Category)),
		logger.String("folder", b.FolderID))
	return Response{Bookmark: &b}, nil
}

// Load returns the current store without taking the save lock. Use it for
// snapshots whose results are applied later through Update.
func (d *Dispatcher) Load(ctx context.Context) (*model.Store, error) {
	if d.storage == nil {
		return nil, errors.New("no storage configured")
	}
	return d.storage.Load(ctx)
}

// Update loads the store, applies fn and saves when fn reports a change.
// Runs under the save lock, so fn must not do network work.
func (d *Dispatcher) Update(ctx context.Context, fn func(store *model.Store) (bool, error)) error {
	if d.storage == nil {
		return errors.New("no storage configured")
	}
	d.saveMu.Lock()
	defer d.saveMu.Unlock()

	store, err := d.storage.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading bookmarks: %w", err)
	}
	changed, err := fn(store)
	if err != nil || !changed {
		return err
	}
	if err := d.storage.Save(ctx, store); err != nil {
		return fmt.Errorf("saving bookmarks: %w", err)
	}
	return nil
}

// Notify sends req and discards the outcome. Used for fire-and-forget
// messages whose failure must not reach the user.
func (d *Dispatcher) Notify(ctx context.Context, req Request) {
	if resp := d.Handle(ctx, req); resp.Status == StatusError {
		d.log.Debug("notification dropped", logger.String("action", string(req.Action)), logger.String("error", resp.Error))
	}
}
