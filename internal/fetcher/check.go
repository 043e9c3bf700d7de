// Package fetcher runs network work over many bookmarks at once: link health
// checks and metadata backfill.
package fetcher

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/nikbrunner/sbm/internal/classify"
	"github.com/nikbrunner/sbm/internal/model"
)

// Status is the health of a bookmarked URL.
type Status int

const (
	Healthy     Status = iota // 2xx or 3xx response
	Dead                      // 404 or 410
	Unreachable               // timeout, DNS failure, refused, 5xx
)

func (s Status) String() string {
	switch s {
	case Healthy:
		return "healthy"
	case Dead:
		return "dead"
	default:
		return "unreachable"
	}
}

// Result holds the check outcome for one bookmark.
type Result struct {
	Bookmark   *model.Bookmark
	Status     Status
	StatusCode int    // 0 if the connection failed
	Error      string // readable reason for unreachable URLs
}

// ProgressFunc is called after each URL is checked.
type ProgressFunc func(completed, total int)

// CheckOptions tunes CheckURLs.
type CheckOptions struct {
	Concurrency int
	Timeout     time.Duration
	// ExcludeDomains lists hosts where a 404 usually means "private" rather
	// than gone, e.g. source forges.
	ExcludeDomains []string
	OnProgress     ProgressFunc
	Client         *http.Client
}

const maxRedirects = 10

// CheckURLs probes every bookmark URL with a bounded worker pool. Results
// are returned in input order. Cancelling ctx marks the remaining URLs as
// unreachable.
func CheckURLs(ctx context.Context, bookmarks []model.Bookmark, opts CheckOptions) []Result {
	if len(bookmarks) == 0 {
		return nil
	}

	// net/http logs protocol noise from misbehaving servers.
	originalOutput := log.Writer()
	log.SetOutput(io.Discard)
	defer log.SetOutput(originalOutput)

	workers := opts.Concurrency
	if workers < 1 {
		workers = 1
	}
	client := opts.Client
	if client == nil {
		client = newClient(opts.Timeout)
	}

	results := make([]Result, len(bookmarks))
	jobs := make(chan int, len(bookmarks))
	var wg sync.WaitGroup

	var progressMu sync.Mutex
	completed := 0

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = checkURL(ctx, client, &bookmarks[idx], opts.ExcludeDomains)

				if opts.OnProgress != nil {
					progressMu.Lock()
					completed++
					opts.OnProgress(completed, len(bookmarks))
					progressMu.Unlock()
				}
			}
		}()
	}

	for i := range bookmarks {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

func newClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
}

func checkURL(ctx context.Context, client *http.Client, bookmark *model.Bookmark, excluded []string) Result {
	result := Result{Bookmark: bookmark}

	if err := ctx.Err(); err != nil {
		result.Status = Unreachable
		result.Error = normalizeError(err)
		return result
	}

	// HEAD first; some servers only answer GET.
	resp, err := do(ctx, client, http.MethodHead, bookmark.URL)
	if err != nil || resp.StatusCode == http.StatusMethodNotAllowed {
		if resp != nil {
			resp.Body.Close()
		}
		resp, err = do(ctx, client, http.MethodGet, bookmark.URL)
		if err != nil {
			result.Status = Unreachable
			result.Error = normalizeError(err)
			return result
		}
	}
	defer resp.Body.Close()

	result.StatusCode = resp.StatusCode

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 400:
		result.Status = Healthy
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		if isExcludedDomain(bookmark.URL, excluded) {
			result.Status = Unreachable
			result.Error = "Possibly private (auth required)"
		} else {
			result.Status = Dead
		}
	default:
		result.Status = Unreachable
		result.Error = http.StatusText(resp.StatusCode)
	}
	return result
}

func do(ctx context.Context, client *http.Client, method, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, err
	}
	return client.Do(req)
}

func isExcludedDomain(rawURL string, excluded []string) bool {
	host := classify.Hostname(rawURL)
	if host == "" {
		return false
	}
	for _, domain := range excluded {
		if classify.MatchesDomain(host, strings.ToLower(domain)) {
			return true
		}
	}
	return false
}

// normalizeError maps verbose transport errors to short labels.
func normalizeError(err error) string {
	if errors.Is(err, context.Canceled) {
		return "Canceled"
	}
	errStr := err.Error()
	lower := strings.ToLower(errStr)

	switch {
	case strings.Contains(lower, "no such host"):
		return "DNS failure"
	case strings.Contains(lower, "context deadline exceeded"),
		strings.Contains(lower, "timeout"):
		return "Timeout"
	case strings.Contains(lower, "connection refused"):
		return "Connection refused"
	case strings.Contains(lower, "certificate"):
		return "TLS/certificate error"
	case strings.Contains(lower, "network is unreachable"):
		return "Network unreachable"
	case strings.Contains(lower, "tls:"):
		return "TLS error"
	default:
		return errStr
	}
}

// Summary counts results per status.
type Summary struct {
	Healthy, Dead, Unreachable int
}

// Summarize tallies results.
func Summarize(results []Result) Summary {
	var s Summary
	for _, r := range results {
		switch r.Status {
		case Healthy:
			s.Healthy++
		case Dead:
			s.Dead++
		default:
			s.Unreachable++
		}
	}
	return s
}

// DeadIDs returns the IDs of bookmarks whose URL is gone.
func DeadIDs(results []Result) []string {
	var ids []string
	for _, r := range results {
		if r.Status == Dead {
			ids = append(ids, r.Bookmark.ID)
		}
	}
	return ids
}
