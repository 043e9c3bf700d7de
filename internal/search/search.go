// Package search finds bookmarks by text, category, folder and tag.
package search

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/nikbrunner/sbm/internal/model"
)

// Query narrows the collection. Zero fields match everything.
type Query struct {
	Text     string
	Category model.Category
	Folder   string
	Tag      string
}

// IsZero reports whether the query matches every bookmark.
func (q Query) IsZero() bool {
	return strings.TrimSpace(q.Text) == "" && q.Category == "" && q.Folder == "" && q.Tag == ""
}

// Matches reports whether b satisfies every set field of q. Text is a
// case-insensitive substring over title, URL, tags and platform.
func (q Query) Matches(b *model.Bookmark) bool {
	if q.Category != "" && b.Category != q.Category {
		return false
	}
	if q.Folder != "" && b.FolderID != q.Folder {
		return false
	}
	if q.Tag != "" && !b.HasTag(q.Tag) {
		return false
	}

	text := strings.ToLower(strings.TrimSpace(q.Text))
	if text == "" {
		return true
	}
	if strings.Contains(strings.ToLower(b.Title), text) ||
		strings.Contains(strings.ToLower(b.URL), text) ||
		strings.Contains(strings.ToLower(b.Platform), text) {
		return true
	}
	for _, tag := range b.Tags {
		if strings.Contains(strings.ToLower(tag), text) {
			return true
		}
	}
	return false
}

// Filter returns the bookmarks matching q, keeping store order.
func Filter(store *model.Store, q Query) []*model.Bookmark {
	var out []*model.Bookmark
	for i := range store.Bookmarks {
		if q.Matches(&store.Bookmarks[i]) {
			out = append(out, &store.Bookmarks[i])
		}
	}
	return out
}

// SearchResult represents a fuzzy search match.
type SearchResult struct {
	Bookmark       *model.Bookmark
	MatchedIndexes []int
	Score          int
}

type bookmarkTitles []*model.Bookmark

func (bt bookmarkTitles) String(i int) string { return bt[i].Title }
func (bt bookmarkTitles) Len() int            { return len(bt) }

// FuzzySearchBookmarks matches query against bookmark titles.
// Results are sorted best first.
func FuzzySearchBookmarks(store *model.Store, query string) []SearchResult {
	all := make([]*model.Bookmark, len(store.Bookmarks))
	for i := range store.Bookmarks {
		all[i] = &store.Bookmarks[i]
	}
	return FuzzySearch(all, query)
}

// FuzzySearch matches query against the titles of an already filtered set.
func FuzzySearch(bookmarks []*model.Bookmark, query string) []SearchResult {
	if query == "" {
		return nil
	}

	source := bookmarkTitles(bookmarks)
	matches := fuzzy.FindFrom(query, source)

	results := make([]SearchResult, len(matches))
	for i, m := range matches {
		results[i] = SearchResult{
			Bookmark:       source[m.Index],
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}
	return results
}
