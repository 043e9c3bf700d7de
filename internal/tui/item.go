package tui

import (
	"strings"

	"github.com/nikbrunner/sbm/internal/classify"
	"github.com/nikbrunner/sbm/internal/model"
)

// Item is one row of the bookmark list. Bookmark points into the store.
type Item struct {
	Bookmark *model.Bookmark
}

// ID returns the bookmark ID.
func (i Item) ID() string {
	return i.Bookmark.ID
}

// Title returns the display title, prefixed with the category icon.
func (i Item) Title() string {
	return classify.Icon(i.Bookmark.Category) + " " + i.Bookmark.Title
}

// Subtitle returns "platform · folder · #tag #tag".
func (i Item) Subtitle(store *model.Store) string {
	parts := []string{i.Bookmark.Platform, store.FolderLabel(i.Bookmark.FolderID)}
	if len(i.Bookmark.Tags) > 0 {
		tags := make([]string, len(i.Bookmark.Tags))
		for n, t := range i.Bookmark.Tags {
			tags[n] = "#" + t
		}
		parts = append(parts, strings.Join(tags, " "))
	}
	return strings.Join(parts, " · ")
}
