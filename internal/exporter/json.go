package exporter

import (
	"encoding/json"
	"io"

	"github.com/nikbrunner/sbm/internal/model"
)

// WriteJSON writes bookmarks as a pretty-printed JSON array.
func WriteJSON(w io.Writer, bookmarks []model.Bookmark) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(bookmarks)
}
