package exporter

import (
	"io"
	"strings"
	"time"

	"github.com/nikbrunner/sbm/internal/model"
)

// CSVHeader is the first line of every CSV export.
const CSVHeader = "Title,URL,Category,Platform,Folder,Tags,Date"

// WriteCSV writes bookmarks with every field quoted, tags joined by ";"
// and the date in RFC 3339.
func WriteCSV(w io.Writer, bookmarks []model.Bookmark) error {
	var b strings.Builder
	b.WriteString(CSVHeader)
	b.WriteString("\n")

	for _, bm := range bookmarks {
		fields := []string{
			bm.Title,
			bm.URL,
			string(bm.Category),
			bm.Platform,
			bm.FolderID,
			strings.Join(bm.Tags, ";"),
			bm.CreatedAt().UTC().Format(time.RFC3339),
		}
		for i, f := range fields {
			if i > 0 {
				b.WriteString(",")
			}
			b.WriteString(quote(f))
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
