package exporter

import (
	"fmt"
	"html"
	"strings"

	"github.com/nikbrunner/sbm/internal/model"
)

// ExportHTML renders the store as a Netscape bookmark file. Bookmarks in the
// default folder, or in a folder that no longer exists, go to the top level;
// every other folder becomes an <H3> section.
func ExportHTML(store *model.Store) string {
	var b strings.Builder

	b.WriteString("<!DOCTYPE NETSCAPE-Bookmark-file-1>\n")
	b.WriteString("<META HTTP-EQUIV=\"Content-Type\" CONTENT=\"text/html; charset=UTF-8\">\n")
	b.WriteString("<TITLE>Bookmarks</TITLE>\n")
	b.WriteString("<H1>Bookmarks</H1>\n")
	b.WriteString("<DL><p>\n")

	for _, folder := range store.AllFolders() {
		if folder.ID == model.DefaultFolderID {
			continue
		}
		bookmarks := store.GetBookmarksInFolder(folder.ID)
		if len(bookmarks) == 0 && isBuiltin(folder.ID) {
			continue
		}
		fmt.Fprintf(&b, "    <DT><H3 ADD_DATE=\"%d\">%s</H3>\n", folder.CreatedAt/1000, html.EscapeString(folder.Name))
		b.WriteString("    <DL><p>\n")
		writeBookmarks(&b, bookmarks, 2)
		b.WriteString("    </DL><p>\n")
	}

	var root []model.Bookmark
	for _, bm := range store.Bookmarks {
		if bm.FolderID == model.DefaultFolderID || store.GetFolderByID(bm.FolderID) == nil {
			root = append(root, bm)
		}
	}
	writeBookmarks(&b, root, 1)

	b.WriteString("</DL><p>\n")
	return b.String()
}

func writeBookmarks(b *strings.Builder, bookmarks []model.Bookmark, indent int) {
	prefix := strings.Repeat("    ", indent)
	for _, bm := range bookmarks {
		fmt.Fprintf(b, "%s<DT><A HREF=\"%s\" ADD_DATE=\"%d\"", prefix, html.EscapeString(bm.URL), bm.Timestamp/1000)
		if len(bm.Tags) > 0 {
			fmt.Fprintf(b, " TAGS=\"%s\"", html.EscapeString(strings.Join(bm.Tags, ",")))
		}
		fmt.Fprintf(b, ">%s</A>\n", html.EscapeString(bm.Title))
	}
}

func isBuiltin(id string) bool {
	for _, f := range model.BuiltinFolders {
		if f.ID == id {
			return true
		}
	}
	return false
}
