package exporter_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/nikbrunner/sbm/internal/exporter"
	"github.com/nikbrunner/sbm/internal/importer"
	"github.com/nikbrunner/sbm/internal/model"
)

func sampleStore() *model.Store {
	store := model.NewStore()
	store.AddBookmark(model.Bookmark{
		ID: "b1", URL: "https://example.com/a", Title: `Plain, with "quotes"`,
		Category: model.CategoryText, Platform: "Web", FolderID: "default",
		Tags: []string{"go", "cli"}, Timestamp: 1700000000000,
	})
	store.AddBookmark(model.Bookmark{
		ID: "b2", URL: "https://www.youtube.com/watch?v=1", Title: "Video",
		Category: model.CategoryVideo, Platform: "YouTube", FolderID: "videos",
		Tags: []string{}, Timestamp: 1700000100000,
	})
	return store
}

func TestParseFormat(t *testing.T) {
	f, err := exporter.ParseFormat(" CSV ")
	assert.NilError(t, err)
	assert.Equal(t, f, exporter.FormatCSV)

	_, err = exporter.ParseFormat("xml")
	assert.ErrorContains(t, err, "unknown export format")
}

func TestFileName(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	assert.Equal(t, exporter.FileName(exporter.FormatJSON, now), "smart-bookmarks-1700000000123.json")
}

func TestExport_Empty(t *testing.T) {
	var buf bytes.Buffer
	err := exporter.Export(&buf, model.NewStore(), exporter.FormatJSON)
	assert.Assert(t, errors.Is(err, exporter.ErrEmpty))

	path := filepath.Join(t.TempDir(), "out.json")
	err = exporter.ExportFile(model.NewStore(), exporter.FormatJSON, path)
	assert.Assert(t, errors.Is(err, exporter.ErrEmpty))
	_, statErr := os.Stat(path)
	assert.Assert(t, os.IsNotExist(statErr))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	assert.NilError(t, exporter.Export(&buf, sampleStore(), exporter.FormatCSV))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, len(lines), 3)
	assert.Equal(t, lines[0], exporter.CSVHeader)
	assert.Equal(t, lines[1], `"Video","https://www.youtube.com/watch?v=1","video","YouTube","videos","","2023-11-14T22:15:00Z"`)
	assert.Equal(t, lines[2], `"Plain, with ""quotes""","https://example.com/a","text","Web","default","go;cli","2023-11-14T22:13:20Z"`)
}

func TestWriteJSON_PrettyArray(t *testing.T) {
	var buf bytes.Buffer
	assert.NilError(t, exporter.Export(&buf, sampleStore(), exporter.FormatJSON))
	assert.Check(t, is.Contains(buf.String(), "\n  {\n"))

	var out []model.Bookmark
	assert.NilError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, len(out), 2)
	assert.Equal(t, out[1].Title, `Plain, with "quotes"`)
}

func TestCSVRoundTrip(t *testing.T) {
	src := sampleStore()
	path := filepath.Join(t.TempDir(), "nested", "export.csv")
	assert.NilError(t, exporter.ExportFile(src, exporter.FormatCSV, path))

	dst := model.NewStore()
	sum, err := importer.ImportFile(dst, path)
	assert.NilError(t, err)
	assert.Equal(t, sum.Imported, len(src.Bookmarks))

	for _, b := range src.Bookmarks {
		assert.Assert(t, dst.HasBookmarkURL(b.URL), "missing %s", b.URL)
		got := findByURL(dst, b.URL)
		assert.Equal(t, got.Title, b.Title)
		assert.Equal(t, got.Category, b.Category)
		assert.Equal(t, got.FolderID, b.FolderID)
		assert.DeepEqual(t, got.Tags, b.Tags)
		assert.Equal(t, got.Timestamp, b.Timestamp)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	src := sampleStore()
	path := filepath.Join(t.TempDir(), "export.json")
	assert.NilError(t, exporter.ExportFile(src, exporter.FormatJSON, path))

	dst := model.NewStore()
	sum, err := importer.ImportFile(dst, path)
	assert.NilError(t, err)
	assert.Equal(t, sum.Imported, 2)
	assert.Equal(t, findByURL(dst, "https://example.com/a").ID, "b1")
}

func TestHTMLRoundTrip(t *testing.T) {
	src := sampleStore()
	path := filepath.Join(t.TempDir(), "export.html")
	assert.NilError(t, exporter.ExportFile(src, exporter.FormatHTML, path))

	dst := model.NewStore()
	sum, err := importer.ImportFile(dst, path)
	assert.NilError(t, err)
	assert.Equal(t, sum.Imported, 2)

	video := findByURL(dst, "https://www.youtube.com/watch?v=1")
	assert.Equal(t, dst.FolderLabel(video.FolderID), "📹 Videos")
	assert.DeepEqual(t, findByURL(dst, "https://example.com/a").Tags, []string{"go", "cli"})
}

func findByURL(store *model.Store, url string) model.Bookmark {
	for _, b := range store.Bookmarks {
		if b.URL == url {
			return b
		}
	}
	return model.Bookmark{}
}
