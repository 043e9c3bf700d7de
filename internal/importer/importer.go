// Package importer reads bookmark files produced by sbm or by browsers and
// merges them into a store.
package importer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/nikbrunner/sbm/internal/model"
)

// ErrMalformed is returned when a file cannot be read as the requested format
// at all. Nothing is written in that case.
var ErrMalformed = errors.New("malformed import file")

// Result is the parsed content of an import file, not yet merged.
type Result struct {
	Bookmarks []model.Bookmark
	Folders   []model.Folder
	Invalid   int // records rejected by validation
}

// Summary reports what a merge did.
type Summary struct {
	Imported int
	Skipped  int // duplicates of stored URLs or of earlier records in the file
	Invalid  int
}

// Format identifies an import file type.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatHTML Format = "html"
)

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".csv":
		return FormatCSV, nil
	case ".html", ".htm":
		return FormatHTML, nil
	}
	return "", fmt.Errorf("unsupported import file %q (want .json, .csv or .html)", filepath.Base(path))
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Parse reads r in the given format.
func Parse(r io.Reader, format Format) (Result, error) {
	switch format {
	case FormatJSON:
		return ParseJSON(r)
	case FormatCSV:
		return ParseCSV(r)
	case FormatHTML:
		return ParseHTMLBookmarks(r)
	}
	return Result{}, fmt.Errorf("unsupported import format %q", format)
}

// Apply merges res into store. Folders are matched by name; bookmarks are
// deduplicated by URL and prepended.
func Apply(store *model.Store, res Result) Summary {
	remap := store.MergeFolders(res.Folders)
	bookmarks := make([]model.Bookmark, len(res.Bookmarks))
	for i, b := range res.Bookmarks {
		if id, ok := remap[b.FolderID]; ok {
			b.FolderID = id
		}
		bookmarks[i] = b
	}

	imported, skipped := store.ImportMerge(bookmarks)
	return Summary{Imported: imported, Skipped: skipped, Invalid: res.Invalid}
}

// ImportFile parses the file at path and merges it into store. On error the
// store is left untouched.
func ImportFile(store *model.Store, path string) (Summary, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return Summary{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to open import file: %w", err)
	}
	defer f.Close()

	res, err := Parse(f, format)
	if err != nil {
		return Summary{}, err
	}
	return Apply(store, res), nil
}
