// Package exporter writes the bookmark collection to JSON, CSV or Netscape
// HTML files.
package exporter

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nikbrunner/sbm/internal/model"
)

// ErrEmpty is returned when there is nothing to export. No file is created.
var ErrEmpty = errors.New("no bookmarks to export")

// Format selects the export file type.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatHTML Format = "html"
)

// Formats lists every supported format.
var Formats = []Format{FormatJSON, FormatCSV, FormatHTML}

// ParseFormat parses a format name case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown export format %q (want json, csv or html)", s)
}

// Ext returns the file extension for the format, without the dot.
func (f Format) Ext() string { return string(f) }

// DefaultExportPath returns ~/Downloads/smart-bookmarks-<unixmillis>.<ext>.
func DefaultExportPath(format Format, now time.Time) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "Downloads", FileName(format, now)), nil
}

// FileName returns the export file name for format at time now.
func FileName(format Format, now time.Time) string {
	return fmt.Sprintf("smart-bookmarks-%d.%s", now.UnixMilli(), format.Ext())
}

// Export writes every bookmark in store to w.
func Export(w io.Writer, store *model.Store, format Format) error {
	if len(store.Bookmarks) == 0 {
		return ErrEmpty
	}
	switch format {
	case FormatJSON:
		return WriteJSON(w, store.Bookmarks)
	case FormatCSV:
		return WriteCSV(w, store.Bookmarks)
	case FormatHTML:
		_, err := io.WriteString(w, ExportHTML(store))
		return err
	}
	return fmt.Errorf("unknown export format %q", format)
}

// ExportFile writes store to path, creating parent directories. An empty
// store returns ErrEmpty without touching the filesystem.
func ExportFile(store *model.Store, format Format, path string) error {
	if len(store.Bookmarks) == 0 {
		return ErrEmpty
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}

	w := bufio.NewWriter(f)
	if err := Export(w, store, format); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("failed to write export file: %w", err)
	}
	return f.Close()
}
