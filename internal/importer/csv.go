package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nikbrunner/sbm/internal/classify"
	"github.com/nikbrunner/sbm/internal/exporter"
	"github.com/nikbrunner/sbm/internal/model"
)

type column int

const (
	colURL column = iota
	colTitle
	colCategory
	colPlatform
	colFolder
	colTags
	colDate
)

// headerSynonyms maps a lowercased header name to its column.
var headerSynonyms = map[string]column{
	"url":       colURL,
	"link":      colURL,
	"href":      colURL,
	"title":     colTitle,
	"name":      colTitle,
	"category":  colCategory,
	"type":      colCategory,
	"platform":  colPlatform,
	"site":      colPlatform,
	"folder":    colFolder,
	"tags":      colTags,
	"labels":    colTags,
	"date":      colDate,
	"timestamp": colDate,
	"created":   colDate,
}

// csvRow is one data row, mapped through the header.
type csvRow struct {
	URL   string `validate:"required,http_url"`
	Title string `validate:"required"`
}

// ParseCSV reads a header-driven CSV file. The header must have at least two
// columns including a URL and a title column; otherwise the file is
// ErrMalformed. Rows without an http(s) URL or a title are invalid.
func ParseCSV(r io.Reader) (Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Result{}, fmt.Errorf("%w: missing header row", ErrMalformed)
		}
		return Result{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	index, err := mapHeader(header)
	if err != nil {
		return Result{}, err
	}
	// Our own exports always join tags with ";", so a "," there is part of a tag.
	tagSep := ","
	if isExportHeader(header) {
		tagSep = ""
	}

	var res Result
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Result{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		if isBlank(record) {
			continue
		}

		get := func(c column) string {
			i, ok := index[c]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		row := csvRow{URL: get(colURL), Title: get(colTitle)}
		if err := validate.Struct(row); err != nil || !hasHTTPScheme(row.URL) {
			res.Invalid++
			continue
		}

		b := model.Bookmark{
			URL:       row.URL,
			Title:     row.Title,
			Platform:  get(colPlatform),
			FolderID:  get(colFolder),
			Tags:      splitTags(get(colTags), tagSep),
			Timestamp: parseDate(get(colDate)),
		}
		if c, err := model.ParseCategory(get(colCategory)); err == nil {
			b.Category = c
		} else {
			b.Category = classify.Category(row.URL)
		}
		if b.Platform == "" {
			b.Platform = classify.Platform(row.URL)
		}
		res.Bookmarks = append(res.Bookmarks, b)
	}
	return res, nil
}

func mapHeader(header []string) (map[column]int, error) {
	if len(header) < 2 {
		return nil, fmt.Errorf("%w: header needs at least two columns, got %d", ErrMalformed, len(header))
	}
	index := make(map[column]int)
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if c, ok := headerSynonyms[name]; ok {
			if _, seen := index[c]; !seen {
				index[c] = i
			}
		}
	}
	if _, ok := index[colURL]; !ok {
		return nil, fmt.Errorf("%w: no url column in header", ErrMalformed)
	}
	if _, ok := index[colTitle]; !ok {
		return nil, fmt.Errorf("%w: no title column in header", ErrMalformed)
	}
	return index, nil
}

func hasHTTPScheme(u string) bool {
	lower := strings.ToLower(u)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// isExportHeader reports whether header is exactly the one the exporter writes.
func isExportHeader(header []string) bool {
	names := make([]string, len(header))
	for i, name := range header {
		names[i] = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
	}
	return strings.Join(names, ",") == exporter.CSVHeader
}

// splitTags splits on ";". When the cell has none it splits on fallback
// instead, unless fallback is empty.
func splitTags(s, fallback string) []string {
	sep := ";"
	if !strings.Contains(s, ";") && fallback != "" {
		sep = fallback
	}
	tags := []string{}
	for _, t := range strings.Split(s, sep) {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"1/2/2006",
}

// parseDate reads RFC3339, a few common layouts, or epoch seconds/millis.
// Unparseable dates return 0 so the default timestamp applies.
func parseDate(s string) int64 {
	if s == "" {
		return 0
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n < 1e12 {
			return n * 1000
		}
		return n
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UnixMilli()
		}
	}
	return 0
}
