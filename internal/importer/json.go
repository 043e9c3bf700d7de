package importer

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/nikbrunner/sbm/internal/model"
)

// jsonRecord is one element of an exported bookmark array.
type jsonRecord struct {
	ID        string              `json:"id"`
	URL       string              `json:"url" validate:"required"`
	Title     string              `json:"title" validate:"required"`
	Category  string              `json:"category" validate:"required"`
	Platform  string              `json:"platform"`
	Folder    string              `json:"folder"`
	Tags      []string            `json:"tags"`
	Timestamp int64               `json:"timestamp"`
	Favicon   string              `json:"favicon"`
	Metadata  *model.PageMetadata `json:"metadata"`
}

// ParseJSON reads a JSON array of bookmarks. A document that is not an array
// is ErrMalformed; individual records that fail to decode or lack url, title
// or category are counted as invalid and dropped.
func ParseJSON(r io.Reader) (Result, error) {
	var raw []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	var res Result
	for _, msg := range raw {
		var rec jsonRecord
		if err := json.Unmarshal(msg, &rec); err != nil {
			res.Invalid++
			continue
		}
		if err := validate.Struct(rec); err != nil {
			res.Invalid++
			continue
		}
		category := model.Category(rec.Category)
		if c, err := model.ParseCategory(rec.Category); err == nil {
			category = c
		}
		res.Bookmarks = append(res.Bookmarks, model.Bookmark{
			ID:        rec.ID,
			URL:       rec.URL,
			Title:     rec.Title,
			Category:  category,
			Platform:  rec.Platform,
			FolderID:  rec.Folder,
			Tags:      rec.Tags,
			Timestamp: rec.Timestamp,
			Favicon:   rec.Favicon,
			Metadata:  rec.Metadata,
		})
	}
	return res, nil
}
