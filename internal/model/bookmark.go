package model

import (
	"strings"
	"time"
)

// DefaultFolderID is the implicit folder every bookmark falls back to.
// It is never stored as a Folder entity.
const DefaultFolderID = "default"

// DefaultPlatform is the platform label for sites without a known platform.
const DefaultPlatform = "Web"

// Bookmark represents a saved page with its classification.
type Bookmark struct {
	ID        string        `json:"id"`
	URL       string        `json:"url"`
	Title     string        `json:"title"`
	Category  Category      `json:"category"`
	Platform  string        `json:"platform"`
	FolderID  string        `json:"folder"`
	Tags      []string      `json:"tags"`
	Timestamp int64         `json:"timestamp"` // epoch millis
	Favicon   string        `json:"favicon,omitempty"`
	Metadata  *PageMetadata `json:"metadata,omitempty"`
}

// NewBookmarkParams holds parameters for creating a new Bookmark.
type NewBookmarkParams struct {
	URL      string
	Title    string
	Category Category
	Platform string
	FolderID string
	Tags     []string
	Favicon  string
	Metadata *PageMetadata
}

// NewBookmark creates a Bookmark with generated UUID and timestamp.
// Empty fields get their defaults.
func NewBookmark(params NewBookmarkParams) Bookmark {
	b := Bookmark{
		ID:        GenerateUUID(),
		URL:       params.URL,
		Title:     params.Title,
		Category:  params.Category,
		Platform:  params.Platform,
		FolderID:  params.FolderID,
		Tags:      params.Tags,
		Timestamp: NowMillis(),
		Favicon:   params.Favicon,
		Metadata:  params.Metadata,
	}
	b.ApplyDefaults()
	return b
}

// ApplyDefaults fills missing optional fields.
// ID and timestamp are only generated when absent.
func (b *Bookmark) ApplyDefaults() {
	if b.ID == "" {
		b.ID = GenerateUUID()
	}
	if b.Timestamp == 0 {
		b.Timestamp = NowMillis()
	}
	if b.FolderID == "" {
		b.FolderID = DefaultFolderID
	}
	if b.Tags == nil {
		b.Tags = []string{}
	}
	if b.Platform == "" {
		b.Platform = DefaultPlatform
	}
	if !b.Category.Valid() {
		b.Category = CategoryText
	}
}

// CreatedAt returns the bookmark timestamp as a time.Time.
func (b Bookmark) CreatedAt() time.Time {
	return time.UnixMilli(b.Timestamp)
}

// HasTag reports whether the bookmark carries tag (case-insensitive).
func (b Bookmark) HasTag(tag string) bool {
	for _, t := range b.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// ParseTags splits user input like "go, tools,, cli" into trimmed tags.
func ParseTags(input string) []string {
	tags := []string{}
	for _, t := range strings.Split(input, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// NowMillis returns the current time in epoch milliseconds.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}
