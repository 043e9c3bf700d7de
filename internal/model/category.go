package model

import (
	"fmt"
	"strings"
)

// Category is the content class of a bookmark.
type Category string

const (
	CategoryVideo Category = "video"
	CategoryImage Category = "image"
	CategoryAudio Category = "audio"
	CategoryText  Category = "text"
)

// Categories lists all categories in display order.
var Categories = []Category{CategoryVideo, CategoryImage, CategoryAudio, CategoryText}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryVideo, CategoryImage, CategoryAudio, CategoryText:
		return true
	}
	return false
}

// ParseCategory parses a category name case-insensitively.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}
