package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNotFound is returned when a bookmark or folder ID does not exist.
var ErrNotFound = errors.New("not found")

// Store is the full key-value snapshot: bookmarks, folders and settings.
// Bookmarks are kept newest first.
type Store struct {
	Bookmarks []Bookmark `json:"bookmarks"`
	Folders   []Folder   `json:"folders"`
	Settings  *Settings  `json:"settings,omitempty"`
}

// NewStore creates an empty Store with initialized slices.
func NewStore() *Store {
	return &Store{
		Bookmarks: []Bookmark{},
		Folders:   []Folder{},
	}
}

// CurrentSettings returns the stored settings, or the defaults when none
// have been saved yet.
func (s *Store) CurrentSettings() Settings {
	if s.Settings == nil {
		return DefaultSettings()
	}
	return *s.Settings
}

// ReplaceSettings overwrites the settings record wholesale.
func (s *Store) ReplaceSettings(settings Settings) {
	s.Settings = &settings
}

// Reset drops every bookmark, folder and setting.
func (s *Store) Reset() {
	s.Bookmarks = []Bookmark{}
	s.Folders = []Folder{}
	s.Settings = nil
}

// AddBookmark prepends a bookmark so the newest comes first.
func (s *Store) AddBookmark(b Bookmark) {
	s.Bookmarks = append([]Bookmark{b}, s.Bookmarks...)
}

// GetBookmarkByID finds a bookmark by ID, returns nil if not found.
func (s *Store) GetBookmarkByID(id string) *Bookmark {
	for i := range s.Bookmarks {
		if s.Bookmarks[i].ID == id {
			return &s.Bookmarks[i]
		}
	}
	return nil
}

// HasBookmarkURL reports whether a bookmark with the exact URL exists.
func (s *Store) HasBookmarkURL(url string) bool {
	for _, b := range s.Bookmarks {
		if b.URL == url {
			return true
		}
	}
	return false
}

// DeleteBookmarks removes every bookmark whose ID is in ids and returns how
// many were removed. Unknown IDs are ignored.
func (s *Store) DeleteBookmarks(ids ...string) int {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}

	kept := s.Bookmarks[:0]
	removed := 0
	for _, b := range s.Bookmarks {
		if drop[b.ID] {
			removed++
			continue
		}
		kept = append(kept, b)
	}
	s.Bookmarks = kept
	return removed
}

// MoveBookmarks reassigns the given bookmarks to folderID.
// Returns the number of bookmarks moved.
func (s *Store) MoveBookmarks(ids []string, folderID string) (int, error) {
	if s.GetFolderByID(folderID) == nil {
		return 0, fmt.Errorf("folder %q: %w", folderID, ErrNotFound)
	}

	move := make(map[string]bool, len(ids))
	for _, id := range ids {
		move[id] = true
	}

	moved := 0
	for i := range s.Bookmarks {
		if move[s.Bookmarks[i].ID] {
			s.Bookmarks[i].FolderID = folderID
			moved++
		}
	}
	return moved, nil
}

// SetTags replaces the tags of one bookmark.
func (s *Store) SetTags(id string, tags []string) error {
	b := s.GetBookmarkByID(id)
	if b == nil {
		return fmt.Errorf("bookmark %q: %w", id, ErrNotFound)
	}
	if tags == nil {
		tags = []string{}
	}
	b.Tags = tags
	return nil
}

// AddFolder stores a new user folder.
func (s *Store) AddFolder(f Folder) error {
	if strings.TrimSpace(f.Name) == "" {
		return errors.New("folder name is required")
	}
	s.Folders = append(s.Folders, f)
	return nil
}

// GetFolderByID finds a user or built-in folder by ID, returns nil if not found.
func (s *Store) GetFolderByID(id string) *Folder {
	for i := range s.Folders {
		if s.Folders[i].ID == id {
			return &s.Folders[i]
		}
	}
	for i := range BuiltinFolders {
		if BuiltinFolders[i].ID == id {
			f := BuiltinFolders[i]
			return &f
		}
	}
	return nil
}

// GetFolderByName finds a user or built-in folder by name (case-insensitive).
func (s *Store) GetFolderByName(name string) *Folder {
	for _, f := range s.AllFolders() {
		if strings.EqualFold(f.Name, name) {
			found := f
			return &found
		}
	}
	return nil
}

// AllFolders returns built-in folders followed by user folders.
func (s *Store) AllFolders() []Folder {
	result := make([]Folder, 0, len(BuiltinFolders)+len(s.Folders))
	result = append(result, BuiltinFolders...)
	return append(result, s.Folders...)
}

// FolderLabel returns a display label for a folder ID, falling back to the ID.
func (s *Store) FolderLabel(id string) string {
	if f := s.GetFolderByID(id); f != nil {
		return f.Label()
	}
	return id
}

// GetBookmarksInFolder returns bookmarks filed under folderID.
func (s *Store) GetBookmarksInFolder(folderID string) []Bookmark {
	var result []Bookmark
	for _, b := range s.Bookmarks {
		if b.FolderID == folderID {
			result = append(result, b)
		}
	}
	return result
}

// AllTags returns every distinct tag, sorted.
func (s *Store) AllTags() []string {
	seen := make(map[string]bool)
	var tags []string
	for _, b := range s.Bookmarks {
		for _, t := range b.Tags {
			if !seen[t] {
				seen[t] = true
				tags = append(tags, t)
			}
		}
	}
	sort.Strings(tags)
	return tags
}

// ImportMerge prepends imported bookmarks, skipping URLs that are already
// stored or repeated within the batch. Missing fields get defaults, and a
// bookmark whose ID is already taken gets a fresh one.
// Returns (added, skipped).
func (s *Store) ImportMerge(bookmarks []Bookmark) (added, skipped int) {
	seen := make(map[string]bool, len(s.Bookmarks)+len(bookmarks))
	ids := make(map[string]bool, len(s.Bookmarks)+len(bookmarks))
	for _, b := range s.Bookmarks {
		seen[b.URL] = true
		ids[b.ID] = true
	}

	fresh := make([]Bookmark, 0, len(bookmarks))
	for _, b := range bookmarks {
		if seen[b.URL] {
			skipped++
			continue
		}
		seen[b.URL] = true
		b.ApplyDefaults()
		if ids[b.ID] {
			b.ID = GenerateUUID()
		}
		ids[b.ID] = true
		fresh = append(fresh, b)
	}

	s.Bookmarks = append(fresh, s.Bookmarks...)
	return len(fresh), skipped
}

// MergeFolders adds imported folders, reusing existing folders with the same
// name. Returns a mapping from imported folder ID to the ID now in the store.
func (s *Store) MergeFolders(folders []Folder) map[string]string {
	remap := make(map[string]string, len(folders))
	for _, f := range folders {
		if existing := s.GetFolderByName(f.Name); existing != nil {
			remap[f.ID] = existing.ID
			continue
		}
		s.Folders = append(s.Folders, f)
		remap[f.ID] = f.ID
	}
	return remap
}
