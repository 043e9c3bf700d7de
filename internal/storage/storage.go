package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nikbrunner/sbm/internal/model"
)

// Storage persists the whole store as one snapshot. Save replaces whatever
// was there; concurrent writers race and the last one wins.
type Storage interface {
	Load(ctx context.Context) (*model.Store, error)
	Save(ctx context.Context, store *model.Store) error
	Close() error
}

// JSONStorage keeps the store in a single JSON object with the keys
// "bookmarks", "folders" and "settings".
type JSONStorage struct {
	path string
}

// NewJSONStorage creates a new JSONStorage with the given file path.
func NewJSONStorage(path string) *JSONStorage {
	return &JSONStorage{path: path}
}

// Path returns the storage file path.
func (s *JSONStorage) Path() string {
	return s.path
}

// Load reads the store from the JSON file.
// Returns an empty store if the file doesn't exist.
func (s *JSONStorage) Load(ctx context.Context) (*model.Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return model.NewStore(), nil
		}
		return nil, err
	}

	var store model.Store
	if err := json.Unmarshal(data, &store); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.path, err)
	}
	return normalize(&store), nil
}

// Save writes the store to a temporary file and renames it over the old one.
func (s *JSONStorage) Save(ctx context.Context, store *model.Store) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(normalize(store), "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".bookmarks-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

func (s *JSONStorage) Close() error { return nil }

// normalize makes sure slices are never nil so they encode as [].
func normalize(store *model.Store) *model.Store {
	if store.Folders == nil {
		store.Folders = []model.Folder{}
	}
	if store.Bookmarks == nil {
		store.Bookmarks = []model.Bookmark{}
	}
	for i := range store.Bookmarks {
		if store.Bookmarks[i].Tags == nil {
			store.Bookmarks[i].Tags = []string{}
		}
	}
	return store
}
