package storage_test

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/nikbrunner/sbm/internal/importer"
	"github.com/nikbrunner/sbm/internal/model"
	"github.com/nikbrunner/sbm/internal/storage"
)

func openSQLite(t *testing.T) *storage.SQLiteStorage {
	t.Helper()
	s, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "bookmarks.db"))
	assert.NilError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStorage_SaveAndLoad(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)
	want := sampleStore()

	assert.NilError(t, s.Save(ctx, want))
	got, err := s.Load(ctx)
	assert.NilError(t, err)

	assert.DeepEqual(t, got.Folders, want.Folders)
	assert.DeepEqual(t, got.Bookmarks, want.Bookmarks)
	assert.DeepEqual(t, got.Settings, want.Settings)
}

func TestSQLiteStorage_EmptyDatabase(t *testing.T) {
	store, err := openSQLite(t).Load(context.Background())
	assert.NilError(t, err)
	assert.Check(t, is.Len(store.Bookmarks, 0))
	assert.Check(t, is.Len(store.Folders, 0))
	assert.Check(t, store.Settings == nil)
}

func TestSQLiteStorage_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "bookmarks.db")
	s, err := storage.NewSQLiteStorage(path)
	assert.NilError(t, err)
	defer s.Close()

	_, err = os.Stat(path)
	assert.NilError(t, err)
}

func TestSQLiteStorage_SchemaVersion(t *testing.T) {
	version, err := openSQLite(t).SchemaVersion()
	assert.NilError(t, err)
	assert.Equal(t, version, 2)
}

func TestSQLiteStorage_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "bookmarks.db")

	s, err := storage.NewSQLiteStorage(path)
	assert.NilError(t, err)
	assert.NilError(t, s.Save(ctx, sampleStore()))
	assert.NilError(t, s.Close())

	s, err = storage.NewSQLiteStorage(path)
	assert.NilError(t, err)
	defer s.Close()

	store, err := s.Load(ctx)
	assert.NilError(t, err)
	assert.Equal(t, len(store.Bookmarks), 2)
}

func TestSQLiteStorage_MigratesV1Database(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "old.db")

	db, err := sql.Open("sqlite", path)
	assert.NilError(t, err)
	_, err = db.Exec(`
		CREATE TABLE schema_version (version INTEGER PRIMARY KEY);
		CREATE TABLE folders (id TEXT PRIMARY KEY NOT NULL, name TEXT NOT NULL, emoji TEXT NOT NULL DEFAULT '', created_at INTEGER NOT NULL DEFAULT 0);
		CREATE TABLE bookmarks (id TEXT PRIMARY KEY NOT NULL, position INTEGER NOT NULL, url TEXT NOT NULL, title TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT 'text', platform TEXT NOT NULL DEFAULT 'Web', folder TEXT NOT NULL DEFAULT 'default',
			tags TEXT NOT NULL DEFAULT '[]', timestamp INTEGER NOT NULL);
		CREATE TABLE settings (id INTEGER PRIMARY KEY CHECK (id = 1), theme TEXT NOT NULL, auto_detect INTEGER NOT NULL,
			default_folder TEXT NOT NULL, notifications INTEGER NOT NULL);
		INSERT INTO schema_version (version) VALUES (1);
		INSERT INTO bookmarks (id, position, url, title, timestamp) VALUES ('old', 0, 'https://old.com', 'Old', 1600000000000);
	`)
	assert.NilError(t, err)
	assert.NilError(t, db.Close())

	s, err := storage.NewSQLiteStorage(path)
	assert.NilError(t, err)
	defer s.Close()

	version, err := s.SchemaVersion()
	assert.NilError(t, err)
	assert.Equal(t, version, 2)

	store, err := s.Load(ctx)
	assert.NilError(t, err)
	assert.Equal(t, len(store.Bookmarks), 1)
	assert.Equal(t, store.Bookmarks[0].Favicon, "")
	assert.Assert(t, store.Bookmarks[0].Metadata == nil)
}

func TestSQLiteStorage_SaveReplacesEverything(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)
	assert.NilError(t, s.Save(ctx, sampleStore()))

	store, err := s.Load(ctx)
	assert.NilError(t, err)
	removed := store.DeleteBookmarks("b1")
	assert.Equal(t, removed, 1)
	store.Reset()
	store.AddBookmark(model.NewBookmark(model.NewBookmarkParams{URL: "https://fresh.com", Title: "Fresh"}))
	assert.NilError(t, s.Save(ctx, store))

	reloaded, err := s.Load(ctx)
	assert.NilError(t, err)
	assert.Equal(t, len(reloaded.Bookmarks), 1)
	assert.Equal(t, reloaded.Bookmarks[0].URL, "https://fresh.com")
	assert.Equal(t, len(reloaded.Folders), 0)
	assert.Assert(t, reloaded.Settings == nil)
}

func TestSQLiteStorage_BulkDeleteReducesCountByN(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)

	store := model.NewStore()
	var ids []string
	for _, u := range []string{"https://a.com", "https://b.com", "https://c.com", "https://d.com", "https://e.com"} {
		b := model.NewBookmark(model.NewBookmarkParams{URL: u, Title: u})
		ids = append(ids, b.ID)
		store.AddBookmark(b)
	}
	assert.NilError(t, s.Save(ctx, store))

	loaded, err := s.Load(ctx)
	assert.NilError(t, err)
	n := loaded.DeleteBookmarks(ids[0], ids[2], ids[4])
	assert.NilError(t, s.Save(ctx, loaded))

	final, err := s.Load(ctx)
	assert.NilError(t, err)
	assert.Equal(t, n, 3)
	assert.Equal(t, len(final.Bookmarks), 5-n)
}

func TestSQLiteStorage_ImportWithTakenID(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)

	store := model.NewStore()
	store.AddBookmark(model.Bookmark{ID: "bm-1", URL: "https://a.example/", Title: "A", Category: model.CategoryText})
	assert.NilError(t, s.Save(ctx, store))

	res, err := importer.ParseJSON(strings.NewReader(`[{"id":"bm-1","url":"https://b.example/","title":"B","category":"text"}]`))
	assert.NilError(t, err)
	sum := importer.Apply(store, res)
	assert.Equal(t, sum.Imported, 1)

	assert.NilError(t, s.Save(ctx, store))
	got, err := s.Load(ctx)
	assert.NilError(t, err)
	assert.Assert(t, is.Len(got.Bookmarks, 2))
	assert.Assert(t, got.Bookmarks[0].ID != "bm-1")
	assert.Equal(t, got.Bookmarks[0].URL, "https://b.example/")

	assert.Equal(t, got.DeleteBookmarks("bm-1"), 1)
	assert.Assert(t, is.Len(got.Bookmarks, 1))
}
