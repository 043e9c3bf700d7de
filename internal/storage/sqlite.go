package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/nikbrunner/sbm/internal/model"
)

const currentSchemaVersion = 2

// SQLiteStorage implements Storage using a SQLite database.
type SQLiteStorage struct {
	db   *sql.DB
	path string
}

// NewSQLiteStorage opens (or creates) the database at path and migrates it
// to the current schema.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One connection keeps the pragmas in effect for every statement.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, err
		}
	}

	s := &SQLiteStorage{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate %s: %w", path, err)
	}
	return s, nil
}

// Path returns the database file path.
func (s *SQLiteStorage) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// SchemaVersion returns the migration level of the database.
func (s *SQLiteStorage) SchemaVersion() (int, error) {
	var version int
	err := s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	return version, err
}

func (s *SQLiteStorage) migrate() error {
	version, err := s.SchemaVersion()
	if err != nil {
		// Table doesn't exist or is empty, start fresh
		version = 0
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}
	if version < 2 {
		if err := s.migrateV2(); err != nil {
			return err
		}
	}
	return nil
}

// migrateV1 creates the key tables: bookmarks, folders and the settings row.
func (s *SQLiteStorage) migrateV1() error {
	schema := `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS folders (
			id TEXT PRIMARY KEY NOT NULL,
			name TEXT NOT NULL,
			emoji TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS bookmarks (
			id TEXT PRIMARY KEY NOT NULL,
			position INTEGER NOT NULL,
			url TEXT NOT NULL,
			title TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT 'text',
			platform TEXT NOT NULL DEFAULT 'Web',
			folder TEXT NOT NULL DEFAULT 'default',
			tags TEXT NOT NULL DEFAULT '[]',
			timestamp INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_bookmarks_position ON bookmarks(position);
		CREATE INDEX IF NOT EXISTS idx_bookmarks_url ON bookmarks(url);
		CREATE INDEX IF NOT EXISTS idx_bookmarks_folder ON bookmarks(folder);

		CREATE TABLE IF NOT EXISTS settings (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			theme TEXT NOT NULL,
			auto_detect INTEGER NOT NULL,
			default_folder TEXT NOT NULL,
			notifications INTEGER NOT NULL
		);

		DELETE FROM schema_version;
		INSERT INTO schema_version (version) VALUES (1);
	`
	_, err := s.db.Exec(schema)
	return err
}

// migrateV2 adds favicon and the scraped page metadata.
func (s *SQLiteStorage) migrateV2() error {
	migration := `
		ALTER TABLE bookmarks ADD COLUMN favicon TEXT NOT NULL DEFAULT '';
		ALTER TABLE bookmarks ADD COLUMN metadata TEXT;
		UPDATE schema_version SET version = 2;
	`
	_, err := s.db.Exec(migration)
	return err
}

// Load reads the store from the SQLite database.
func (s *SQLiteStorage) Load(ctx context.Context) (*model.Store, error) {
	store := model.NewStore()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, emoji, created_at
		FROM folders
		ORDER BY created_at, name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var f model.Folder
		if err := rows.Scan(&f.ID, &f.Name, &f.Emoji, &f.CreatedAt); err != nil {
			return nil, err
		}
		store.Folders = append(store.Folders, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.db.QueryContext(ctx, `
		SELECT id, url, title, category, platform, folder, tags, timestamp, favicon, metadata
		FROM bookmarks
		ORDER BY position
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var b model.Bookmark
		var category, tagsJSON string
		var metadataJSON sql.NullString

		if err := rows.Scan(
			&b.ID, &b.URL, &b.Title, &category, &b.Platform, &b.FolderID,
			&tagsJSON, &b.Timestamp, &b.Favicon, &metadataJSON,
		); err != nil {
			return nil, err
		}
		b.Category = model.Category(category)

		if err := json.Unmarshal([]byte(tagsJSON), &b.Tags); err != nil {
			b.Tags = []string{}
		}
		if metadataJSON.Valid && metadataJSON.String != "" {
			var meta model.PageMetadata
			if err := json.Unmarshal([]byte(metadataJSON.String), &meta); err == nil {
				b.Metadata = &meta
			}
		}
		store.Bookmarks = append(store.Bookmarks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var settings model.Settings
	var autoDetect, notifications int
	err = s.db.QueryRowContext(ctx, `
		SELECT theme, auto_detect, default_folder, notifications
		FROM settings WHERE id = 1
	`).Scan(&settings.Theme, &autoDetect, &settings.DefaultFolder, &notifications)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return nil, err
	default:
		settings.AutoDetect = autoDetect == 1
		settings.Notifications = notifications == 1
		store.Settings = &settings
	}

	return normalize(store), nil
}

// Save replaces the database contents with store in one transaction.
func (s *SQLiteStorage) Save(ctx context.Context, store *model.Store) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"bookmarks", "folders", "settings"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}

	folderStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO folders (id, name, emoji, created_at)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer folderStmt.Close()

	for _, f := range store.Folders {
		if _, err := folderStmt.ExecContext(ctx, f.ID, f.Name, f.Emoji, f.CreatedAt); err != nil {
			return err
		}
	}

	bookmarkStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO bookmarks (id, position, url, title, category, platform, folder, tags, timestamp, favicon, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer bookmarkStmt.Close()

	for i, b := range store.Bookmarks {
		tags := b.Tags
		if tags == nil {
			tags = []string{}
		}
		tagsJSON, err := json.Marshal(tags)
		if err != nil {
			return err
		}

		var metadata *string
		if !b.Metadata.IsEmpty() {
			data, err := json.Marshal(b.Metadata)
			if err != nil {
				return err
			}
			m := string(data)
			metadata = &m
		}

		if _, err := bookmarkStmt.ExecContext(ctx,
			b.ID, i, b.URL, b.Title, string(b.Category), b.Platform, b.FolderID,
			string(tagsJSON), b.Timestamp, b.Favicon, metadata,
		); err != nil {
			return fmt.Errorf("failed to save bookmark %s: %w", b.ID, err)
		}
	}

	if st := store.Settings; st != nil {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO settings (id, theme, auto_detect, default_folder, notifications)
			VALUES (1, ?, ?, ?, ?)
		`, string(st.Theme), boolInt(st.AutoDetect), st.DefaultFolder, boolInt(st.Notifications)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
