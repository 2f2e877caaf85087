package legacy

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/example/tivoli-tools/internal/persistence/sqlite"
)

const (
	createTableSQL = `CREATE TABLE IF NOT EXISTS image_tags (
		image_path TEXT NOT NULL,
		tag_type TEXT NOT NULL,
		tag_value TEXT NOT NULL
	)`
	createIndexSQL = `CREATE INDEX IF NOT EXISTS idx_image_tags_path ON image_tags(image_path)`
	insertRowSQL   = `INSERT INTO image_tags (image_path, tag_type, tag_value) VALUES (?, ?, ?)`
)

// CreateDatabase creates a fresh legacy database at path, replacing any file
// already there, and returns a writable handle.
func CreateDatabase(ctx context.Context, path string) (*sql.DB, error) {
	for _, name := range []string{path, path + "-wal", path + "-shm", path + "-journal"} {
		if err := os.Remove(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("remove existing legacy database file %s: %w", name, err)
		}
	}

	cfg := sqlite.CatalogConfig(path)
	cfg.EnableForeignKeys = false
	cfg.JournalMode = "DELETE"
	db, err := sqlite.Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := CreateSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// CreateSchema creates the image_tags table on an open handle.
func CreateSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range []string{createTableSQL, createIndexSQL} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return sqlite.NewDatabaseError("image_tags", stmt, "create legacy schema", err)
		}
	}
	return nil
}

// WriteRows inserts rows in one transaction. RawType wins over Type so that
// callers can store values outside the known set.
func WriteRows(ctx context.Context, db *sql.DB, rows []Row) error {
	return sqlite.WithTransaction(ctx, db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, insertRowSQL)
		if err != nil {
			return sqlite.NewDatabaseError("image_tags", insertRowSQL, "prepare insert", err)
		}
		defer stmt.Close()

		for i, r := range rows {
			raw := r.RawType
			if raw == "" {
				raw = r.Type.String()
			}
			if _, err := stmt.ExecContext(ctx, r.ImagePath, raw, r.Value); err != nil {
				return sqlite.NewDatabaseError("image_tags", insertRowSQL, fmt.Sprintf("insert row %d", i+1), err)
			}
		}
		return nil
	})
}
