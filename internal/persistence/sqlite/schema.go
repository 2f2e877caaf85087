package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

//go:embed schema/catalog.sql
var catalogSchema string

// CatalogTables lists the tables created by the catalog schema, dimension
// tables before the link tables that reference them.
var CatalogTables = []string{
	"images",
	"models",
	"tag_groups",
	"tags",
	"image_models",
	"image_tags",
}

// InitializeCatalog creates an empty catalog at cfg.Path. Any existing file at
// that path, including WAL and shared-memory sidecars, is deleted first: the
// returned handle always points at a fresh database.
func InitializeCatalog(ctx context.Context, cfg SQLiteConfig) (*sql.DB, error) {
	if cfg.ReadOnly {
		return nil, fmt.Errorf("cannot initialize read-only catalog %s", cfg.Path)
	}

	if cfg.Path != ":memory:" {
		if err := removeDatabaseFiles(cfg.Path); err != nil {
			return nil, err
		}
	}

	db, err := Open(cfg)
	if err != nil {
		return nil, err
	}

	if err := ApplyCatalogSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// ApplyCatalogSchema executes the catalog DDL against an open, empty handle in
// a single transaction.
func ApplyCatalogSchema(ctx context.Context, db *sql.DB) error {
	statements := splitStatements(catalogSchema)
	if len(statements) == 0 {
		return fmt.Errorf("catalog schema contains no statements")
	}

	return WithTransaction(ctx, db, func(tx *sql.Tx) error {
		for i, stmt := range statements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return NewDatabaseError("", stmt, fmt.Sprintf("execute schema statement %d", i+1), err)
			}
		}
		return nil
	})
}

func removeDatabaseFiles(path string) error {
	for _, name := range []string{path, path + "-wal", path + "-shm", path + "-journal"} {
		if err := os.Remove(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove existing database file %s: %w", name, err)
		}
	}
	return nil
}

// splitStatements splits SQL content into individual statements, dropping
// blank lines and "--" comment lines. Statements must not contain literal
// semicolons.
func splitStatements(sqlText string) []string {
	var statements []string

	for _, stmt := range strings.Split(sqlText, ";") {
		lines := strings.Split(stmt, "\n")
		kept := lines[:0]
		for _, line := range lines {
			line = strings.TrimSpace(line)
			if line != "" && !strings.HasPrefix(line, "--") {
				kept = append(kept, line)
			}
		}
		if len(kept) > 0 {
			statements = append(statements, strings.Join(kept, "\n"))
		}
	}

	return statements
}
