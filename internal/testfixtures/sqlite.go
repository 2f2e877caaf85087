package testfixtures

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/example/tivoli-tools/internal/legacy"
	"github.com/example/tivoli-tools/internal/persistence/sqlite"
)

// CatalogHarness provides a freshly initialised catalog backed by a temporary
// SQLite file.
type CatalogHarness struct {
	Path    string
	DB      *sql.DB
	Catalog *sqlite.Catalog

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *CatalogHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewCatalogHarness initialises an empty catalog under tb.TempDir. Callers may
// optionally invoke Close, but the helper will also register a cleanup
// callback with the provided testing.TB.
func NewCatalogHarness(tb testing.TB) *CatalogHarness {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "catalog.db")
	db, err := sqlite.InitializeCatalog(context.Background(), sqlite.TempFileTestSQLiteConfig(path))
	if err != nil {
		tb.Fatalf("failed to initialise catalog: %v", err)
	}

	harness := &CatalogHarness{
		Path:    path,
		DB:      db,
		Catalog: sqlite.NewCatalog(db),
		cleanup: func() {
			_ = db.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}

// WriteLegacyDB writes rows to a new legacy database under tb.TempDir and
// returns its path. The writable handle is closed before returning.
func WriteLegacyDB(tb testing.TB, rows []legacy.Row) string {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "legacy.db")
	ctx := context.Background()

	db, err := legacy.CreateDatabase(ctx, path)
	if err != nil {
		tb.Fatalf("failed to create legacy database: %v", err)
	}
	defer db.Close()

	if err := legacy.WriteRows(ctx, db, rows); err != nil {
		tb.Fatalf("failed to write legacy rows: %v", err)
	}
	return path
}

// OpenLegacySource writes rows to a temporary legacy database and opens it
// read-only. The source is closed on test cleanup.
func OpenLegacySource(tb testing.TB, rows []legacy.Row) *legacy.Source {
	tb.Helper()

	src, err := legacy.OpenSource(WriteLegacyDB(tb, rows))
	if err != nil {
		tb.Fatalf("failed to open legacy source: %v", err)
	}
	tb.Cleanup(func() { _ = src.Close() })
	return src
}
