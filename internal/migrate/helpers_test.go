package migrate

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/example/tivoli-tools/internal/legacy"
	"github.com/example/tivoli-tools/internal/testfixtures"
)

var errStreamBroken = errors.New("stream broken")

// sliceIterator serves rows from memory and can fail after a fixed number of
// rows.
type sliceIterator struct {
	rows    []legacy.Row
	pos     int
	failAt  int
	failErr error
	err     error
	closed  bool
}

func newSliceIterator(rows []legacy.Row) *sliceIterator {
	return &sliceIterator{rows: rows}
}

func newFailingIterator(rows []legacy.Row, failAt int) *sliceIterator {
	return &sliceIterator{rows: rows, failAt: failAt, failErr: errStreamBroken}
}

func (it *sliceIterator) Next() bool {
	if it.err != nil {
		return false
	}
	if it.failErr != nil && it.pos == it.failAt {
		it.err = it.failErr
		return false
	}
	if it.pos >= len(it.rows) {
		return false
	}
	it.pos++
	return true
}

func (it *sliceIterator) Row() legacy.Row { return it.rows[it.pos-1] }
func (it *sliceIterator) Err() error      { return it.err }
func (it *sliceIterator) Close() error {
	it.closed = true
	return nil
}

type migrationEnv struct {
	rows    []legacy.Row
	source  *legacy.Source
	catalog *testfixtures.CatalogHarness
	lookups *Lookups
	counts  LookupCounts
	ids     *testfixtures.IDGenerator
}

// newMigrationEnv writes images to a legacy database, initialises an empty
// catalog and preloads the lookups.
func newMigrationEnv(t *testing.T, images ...testfixtures.LegacyImage) *migrationEnv {
	t.Helper()

	env := &migrationEnv{
		rows:    testfixtures.LegacyRows(images...),
		catalog: testfixtures.NewCatalogHarness(t),
		ids:     testfixtures.NewIDGenerator("migrate"),
	}
	env.source = testfixtures.OpenLegacySource(t, env.rows)

	lookups, counts, err := LoadLookups(t.Context(), env.source, env.catalog.Catalog, LookupOptions{IDFunc: env.ids.Next})
	require.NoError(t, err)
	env.lookups = lookups
	env.counts = counts
	return env
}

func (env *migrationEnv) pivot(t *testing.T, it RowIterator, opts PivotOptions) (Stats, error) {
	t.Helper()
	if opts.IDFunc == nil {
		opts.IDFunc = env.ids.Next
	}
	return Pivot(t.Context(), it, env.catalog.Catalog, env.lookups, opts)
}

func (env *migrationEnv) pivotSource(t *testing.T, opts PivotOptions) Stats {
	t.Helper()
	cur, err := env.source.Rows(t.Context())
	require.NoError(t, err)
	stats, err := env.pivot(t, cur, opts)
	require.NoError(t, err)
	return stats
}

func countRows(t *testing.T, db *sql.DB, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRowContext(context.Background(), query, args...).Scan(&n))
	return n
}
