package legacy

import (
	"context"
	"database/sql"

	"github.com/example/tivoli-tools/internal/persistence/sqlite"
)

const (
	distinctModelsSQL = `
		SELECT DISTINCT m.tag_value, u.tag_value
		FROM image_tags m
		JOIN image_tags u ON m.image_path = u.image_path AND u.tag_type = 'universe'
		WHERE m.tag_type = 'model'
		ORDER BY u.tag_value, m.tag_value`
	distinctValuesSQL = `SELECT DISTINCT tag_value FROM image_tags WHERE tag_type = ? ORDER BY tag_value`
	countPathsSQL     = `SELECT COUNT(DISTINCT image_path) FROM image_tags`
	countEligibleSQL  = `
		SELECT COUNT(*) FROM (
			SELECT image_path FROM image_tags
			GROUP BY image_path
			HAVING SUM(tag_type = 'universe') > 0
			   AND SUM(tag_type = 'gallery') > 0
		)`
	streamRowsSQL     = `SELECT image_path, tag_type, tag_value FROM image_tags ORDER BY image_path`
)

// ModelPair is a model name together with the collection it was seen in.
type ModelPair struct {
	Name       string
	Collection string
}

// Source is a read handle on a legacy database.
type Source struct {
	db *sql.DB
}

// OpenSource opens the legacy database at path read-only.
func OpenSource(path string) (*Source, error) {
	db, err := sqlite.Open(sqlite.SourceConfig(path))
	if err != nil {
		return nil, err
	}
	return &Source{db: db}, nil
}

// NewSource wraps an already open handle.
func NewSource(db *sql.DB) *Source {
	return &Source{db: db}
}

// DB returns the underlying database handle
func (s *Source) DB() *sql.DB {
	return s.db
}

// Close closes the underlying handle.
func (s *Source) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// DistinctModels returns every (model, collection) pair recoverable by joining
// model rows to universe rows on the same image path, ordered by collection
// then name. Models on paths without a universe row are absent.
func (s *Source) DistinctModels(ctx context.Context) ([]ModelPair, error) {
	rows, err := s.db.QueryContext(ctx, distinctModelsSQL)
	if err != nil {
		return nil, sqlite.NewDatabaseError("image_tags", distinctModelsSQL, "query distinct models", err)
	}
	defer rows.Close()

	var pairs []ModelPair
	for rows.Next() {
		var p ModelPair
		if err := rows.Scan(&p.Name, &p.Collection); err != nil {
			return nil, sqlite.NewDatabaseError("image_tags", distinctModelsSQL, "scan model pair", err)
		}
		pairs = append(pairs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, sqlite.NewDatabaseError("image_tags", distinctModelsSQL, "iterate model pairs", err)
	}
	return pairs, nil
}

// DistinctValues returns the distinct values recorded for one tag type, in
// ascending order.
func (s *Source) DistinctValues(ctx context.Context, t TagType) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, distinctValuesSQL, t.String())
	if err != nil {
		return nil, sqlite.NewDatabaseError("image_tags", distinctValuesSQL, "query distinct "+t.String(), err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, sqlite.NewDatabaseError("image_tags", distinctValuesSQL, "scan "+t.String(), err)
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, sqlite.NewDatabaseError("image_tags", distinctValuesSQL, "iterate "+t.String(), err)
	}
	return values, nil
}

// CountDistinctPaths returns the number of distinct image paths.
func (s *Source) CountDistinctPaths(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, countPathsSQL).Scan(&n); err != nil {
		return 0, sqlite.NewDatabaseError("image_tags", countPathsSQL, "count image paths", err)
	}
	return n, nil
}

// CountEligiblePaths returns the number of image paths carrying at least one
// universe row and one gallery row, whatever their values. It is an upper bound
// on the images a migration can produce.
func (s *Source) CountEligiblePaths(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, countEligibleSQL).Scan(&n); err != nil {
		return 0, sqlite.NewDatabaseError("image_tags", countEligibleSQL, "count eligible paths", err)
	}
	return n, nil
}

// Rows streams every tag row ordered by image path, so the rows of one image
// are contiguous. The caller must Close the cursor.
func (s *Source) Rows(ctx context.Context) (*Cursor, error) {
	rows, err := s.db.QueryContext(ctx, streamRowsSQL)
	if err != nil {
		return nil, sqlite.NewDatabaseError("image_tags", streamRowsSQL, "stream rows", err)
	}
	return &Cursor{rows: rows}, nil
}

// Cursor iterates legacy rows without materialising the table.
type Cursor struct {
	rows *sql.Rows
	cur  Row
	err  error
}

// Next advances to the next row. It returns false at the end of the stream or
// on error; check Err afterwards.
func (c *Cursor) Next() bool {
	if c.err != nil || !c.rows.Next() {
		return false
	}

	var raw string
	if err := c.rows.Scan(&c.cur.ImagePath, &raw, &c.cur.Value); err != nil {
		c.err = sqlite.NewDatabaseError("image_tags", streamRowsSQL, "scan row", err)
		return false
	}
	c.cur.RawType = raw
	c.cur.Type, _ = ParseTagType(raw)
	return true
}

// Row returns the current row.
func (c *Cursor) Row() Row {
	return c.cur
}

// Err returns the first error met while iterating.
func (c *Cursor) Err() error {
	if c.err != nil {
		return c.err
	}
	if err := c.rows.Err(); err != nil {
		return sqlite.NewDatabaseError("image_tags", streamRowsSQL, "iterate rows", err)
	}
	return nil
}

// Close releases the cursor.
func (c *Cursor) Close() error {
	return c.rows.Close()
}
