package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/tivoli-tools/internal/persistence"
)

const (
	insertImageSQL      = `INSERT INTO images (uuid, path, collection, gallery) VALUES (?, ?, ?, ?)`
	insertModelSQL      = `INSERT INTO models (uuid, name, collection) VALUES (?, ?, ?)`
	insertTagGroupSQL   = `INSERT INTO tag_groups (uuid, name) VALUES (?, ?)`
	insertTagSQL        = `INSERT INTO tags (uuid, name, tag_group_uuid) VALUES (?, ?, ?)`
	insertImageModelSQL = `INSERT INTO image_models (image_uuid, model_uuid) VALUES (?, ?)`
	insertImageTagSQL   = `INSERT INTO image_tags (image_uuid, tag_uuid) VALUES (?, ?)`
)

// Catalog reads and writes the normalized catalog schema.
type Catalog struct {
	db    *sql.DB
	retry RetryConfig
}

var (
	_ persistence.CatalogWriter = (*Catalog)(nil)
	_ persistence.CatalogReader = (*Catalog)(nil)
)

// NewCatalog wraps an open catalog handle. Batch commits that hit a locked
// database are retried with DefaultRetryConfig.
func NewCatalog(db *sql.DB) *Catalog {
	return NewCatalogWithRetry(db, DefaultRetryConfig())
}

// NewCatalogWithRetry wraps db with explicit retry settings for batch commits.
func NewCatalogWithRetry(db *sql.DB, retry RetryConfig) *Catalog {
	return &Catalog{db: db, retry: retry}
}

// DB returns the underlying database handle
func (c *Catalog) DB() *sql.DB {
	return c.db
}

// InsertTagGroups writes all groups in one transaction.
func (c *Catalog) InsertTagGroups(ctx context.Context, groups []persistence.TagGroup) error {
	return WithTransaction(ctx, c.db, func(tx *sql.Tx) error {
		return execMany(ctx, tx, "tag_groups", insertTagGroupSQL, len(groups), func(i int) []any {
			return []any{groups[i].UUID, groups[i].Name}
		})
	})
}

// InsertTags writes all tags in one transaction. Their groups must exist.
func (c *Catalog) InsertTags(ctx context.Context, tags []persistence.Tag) error {
	return WithTransaction(ctx, c.db, func(tx *sql.Tx) error {
		return execMany(ctx, tx, "tags", insertTagSQL, len(tags), func(i int) []any {
			return []any{tags[i].UUID, tags[i].Name, tags[i].TagGroupUUID}
		})
	})
}

// InsertModels writes all models in one transaction.
func (c *Catalog) InsertModels(ctx context.Context, models []persistence.Model) error {
	return WithTransaction(ctx, c.db, func(tx *sql.Tx) error {
		return execMany(ctx, tx, "models", insertModelSQL, len(models), func(i int) []any {
			return []any{models[i].UUID, models[i].Name, models[i].Collection}
		})
	})
}

// InsertDimensions writes tag groups, tags and models in a single transaction.
func (c *Catalog) InsertDimensions(ctx context.Context, groups []persistence.TagGroup, tags []persistence.Tag, models []persistence.Model) error {
	return WithTransaction(ctx, c.db, func(tx *sql.Tx) error {
		if err := execMany(ctx, tx, "tag_groups", insertTagGroupSQL, len(groups), func(i int) []any {
			return []any{groups[i].UUID, groups[i].Name}
		}); err != nil {
			return err
		}
		if err := execMany(ctx, tx, "tags", insertTagSQL, len(tags), func(i int) []any {
			return []any{tags[i].UUID, tags[i].Name, tags[i].TagGroupUUID}
		}); err != nil {
			return err
		}
		return execMany(ctx, tx, "models", insertModelSQL, len(models), func(i int) []any {
			return []any{models[i].UUID, models[i].Name, models[i].Collection}
		})
	})
}

// InsertImageBatch writes the batch with one prepared insert per table and
// commits it as a single transaction. Either the whole batch is durable or
// none of it is. A commit blocked by a lock is retried from the start.
func (c *Catalog) InsertImageBatch(ctx context.Context, batch persistence.ImageBatch) error {
	return WithRetry(ctx, c.retry, func() error {
		return c.insertImageBatch(ctx, batch)
	})
}

func (c *Catalog) insertImageBatch(ctx context.Context, batch persistence.ImageBatch) error {
	return WithTransaction(ctx, c.db, func(tx *sql.Tx) error {
		if err := execMany(ctx, tx, "images", insertImageSQL, len(batch.Images), func(i int) []any {
			img := batch.Images[i]
			return []any{img.UUID, img.Path, img.Collection, img.Gallery}
		}); err != nil {
			return err
		}
		if err := execMany(ctx, tx, "image_models", insertImageModelSQL, len(batch.ImageModels), func(i int) []any {
			return []any{batch.ImageModels[i].ImageUUID, batch.ImageModels[i].ModelUUID}
		}); err != nil {
			return err
		}
		return execMany(ctx, tx, "image_tags", insertImageTagSQL, len(batch.ImageTags), func(i int) []any {
			return []any{batch.ImageTags[i].ImageUUID, batch.ImageTags[i].TagUUID}
		})
	})
}

func execMany(ctx context.Context, tx *sql.Tx, table, query string, n int, args func(i int) []any) error {
	if n == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return NewDatabaseError(table, query, "prepare insert", err)
	}
	defer stmt.Close()

	for i := 0; i < n; i++ {
		if _, err := stmt.ExecContext(ctx, args(i)...); err != nil {
			return NewDatabaseError(table, query, fmt.Sprintf("insert row %d", i+1), err)
		}
	}
	return nil
}

// Counts returns row totals for every catalog table.
func (c *Catalog) Counts(ctx context.Context) (persistence.TableCounts, error) {
	var counts persistence.TableCounts
	targets := []struct {
		table string
		dest  *int64
	}{
		{"images", &counts.Images},
		{"models", &counts.Models},
		{"tag_groups", &counts.TagGroups},
		{"tags", &counts.Tags},
		{"image_models", &counts.ImageModels},
		{"image_tags", &counts.ImageTags},
	}

	for _, target := range targets {
		query := "SELECT COUNT(*) FROM " + target.table
		if err := c.db.QueryRowContext(ctx, query).Scan(target.dest); err != nil {
			return persistence.TableCounts{}, NewDatabaseError(target.table, query, "count rows", err)
		}
	}
	return counts, nil
}

// Collections summarises galleries, images and models per collection, ordered
// by collection name.
func (c *Catalog) Collections(ctx context.Context) ([]persistence.CollectionSummary, error) {
	const query = `
		SELECT i.collection,
		       COUNT(DISTINCT i.gallery),
		       COUNT(*),
		       (SELECT COUNT(*) FROM models m WHERE m.collection = i.collection)
		FROM images i
		GROUP BY i.collection
		ORDER BY i.collection`

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, NewDatabaseError("images", query, "summarise collections", err)
	}
	defer rows.Close()

	var summaries []persistence.CollectionSummary
	for rows.Next() {
		var s persistence.CollectionSummary
		if err := rows.Scan(&s.Collection, &s.Galleries, &s.Images, &s.Models); err != nil {
			return nil, NewDatabaseError("images", query, "scan collection summary", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, NewDatabaseError("images", query, "iterate collection summaries", err)
	}
	return summaries, nil
}

// TagGroupNames returns the tag group names in alphabetical order.
func (c *Catalog) TagGroupNames(ctx context.Context) ([]string, error) {
	const query = `SELECT name FROM tag_groups ORDER BY name`

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, NewDatabaseError("tag_groups", query, "list tag groups", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, NewDatabaseError("tag_groups", query, "scan tag group", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, NewDatabaseError("tag_groups", query, "iterate tag groups", err)
	}
	return names, nil
}

// OrphanLinks counts link rows whose image, model or tag endpoint is missing.
func (c *Catalog) OrphanLinks(ctx context.Context) (int64, error) {
	const query = `
		SELECT
		  (SELECT COUNT(*) FROM image_models l
		     WHERE NOT EXISTS (SELECT 1 FROM images i WHERE i.uuid = l.image_uuid)
		        OR NOT EXISTS (SELECT 1 FROM models m WHERE m.uuid = l.model_uuid))
		+ (SELECT COUNT(*) FROM image_tags l
		     WHERE NOT EXISTS (SELECT 1 FROM images i WHERE i.uuid = l.image_uuid)
		        OR NOT EXISTS (SELECT 1 FROM tags t WHERE t.uuid = l.tag_uuid))`

	var orphans int64
	if err := c.db.QueryRowContext(ctx, query).Scan(&orphans); err != nil {
		return 0, NewDatabaseError("", query, "count orphan links", err)
	}
	return orphans, nil
}

// Models returns every model ordered by collection then name.
func (c *Catalog) Models(ctx context.Context) ([]persistence.Model, error) {
	const query = `SELECT uuid, name, collection FROM models ORDER BY collection, name`

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, NewDatabaseError("models", query, "list models", err)
	}
	defer rows.Close()

	var models []persistence.Model
	for rows.Next() {
		var m persistence.Model
		if err := rows.Scan(&m.UUID, &m.Name, &m.Collection); err != nil {
			return nil, NewDatabaseError("models", query, "scan model", err)
		}
		models = append(models, m)
	}
	if err := rows.Err(); err != nil {
		return nil, NewDatabaseError("models", query, "iterate models", err)
	}
	return models, nil
}
