package persistence

import "context"

// CatalogWriter persists catalog rows. Dimension rows (tag groups, tags,
// models) must be written before the link rows that reference them.
type CatalogWriter interface {
	InsertTagGroups(ctx context.Context, groups []TagGroup) error
	InsertTags(ctx context.Context, tags []Tag) error
	InsertModels(ctx context.Context, models []Model) error
	InsertDimensions(ctx context.Context, groups []TagGroup, tags []Tag, models []Model) error
	InsertImageBatch(ctx context.Context, batch ImageBatch) error
}

// CatalogReader exposes read-only aggregate queries over a catalog.
type CatalogReader interface {
	Counts(ctx context.Context) (TableCounts, error)
	Collections(ctx context.Context) ([]CollectionSummary, error)
	TagGroupNames(ctx context.Context) ([]string, error)
	OrphanLinks(ctx context.Context) (int64, error)
	Models(ctx context.Context) ([]Model, error)
}

// ImageBatch is the unit of work written by one commit: images together with
// the links that reference them.
type ImageBatch struct {
	Images      []Image
	ImageModels []ImageModel
	ImageTags   []ImageTag
}

// Len reports how many images the batch carries.
func (b ImageBatch) Len() int {
	return len(b.Images)
}

// Reset empties the batch while keeping allocated capacity.
func (b *ImageBatch) Reset() {
	b.Images = b.Images[:0]
	b.ImageModels = b.ImageModels[:0]
	b.ImageTags = b.ImageTags[:0]
}
