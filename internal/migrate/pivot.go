package migrate

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/example/tivoli-tools/internal/legacy"
	"github.com/example/tivoli-tools/internal/persistence"
)

// RowIterator streams legacy rows ordered by image path. legacy.Cursor is the
// production implementation.
type RowIterator interface {
	Next() bool
	Row() legacy.Row
	Err() error
	Close() error
}

// PivotOptions configures Pivot.
type PivotOptions struct {
	BatchSize int
	// Total is the number of distinct source paths, used for progress lines.
	Total  int64
	IDFunc func() string
	Now    func() time.Time
	// Progress receives one human-readable line per committed batch.
	Progress io.Writer
	Logger   *slog.Logger
}

// Stats aggregates the outcome of a pivot pass.
type Stats struct {
	Images      int
	Skipped     int
	ImageModels int
	ImageTags   int

	// Ambiguous counts skipped paths carrying more than one distinct
	// collection or gallery value.
	Ambiguous int
	// IgnoredRows counts rows with an unrecognised tag type.
	IgnoredRows       int
	DroppedModelLinks int
	DroppedTagLinks   int
	Batches           int
}

// Processed returns the number of image paths seen.
func (s Stats) Processed() int {
	return s.Images + s.Skipped
}

// Pivot streams rows, folds each image path into one image with its model
// and tag links, and writes the results to dst in batches. Links are only
// created from lookups; unmapped names are dropped. Pivot closes rows before
// returning.
//
// If the stream fails, the error is returned and the batch in progress is
// discarded. Batches committed before the failure remain in dst.
func Pivot(ctx context.Context, rows RowIterator, dst BatchWriter, lookups *Lookups, opts PivotOptions) (Stats, error) {
	defer rows.Close()

	newID := opts.IDFunc
	if newID == nil {
		newID = uuid.NewString
	}
	logger := componentLogger(ctx, opts.Logger, "pivot")
	progress := NewProgress(opts.Total, opts.Now)

	var stats Stats
	batcher := NewBatcher(dst, opts.BatchSize)
	batcher.OnFlush = func(written int) {
		stats.Batches++
		progress.Report(opts.Progress, int64(written))
		logger.Debug("batch committed", "images", written, "batches", stats.Batches)
	}

	err := foldGroups(rows, func(g *imageGroup) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.IgnoredRows += g.ignored

		if !g.valid() {
			stats.Skipped++
			if g.ambiguous {
				stats.Ambiguous++
				logger.Warn("image has conflicting collection or gallery values, skipped", "path", g.Path)
			}
			return nil
		}

		img := persistence.Image{
			UUID:       newID(),
			Path:       g.Path,
			Collection: g.Collection,
			Gallery:    g.Gallery,
		}
		models, tags := buildLinks(img.UUID, g, lookups, &stats)

		if err := batcher.Add(ctx, img, models, tags); err != nil {
			return fmt.Errorf("commit batch %d: %w", stats.Batches+1, err)
		}
		stats.Images++
		stats.ImageModels += len(models)
		stats.ImageTags += len(tags)
		return nil
	})
	if err != nil {
		logger.Error("pivot aborted",
			"error", err,
			"error_kind", ErrorKind(err),
			"committed_images", batcher.Written(),
			"discarded_images", batcher.Pending(),
		)
		return stats, err
	}

	if err := batcher.Flush(ctx); err != nil {
		return stats, fmt.Errorf("commit final batch: %w", err)
	}
	return stats, nil
}

// buildLinks resolves the group's model and tag names through lookups. A
// name listed more than once yields one link.
func buildLinks(imageID string, g *imageGroup, lookups *Lookups, stats *Stats) ([]persistence.ImageModel, []persistence.ImageTag) {
	var models []persistence.ImageModel
	seenModels := make(map[string]struct{}, len(g.Models))
	for _, name := range g.Models {
		id, ok := lookups.ModelID(name, g.Collection)
		if !ok {
			stats.DroppedModelLinks++
			continue
		}
		if _, dup := seenModels[id]; dup {
			continue
		}
		seenModels[id] = struct{}{}
		models = append(models, persistence.ImageModel{ImageUUID: imageID, ModelUUID: id})
	}

	var tags []persistence.ImageTag
	seenTags := make(map[string]struct{}, len(g.Exposures)+len(g.Features))
	addTags := func(group legacy.TagType, values []string) {
		for _, value := range values {
			id, ok := lookups.TagID(group, value)
			if !ok {
				stats.DroppedTagLinks++
				continue
			}
			if _, dup := seenTags[id]; dup {
				continue
			}
			seenTags[id] = struct{}{}
			tags = append(tags, persistence.ImageTag{ImageUUID: imageID, TagUUID: id})
		}
	}
	addTags(legacy.TagExposure, g.Exposures)
	addTags(legacy.TagFeature, g.Features)

	return models, tags
}
