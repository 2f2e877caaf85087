package migrate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/example/tivoli-tools/internal/legacy"
	"github.com/example/tivoli-tools/internal/persistence/sqlite"
)

// Options configures Run.
type Options struct {
	SourcePath string
	DestPath   string
	BatchSize  int

	// Verify runs Verify against the finished catalog and fails the run when
	// a check does not pass.
	Verify bool

	// Out receives the human-readable phase and progress lines. Nil
	// discards them.
	Out    io.Writer
	Logger *slog.Logger
	IDFunc func() string
	Now    func() time.Time
}

// Run migrates the legacy database at SourcePath into a fresh catalog at
// DestPath. A missing source yields ErrSourceNotFound before the destination
// is touched; any existing destination is otherwise replaced.
func Run(ctx context.Context, opts Options) (Report, error) {
	out := opts.Out
	if out == nil {
		out = io.Discard
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := componentLogger(ctx, opts.Logger, "migrate", "source", opts.SourcePath, "dest", opts.DestPath)
	started := now()

	report := Report{SourcePath: opts.SourcePath, DestPath: opts.DestPath}

	if _, err := os.Stat(opts.SourcePath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return report, &SourceNotFoundError{Path: opts.SourcePath}
		}
		return report, fmt.Errorf("stat source database: %w", err)
	}

	fmt.Fprintf(out, "Old DB: %s\nNew DB: %s\n\n", absPath(opts.SourcePath), absPath(opts.DestPath))

	src, err := legacy.OpenSource(opts.SourcePath)
	if err != nil {
		return report, fmt.Errorf("open source database: %w", err)
	}
	defer src.Close()

	fmt.Fprintln(out, "Creating new database...")
	db, err := sqlite.InitializeCatalog(ctx, sqlite.CatalogConfig(opts.DestPath))
	if err != nil {
		return report, fmt.Errorf("initialize catalog: %w", err)
	}
	dbOpen := true
	defer func() {
		if dbOpen {
			db.Close()
		}
	}()
	catalog := sqlite.NewCatalog(db)
	logger.Info("catalog initialized")

	fmt.Fprintln(out, "Loading lookup tables...")
	lookups, lookupCounts, err := LoadLookups(ctx, src, catalog, LookupOptions{IDFunc: opts.IDFunc, Logger: opts.Logger})
	if err != nil {
		return report, err
	}
	report.Lookups = lookupCounts
	lookupCounts.Print(out)

	total, err := src.CountDistinctPaths(ctx)
	if err != nil {
		return report, fmt.Errorf("count source paths: %w", err)
	}
	report.TotalPaths = total
	fmt.Fprintf(out, "\nMigrating %s images...\n", humanize.Comma(total))

	cursor, err := src.Rows(ctx)
	if err != nil {
		return report, err
	}
	stats, err := Pivot(ctx, cursor, catalog, lookups, PivotOptions{
		BatchSize: opts.BatchSize,
		Total:     total,
		IDFunc:    opts.IDFunc,
		Now:       now,
		Progress:  out,
		Logger:    opts.Logger,
	})
	report.Stats = stats
	if err != nil {
		return report, fmt.Errorf("migrate images: %w", err)
	}

	if opts.Verify {
		result, err := Verify(ctx, src, catalog, &stats)
		if err != nil {
			return report, fmt.Errorf("verify catalog: %w", err)
		}
		report.Verification = &result
	}

	dbOpen = false
	if err := db.Close(); err != nil {
		return report, fmt.Errorf("close catalog: %w", err)
	}
	if info, err := os.Stat(opts.DestPath); err == nil {
		report.DestSize = info.Size()
	}
	report.Elapsed = now().Sub(started)

	logger.Info("migration complete",
		"images", stats.Images,
		"skipped", stats.Skipped,
		"ambiguous", stats.Ambiguous,
		"image_models", stats.ImageModels,
		"image_tags", stats.ImageTags,
		"ignored_rows", stats.IgnoredRows,
		"dropped_model_links", stats.DroppedModelLinks,
		"dropped_tag_links", stats.DroppedTagLinks,
		"batches", stats.Batches,
		"elapsed", report.Elapsed,
	)

	if report.Verification != nil {
		if err := report.Verification.Err(); err != nil {
			return report, err
		}
	}
	return report, nil
}

// absPath resolves path for display, falling back to path itself.
func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
