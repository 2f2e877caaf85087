package migrate

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"

	"github.com/example/tivoli-tools/internal/legacy"
	"github.com/example/tivoli-tools/internal/persistence"
	"github.com/example/tivoli-tools/internal/persistence/sqlite"
)

// VerifySource is the legacy side of a verification.
type VerifySource interface {
	CountDistinctPaths(ctx context.Context) (int64, error)
	CountEligiblePaths(ctx context.Context) (int64, error)
	DistinctModels(ctx context.Context) ([]legacy.ModelPair, error)
}

// VerifyResult collects the outcome of Verify.
type VerifyResult struct {
	Counts   persistence.TableCounts
	Checks   int
	Problems []string
}

// OK reports whether every check passed.
func (r VerifyResult) OK() bool {
	return len(r.Problems) == 0
}

// Err returns a *VerifyError listing every problem, or nil.
func (r VerifyResult) Err() error {
	if r.OK() {
		return nil
	}
	return &VerifyError{Problems: r.Problems}
}

func (r *VerifyResult) check(ok bool, format string, args ...any) {
	r.Checks++
	if !ok {
		r.Problems = append(r.Problems, fmt.Sprintf(format, args...))
	}
}

// Verify compares a migrated catalog against its source. When stats from the
// run are supplied the image and link totals are checked against them;
// otherwise the image total is only bounded by the eligible source paths.
// Failed checks are reported in the result; the error is reserved for
// failures to run the checks at all.
func Verify(ctx context.Context, src VerifySource, dst persistence.CatalogReader, stats *Stats) (VerifyResult, error) {
	var result VerifyResult

	counts, err := dst.Counts(ctx)
	if err != nil {
		return result, fmt.Errorf("count catalog rows: %w", err)
	}
	result.Counts = counts

	if stats != nil {
		total, err := src.CountDistinctPaths(ctx)
		if err != nil {
			return result, fmt.Errorf("count source paths: %w", err)
		}
		result.check(int64(stats.Processed()) == total,
			"images (%d) + skipped (%d) != distinct source paths (%d)", stats.Images, stats.Skipped, total)
		result.check(counts.Images == int64(stats.Images),
			"catalog holds %d images, run reported %d", counts.Images, stats.Images)
		result.check(counts.ImageModels == int64(stats.ImageModels),
			"catalog holds %d image-model links, run reported %d", counts.ImageModels, stats.ImageModels)
		result.check(counts.ImageTags == int64(stats.ImageTags),
			"catalog holds %d image-tag links, run reported %d", counts.ImageTags, stats.ImageTags)
	} else {
		eligible, err := src.CountEligiblePaths(ctx)
		if err != nil {
			return result, fmt.Errorf("count eligible source paths: %w", err)
		}
		result.check(counts.Images <= eligible,
			"catalog holds %d images but only %d source paths have a universe and gallery row", counts.Images, eligible)
	}

	orphans, err := dst.OrphanLinks(ctx)
	if err != nil {
		return result, fmt.Errorf("count orphan links: %w", err)
	}
	result.check(orphans == 0, "%d link rows reference a missing image, model or tag", orphans)

	pairs, err := src.DistinctModels(ctx)
	if err != nil {
		return result, fmt.Errorf("load source models: %w", err)
	}
	known := make(map[ModelKey]struct{}, len(pairs))
	for _, p := range pairs {
		known[ModelKey{Name: p.Name, Collection: p.Collection}] = struct{}{}
	}
	models, err := dst.Models(ctx)
	if err != nil {
		return result, fmt.Errorf("load catalog models: %w", err)
	}
	var unbacked []string
	for _, m := range models {
		if _, ok := known[ModelKey{Name: m.Name, Collection: m.Collection}]; !ok {
			unbacked = append(unbacked, m.Collection+"/"+m.Name)
		}
	}
	result.check(len(unbacked) == 0, "models without a universe-backed source row: %v", unbacked)

	groups, err := dst.TagGroupNames(ctx)
	if err != nil {
		return result, fmt.Errorf("load tag groups: %w", err)
	}
	want := make([]string, 0, len(legacy.TagGroups))
	for _, g := range legacy.TagGroups {
		want = append(want, g.String())
	}
	slices.Sort(want)
	result.check(slices.Equal(groups, want), "tag groups are %v, want %v", groups, want)

	return result, nil
}

// VerifyFiles opens a legacy database read-only and an existing catalog
// without creating it, and verifies one against the other. Verify only reads
// from the catalog.
func VerifyFiles(ctx context.Context, sourcePath, destPath string) (VerifyResult, error) {
	for _, path := range []string{sourcePath, destPath} {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == sourcePath {
				return VerifyResult{}, &SourceNotFoundError{Path: path}
			}
			return VerifyResult{}, fmt.Errorf("stat %s: %w", path, err)
		}
	}

	src, err := legacy.OpenSource(sourcePath)
	if err != nil {
		return VerifyResult{}, fmt.Errorf("open source database: %w", err)
	}
	defer src.Close()

	db, err := sqlite.Open(sqlite.ExistingCatalogConfig(destPath))
	if err != nil {
		return VerifyResult{}, fmt.Errorf("open catalog: %w", err)
	}
	defer db.Close()

	return Verify(ctx, src, sqlite.NewCatalog(db), nil)
}
