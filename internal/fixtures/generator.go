package fixtures

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/example/tivoli-tools/internal/legacy"
	"github.com/example/tivoli-tools/internal/logging"
	"github.com/example/tivoli-tools/internal/persistence"
	"github.com/example/tivoli-tools/internal/persistence/sqlite"
)

// Options configures a Generator.
type Options struct {
	GalleriesDir string
	DBPath       string
	// LegacyPath, when set, also receives a flat image_tags database
	// describing the same images.
	LegacyPath string

	Catalog  Catalog
	Renderer Renderer
	Out      io.Writer
	Logger   *slog.Logger
	IDFunc   func() string
	Now      func() time.Time
}

// Generator renders a catalog's placeholders and writes the matching
// databases and manifest.
type Generator struct {
	opts Options
}

// NewGenerator fills unset options with defaults: the default catalog, a
// placeholder renderer with the default fonts, random UUIDs and the wall
// clock.
func NewGenerator(opts Options) *Generator {
	if opts.Catalog == nil {
		opts.Catalog = DefaultCatalog()
	}
	if opts.Renderer == nil {
		opts.Renderer = NewPlaceholderRenderer(LoadFonts(DefaultFontPaths), DefaultJPEGQuality)
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.IDFunc == nil {
		opts.IDFunc = uuid.NewString
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Generator{opts: opts}
}

// Result summarises a generator run.
type Result struct {
	Images       int
	Models       int
	Collections  int
	Galleries    int
	TotalBytes   int64
	DBPath       string
	LegacyPath   string
	ManifestPath string
}

// Print writes the closing summary.
func (r Result) Print(w io.Writer) {
	fmt.Fprintf(w, "\nDone! %d images, %d models across %d studios and %d shoots.\n",
		r.Images, r.Models, r.Collections, r.Galleries)
	fmt.Fprintf(w, "Database: %s\n", r.DBPath)
	if r.LegacyPath != "" {
		fmt.Fprintf(w, "Legacy database: %s\n", r.LegacyPath)
	}
	fmt.Fprintf(w, "Manifest: %s (%s of images)\n", r.ManifestPath, humanize.Bytes(uint64(r.TotalBytes)))
}

// Run renders every image, then writes the catalog database, the optional
// legacy database and the manifest. The catalog database is recreated from
// scratch.
func (g *Generator) Run(ctx context.Context) (Result, error) {
	logger := logging.FromContext(ctx)
	if logger == nil {
		logger = g.opts.Logger
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "fixtures")

	specs, err := g.opts.Catalog.Images()
	if err != nil {
		return Result{}, err
	}

	manifest := Manifest{
		Version:     ManifestVersion,
		GeneratedAt: g.opts.Now().UTC().Format(time.RFC3339),
		Database:    g.opts.DBPath,
		Legacy:      g.opts.LegacyPath,
	}
	var batch persistence.ImageBatch
	models := newModelSet(g.opts.IDFunc)

	for _, spec := range specs {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		rel := spec.RelPath()
		path := filepath.Join(g.opts.GalleriesDir, filepath.FromSlash(rel))
		if err := g.opts.Renderer.Render(path, spec); err != nil {
			return Result{}, fmt.Errorf("render %s: %w", rel, err)
		}
		hash, size, err := HashFile(path)
		if err != nil {
			return Result{}, err
		}

		id := g.opts.IDFunc()
		batch.Images = append(batch.Images, persistence.Image{
			UUID:       id,
			Path:       rel,
			Collection: spec.Collection,
			Gallery:    spec.Gallery,
		})
		for _, name := range spec.Models {
			batch.ImageModels = append(batch.ImageModels, persistence.ImageModel{
				ImageUUID: id,
				ModelUUID: models.id(name, spec.Collection),
			})
		}

		manifest.Images = append(manifest.Images, ManifestEntry{
			UUID:   id,
			Path:   rel,
			Width:  spec.Size.Width,
			Height: spec.Size.Height,
			Size:   size,
			Hash:   hash,
			Models: spec.Models,
		})
		manifest.TotalBytes += size

		fmt.Fprintf(g.opts.Out, "  Generated: %s (%dx%d) [%s]\n", rel, spec.Size.Width, spec.Size.Height, strings.Join(spec.Models, ", "))
		logger.Debug("image rendered", "path", rel, "bytes", size)
	}

	if err := g.writeCatalog(ctx, models.list, batch); err != nil {
		return Result{}, err
	}
	if g.opts.LegacyPath != "" {
		if err := writeLegacy(ctx, g.opts.LegacyPath, specs); err != nil {
			return Result{}, err
		}
	}

	manifestPath := filepath.Join(g.opts.GalleriesDir, ManifestName)
	if err := WriteManifest(manifestPath, manifest); err != nil {
		return Result{}, err
	}

	result := Result{
		Images:       len(batch.Images),
		Models:       len(models.list),
		Collections:  len(g.opts.Catalog),
		Galleries:    g.opts.Catalog.GalleryCount(),
		TotalBytes:   manifest.TotalBytes,
		DBPath:       g.opts.DBPath,
		LegacyPath:   g.opts.LegacyPath,
		ManifestPath: manifestPath,
	}
	logger.Info("fixtures generated",
		"images", result.Images,
		"models", result.Models,
		"bytes", result.TotalBytes,
		"db", result.DBPath,
	)
	return result, nil
}

func (g *Generator) writeCatalog(ctx context.Context, models []persistence.Model, batch persistence.ImageBatch) error {
	db, err := sqlite.InitializeCatalog(ctx, sqlite.CatalogConfig(g.opts.DBPath))
	if err != nil {
		return fmt.Errorf("initialize catalog: %w", err)
	}
	defer db.Close()

	catalog := sqlite.NewCatalog(db)
	if err := catalog.InsertModels(ctx, models); err != nil {
		return fmt.Errorf("write models: %w", err)
	}
	if err := catalog.InsertImageBatch(ctx, batch); err != nil {
		return fmt.Errorf("write images: %w", err)
	}
	return db.Close()
}

// modelSet assigns one identifier per (name, collection) in first-seen order.
type modelSet struct {
	newID func() string
	ids   map[[2]string]string
	list  []persistence.Model
}

func newModelSet(newID func() string) *modelSet {
	return &modelSet{newID: newID, ids: make(map[[2]string]string)}
}

func (s *modelSet) id(name, collection string) string {
	key := [2]string{name, collection}
	if id, ok := s.ids[key]; ok {
		return id
	}
	id := s.newID()
	s.ids[key] = id
	s.list = append(s.list, persistence.Model{UUID: id, Name: name, Collection: collection})
	return id
}

// LegacyRows describes specs in the flat legacy schema. The gallery carries
// its collection prefix as in the old app. Each image also gets an exposure
// tag from its orientation and a feature tag from its model count.
func LegacyRows(specs []ImageSpec) []legacy.Row {
	var rows []legacy.Row
	for _, spec := range specs {
		p := spec.RelPath()
		rows = append(rows,
			legacy.NewRow(p, legacy.TagUniverse, spec.Collection),
			legacy.NewRow(p, legacy.TagGallery, spec.Collection+"/"+spec.Gallery),
		)
		for _, m := range spec.Models {
			rows = append(rows, legacy.NewRow(p, legacy.TagModel, m))
		}

		orientation, _, _ := strings.Cut(spec.Size.Name, "_")
		if orientation == "" {
			orientation = "landscape"
			if spec.Size.Height > spec.Size.Width {
				orientation = "portrait"
			}
		}
		rows = append(rows, legacy.NewRow(p, legacy.TagExposure, orientation))

		feature := "solo"
		if len(spec.Models) > 1 {
			feature = "group"
		}
		rows = append(rows, legacy.NewRow(p, legacy.TagFeature, feature))
	}
	return rows
}

func writeLegacy(ctx context.Context, path string, specs []ImageSpec) error {
	db, err := legacy.CreateDatabase(ctx, path)
	if err != nil {
		return fmt.Errorf("create legacy database: %w", err)
	}
	defer db.Close()

	if err := legacy.WriteRows(ctx, db, LegacyRows(specs)); err != nil {
		return fmt.Errorf("write legacy rows: %w", err)
	}
	return db.Close()
}
