package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/tivoli-tools/internal/legacy"
)

var imageCounter uint64

var referenceTime = time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// LegacyImage describes the flat tag rows recorded for one image path in a
// legacy database.
type LegacyImage struct {
	Path      string
	Universes []string
	Galleries []string
	Models    []string
	Exposures []string
	Features  []string
	Unknown   map[string]string
}

// LegacyImageOption configures the generated legacy image fixture.
type LegacyImageOption func(*LegacyImage)

// NewLegacyImage returns a valid legacy image in studio-a/shoot1 with a
// unique path, overridable with options.
func NewLegacyImage(opts ...LegacyImageOption) LegacyImage {
	idx := atomic.AddUint64(&imageCounter, 1)
	fixture := LegacyImage{
		Path:      fmt.Sprintf("studio-a/shoot1/img-%05d.jpg", idx),
		Universes: []string{"studio-a"},
		Galleries: []string{"studio-a/shoot1"},
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithPath overrides the generated image path.
func WithPath(path string) LegacyImageOption {
	return func(f *LegacyImage) {
		f.Path = path
	}
}

// WithUniverse replaces the universe rows with a single value.
func WithUniverse(universe string) LegacyImageOption {
	return func(f *LegacyImage) {
		f.Universes = []string{universe}
	}
}

// WithGallery replaces the gallery rows with a single value.
func WithGallery(gallery string) LegacyImageOption {
	return func(f *LegacyImage) {
		f.Galleries = []string{gallery}
	}
}

// WithUniverses sets every universe row, allowing conflicting values.
func WithUniverses(universes ...string) LegacyImageOption {
	return func(f *LegacyImage) {
		f.Universes = universes
	}
}

// WithGalleries sets every gallery row, allowing conflicting values.
func WithGalleries(galleries ...string) LegacyImageOption {
	return func(f *LegacyImage) {
		f.Galleries = galleries
	}
}

// WithoutUniverse drops the universe rows.
func WithoutUniverse() LegacyImageOption {
	return func(f *LegacyImage) {
		f.Universes = nil
	}
}

// WithoutGallery drops the gallery rows.
func WithoutGallery() LegacyImageOption {
	return func(f *LegacyImage) {
		f.Galleries = nil
	}
}

// WithModels sets the model rows.
func WithModels(models ...string) LegacyImageOption {
	return func(f *LegacyImage) {
		f.Models = models
	}
}

// WithExposures sets the exposure rows.
func WithExposures(values ...string) LegacyImageOption {
	return func(f *LegacyImage) {
		f.Exposures = values
	}
}

// WithFeatures sets the feature rows.
func WithFeatures(values ...string) LegacyImageOption {
	return func(f *LegacyImage) {
		f.Features = values
	}
}

// WithUnknownTag adds a row whose tag_type is outside the known set.
func WithUnknownTag(tagType, value string) LegacyImageOption {
	return func(f *LegacyImage) {
		if f.Unknown == nil {
			f.Unknown = map[string]string{}
		}
		f.Unknown[tagType] = value
	}
}

// Rows flattens the fixture into image_tags rows.
func (f LegacyImage) Rows() []legacy.Row {
	var rows []legacy.Row
	add := func(t legacy.TagType, values []string) {
		for _, v := range values {
			rows = append(rows, legacy.NewRow(f.Path, t, v))
		}
	}
	add(legacy.TagUniverse, f.Universes)
	add(legacy.TagGallery, f.Galleries)
	add(legacy.TagModel, f.Models)
	add(legacy.TagExposure, f.Exposures)
	add(legacy.TagFeature, f.Features)
	for tagType, value := range f.Unknown {
		rows = append(rows, legacy.Row{ImagePath: f.Path, Type: legacy.TagUnknown, RawType: tagType, Value: value})
	}
	return rows
}

// LegacyRows flattens several fixtures into one row slice.
func LegacyRows(images ...LegacyImage) []legacy.Row {
	var rows []legacy.Row
	for _, img := range images {
		rows = append(rows, img.Rows()...)
	}
	return rows
}

// ValidLegacyImages returns n valid images spread over the given number of
// galleries in studio-a, each tagged with model alice and exposure long.
func ValidLegacyImages(n, galleries int) []LegacyImage {
	if galleries <= 0 {
		galleries = 1
	}
	images := make([]LegacyImage, 0, n)
	for i := 0; i < n; i++ {
		gallery := fmt.Sprintf("shoot%d", i%galleries+1)
		images = append(images, NewLegacyImage(
			WithPath(fmt.Sprintf("studio-a/%s/bulk-%06d.jpg", gallery, i)),
			WithGallery("studio-a/"+gallery),
			WithModels("alice"),
			WithExposures("long"),
		))
	}
	return images
}
