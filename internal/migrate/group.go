package migrate

import (
	"strings"

	"github.com/example/tivoli-tools/internal/legacy"
)

// NormalizeGallery strips a leading collection segment, up to and including
// the first "/", from a legacy gallery value.
func NormalizeGallery(gallery string) string {
	if _, name, found := strings.Cut(gallery, "/"); found {
		return name
	}
	return gallery
}

// imageGroup is the fold of every legacy row recorded for one image path.
type imageGroup struct {
	Path       string
	Collection string
	Gallery    string
	Models     []string
	Exposures  []string
	Features   []string

	// hasCollection and hasGallery record that a row of that type was seen,
	// whatever its value. An empty value is still present.
	hasCollection bool
	hasGallery    bool

	// ambiguous is set when more than one distinct collection or gallery
	// value was seen for the path.
	ambiguous bool
	ignored   int
}

func newImageGroup(path string) *imageGroup {
	return &imageGroup{Path: path}
}

// add folds one row into the group. Rows with an unknown tag type are counted
// and otherwise ignored.
func (g *imageGroup) add(row legacy.Row) {
	switch row.Type {
	case legacy.TagUniverse:
		g.setSingle(&g.Collection, &g.hasCollection, row.Value)
	case legacy.TagGallery:
		g.setSingle(&g.Gallery, &g.hasGallery, NormalizeGallery(row.Value))
	case legacy.TagModel:
		g.Models = append(g.Models, row.Value)
	case legacy.TagExposure:
		g.Exposures = append(g.Exposures, row.Value)
	case legacy.TagFeature:
		g.Features = append(g.Features, row.Value)
	default:
		g.ignored++
	}
}

// setSingle records value for a single-valued field. Gallery values are
// compared after normalization.
func (g *imageGroup) setSingle(field *string, seen *bool, value string) {
	switch {
	case !*seen:
		*field = value
		*seen = true
	case *field != value:
		g.ambiguous = true
	}
}

// valid reports whether the group can become an image row: it needs a
// universe row and a gallery row, and neither may conflict.
func (g *imageGroup) valid() bool {
	return g.hasCollection && g.hasGallery && !g.ambiguous
}

// foldGroups reads rows from it, calling emit once per contiguous run of rows
// sharing an image path. Rows must arrive ordered by path.
func foldGroups(it RowIterator, emit func(*imageGroup) error) error {
	var current *imageGroup
	for it.Next() {
		row := it.Row()
		if current != nil && row.ImagePath != current.Path {
			if err := emit(current); err != nil {
				return err
			}
			current = nil
		}
		if current == nil {
			current = newImageGroup(row.ImagePath)
		}
		current.add(row)
	}
	if err := it.Err(); err != nil {
		return err
	}
	if current != nil {
		return emit(current)
	}
	return nil
}
