// Package legacy reads and writes the flat tag schema used by the previous
// gallery app: a single image_tags(image_path, tag_type, tag_value) table.
package legacy

// TagType is the closed set of categories a legacy tag row can carry.
type TagType int

const (
	// TagUnknown marks a tag_type string outside the known set.
	TagUnknown TagType = iota
	// TagUniverse names the collection an image belongs to.
	TagUniverse
	// TagGallery names the shoot, usually as "collection/gallery".
	TagGallery
	// TagModel names a person appearing in the image.
	TagModel
	// TagExposure is a descriptive exposure tag.
	TagExposure
	// TagFeature is a descriptive feature tag.
	TagFeature
)

var tagTypeNames = map[TagType]string{
	TagUniverse: "universe",
	TagGallery:  "gallery",
	TagModel:    "model",
	TagExposure: "exposure",
	TagFeature:  "feature",
}

// String returns the value stored in the tag_type column.
func (t TagType) String() string {
	if name, ok := tagTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// ParseTagType maps a tag_type column value to its TagType. The boolean is
// false for values outside the known set.
func ParseTagType(s string) (TagType, bool) {
	switch s {
	case "universe":
		return TagUniverse, true
	case "gallery":
		return TagGallery, true
	case "model":
		return TagModel, true
	case "exposure":
		return TagExposure, true
	case "feature":
		return TagFeature, true
	}
	return TagUnknown, false
}

// TagGroups lists the categories that become tag groups in the catalog, in
// the order their tags are assigned.
var TagGroups = []TagType{TagExposure, TagFeature}

// Row is one image_tags record. RawType keeps the column value so that
// unknown types can be reported.
type Row struct {
	ImagePath string
	Type      TagType
	RawType   string
	Value     string
}

// NewRow builds a Row from a known tag type.
func NewRow(path string, t TagType, value string) Row {
	return Row{ImagePath: path, Type: t, RawType: t.String(), Value: value}
}
