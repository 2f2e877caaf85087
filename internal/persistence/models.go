package persistence

// Image is one catalogued photo. Path is relative to the galleries root.
type Image struct {
	UUID       string
	Path       string
	Collection string
	Gallery    string
}

// Model is a person appearing in photos. The same name in two collections
// is two distinct models.
type Model struct {
	UUID       string
	Name       string
	Collection string
}

// TagGroup is a fixed category of descriptive tags.
type TagGroup struct {
	UUID string
	Name string
}

// Tag is a descriptive value owned by exactly one group. Names are unique
// across all groups.
type Tag struct {
	UUID         string
	Name         string
	TagGroupUUID string
}

// ImageModel links an image to a model appearing in it.
type ImageModel struct {
	ImageUUID string
	ModelUUID string
}

// ImageTag links an image to one of its tags.
type ImageTag struct {
	ImageUUID string
	TagUUID   string
}

// TableCounts reports row totals for every catalog table.
type TableCounts struct {
	Images      int64
	Models      int64
	TagGroups   int64
	Tags        int64
	ImageModels int64
	ImageTags   int64
}

// CollectionSummary aggregates catalog contents for one collection.
type CollectionSummary struct {
	Collection string
	Galleries  int64
	Images     int64
	Models     int64
}
