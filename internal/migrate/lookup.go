package migrate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/example/tivoli-tools/internal/legacy"
	"github.com/example/tivoli-tools/internal/persistence"
)

// LookupSource enumerates the dimension values of a legacy database.
type LookupSource interface {
	DistinctModels(ctx context.Context) ([]legacy.ModelPair, error)
	DistinctValues(ctx context.Context, t legacy.TagType) ([]string, error)
}

// ModelKey identifies a model: the same name in two collections is two models.
type ModelKey struct {
	Name       string
	Collection string
}

// TagKey identifies a tag by its category and value.
type TagKey struct {
	Group legacy.TagType
	Value string
}

// Lookups maps dimension keys to the identifiers assigned to them during a
// run. It is built once by LoadLookups and passed into Pivot.
type Lookups struct {
	Models map[ModelKey]string
	Tags   map[TagKey]string
	Groups map[legacy.TagType]string

	tagOwners map[string]legacy.TagType
	newID     func() string
}

// NewLookups returns empty maps that mint identifiers with newID. A nil
// newID uses random UUIDs.
func NewLookups(newID func() string) *Lookups {
	if newID == nil {
		newID = uuid.NewString
	}
	return &Lookups{
		Models:    make(map[ModelKey]string),
		Tags:      make(map[TagKey]string),
		Groups:    make(map[legacy.TagType]string),
		tagOwners: make(map[string]legacy.TagType),
		newID:     newID,
	}
}

// ModelID returns the identifier for a (name, collection) pair.
func (l *Lookups) ModelID(name, collection string) (string, bool) {
	id, ok := l.Models[ModelKey{Name: name, Collection: collection}]
	return id, ok
}

// TagID returns the identifier for a value within a category.
func (l *Lookups) TagID(group legacy.TagType, value string) (string, bool) {
	id, ok := l.Tags[TagKey{Group: group, Value: value}]
	return id, ok
}

// assignModel returns the identifier for key, minting one on first sight.
func (l *Lookups) assignModel(key ModelKey) (string, bool) {
	if id, ok := l.Models[key]; ok {
		return id, false
	}
	id := l.newID()
	l.Models[key] = id
	return id, true
}

func (l *Lookups) assignGroup(group legacy.TagType) (string, bool) {
	if id, ok := l.Groups[group]; ok {
		return id, false
	}
	id := l.newID()
	l.Groups[group] = id
	return id, true
}

// assignTag returns the identifier for key, minting one on first sight. Tag
// names are unique across groups, so a value already owned by another group
// is refused and ok is false.
func (l *Lookups) assignTag(key TagKey) (id string, created, ok bool) {
	if id, exists := l.Tags[key]; exists {
		return id, false, true
	}
	if owner, taken := l.tagOwners[key.Value]; taken && owner != key.Group {
		return "", false, false
	}
	id = l.newID()
	l.Tags[key] = id
	l.tagOwners[key.Value] = key.Group
	return id, true, true
}

// LookupCounts summarises the dimension rows held by the lookup maps.
type LookupCounts struct {
	Models        int
	TagGroups     int
	Tags          int
	ExposureTags  int
	FeatureTags   int
	TagCollisions int
}

// LookupOptions configures LoadLookups.
type LookupOptions struct {
	IDFunc func() string
	Logger *slog.Logger

	// Lookups, when set, is extended instead of starting from empty maps.
	// Keys it already holds keep their identifiers and are not written again.
	Lookups *Lookups
}

// LoadLookups reads the distinct models and tag values from src, assigns each
// an identifier and writes the tag groups, tags and models to dst in a single
// transaction. Models without a universe row on the same path are not
// returned by the source and therefore never enter the catalog.
func LoadLookups(ctx context.Context, src LookupSource, dst persistence.CatalogWriter, opts LookupOptions) (*Lookups, LookupCounts, error) {
	logger := componentLogger(ctx, opts.Logger, "lookups")
	lookups := opts.Lookups
	if lookups == nil {
		lookups = NewLookups(opts.IDFunc)
	}
	var counts LookupCounts

	var (
		groups []persistence.TagGroup
		tags   []persistence.Tag
		models []persistence.Model
	)

	for _, group := range legacy.TagGroups {
		groupID, created := lookups.assignGroup(group)
		if created {
			groups = append(groups, persistence.TagGroup{UUID: groupID, Name: group.String()})
		}

		values, err := src.DistinctValues(ctx, group)
		if err != nil {
			return nil, LookupCounts{}, fmt.Errorf("load %s tags: %w", group, err)
		}

		for _, value := range values {
			id, created, ok := lookups.assignTag(TagKey{Group: group, Value: value})
			if !ok {
				counts.TagCollisions++
				logger.Warn("tag value already used by another group, links dropped",
					"group", group.String(),
					"value", value,
					"owner", lookups.tagOwners[value].String(),
				)
				continue
			}
			if created {
				tags = append(tags, persistence.Tag{UUID: id, Name: value, TagGroupUUID: groupID})
			}
		}
	}

	pairs, err := src.DistinctModels(ctx)
	if err != nil {
		return nil, LookupCounts{}, fmt.Errorf("load models: %w", err)
	}
	for _, pair := range pairs {
		key := ModelKey{Name: pair.Name, Collection: pair.Collection}
		if id, created := lookups.assignModel(key); created {
			models = append(models, persistence.Model{UUID: id, Name: pair.Name, Collection: pair.Collection})
		}
	}

	if err := dst.InsertDimensions(ctx, groups, tags, models); err != nil {
		return nil, LookupCounts{}, fmt.Errorf("write dimension rows: %w", err)
	}

	counts.Models = len(lookups.Models)
	counts.TagGroups = len(lookups.Groups)
	counts.Tags = len(lookups.Tags)
	for key := range lookups.Tags {
		switch key.Group {
		case legacy.TagExposure:
			counts.ExposureTags++
		case legacy.TagFeature:
			counts.FeatureTags++
		}
	}

	logger.Info("lookups loaded",
		"models", counts.Models,
		"tag_groups", counts.TagGroups,
		"tags", counts.Tags,
		"tag_collisions", counts.TagCollisions,
	)
	return lookups, counts, nil
}
