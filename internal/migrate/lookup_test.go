package migrate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/tivoli-tools/internal/legacy"
	"github.com/example/tivoli-tools/internal/testfixtures"
)

func TestLoadLookupsAssignsIdentifiersInDeterministicOrder(t *testing.T) {
	env := newMigrationEnv(t,
		testfixtures.NewLegacyImage(testfixtures.WithPath("a/1.jpg"),
			testfixtures.WithModels("carol", "alice"),
			testfixtures.WithExposures("long", "dark"),
			testfixtures.WithFeatures("tattoo")),
		testfixtures.NewLegacyImage(testfixtures.WithPath("b/1.jpg"),
			testfixtures.WithUniverse("studio-b"),
			testfixtures.WithGallery("studio-b/shoot1"),
			testfixtures.WithModels("alice")),
	)
	id := func(n uint64) string { return testfixtures.IDFor("migrate", n) }

	assert.Equal(t, id(1), env.lookups.Groups[legacy.TagExposure])
	assert.Equal(t, id(2), env.lookups.Tags[TagKey{legacy.TagExposure, "dark"}])
	assert.Equal(t, id(3), env.lookups.Tags[TagKey{legacy.TagExposure, "long"}])
	assert.Equal(t, id(4), env.lookups.Groups[legacy.TagFeature])
	assert.Equal(t, id(5), env.lookups.Tags[TagKey{legacy.TagFeature, "tattoo"}])
	assert.Equal(t, id(6), env.lookups.Models[ModelKey{"alice", "studio-a"}])
	assert.Equal(t, id(7), env.lookups.Models[ModelKey{"carol", "studio-a"}])
	assert.Equal(t, id(8), env.lookups.Models[ModelKey{"alice", "studio-b"}])

	assert.Equal(t, LookupCounts{Models: 3, TagGroups: 2, Tags: 3, ExposureTags: 2, FeatureTags: 1}, env.counts)

	counts, err := env.catalog.Catalog.Counts(t.Context())
	require.NoError(t, err)
	assert.EqualValues(t, 3, counts.Models)
	assert.EqualValues(t, 2, counts.TagGroups)
	assert.EqualValues(t, 3, counts.Tags)
}

func TestLoadLookupsExcludesModelsWithoutUniverse(t *testing.T) {
	env := newMigrationEnv(t,
		testfixtures.NewLegacyImage(testfixtures.WithModels("alice")),
		testfixtures.NewLegacyImage(testfixtures.WithoutUniverse(), testfixtures.WithModels("bob")),
		testfixtures.NewLegacyImage(testfixtures.WithoutUniverse(), testfixtures.WithoutGallery(), testfixtures.WithModels("dora")),
	)

	assert.Len(t, env.lookups.Models, 1)
	_, ok := env.lookups.ModelID("bob", "studio-a")
	assert.False(t, ok)

	assert.Equal(t, 0, countRows(t, env.catalog.DB, `SELECT COUNT(*) FROM models WHERE name IN ('bob', 'dora')`))
	assert.Equal(t, 1, countRows(t, env.catalog.DB, `SELECT COUNT(*) FROM models WHERE name = 'alice' AND collection = 'studio-a'`))
}

func TestLoadLookupsReusesIdentifiersOnReencounter(t *testing.T) {
	env := newMigrationEnv(t,
		testfixtures.NewLegacyImage(testfixtures.WithModels("alice"), testfixtures.WithExposures("long")),
		testfixtures.NewLegacyImage(testfixtures.WithModels("alice"), testfixtures.WithExposures("long")),
	)
	before := env.ids.Issued()
	aliceID, ok := env.lookups.ModelID("alice", "studio-a")
	require.True(t, ok)

	again, counts, err := LoadLookups(t.Context(), env.source, env.catalog.Catalog, LookupOptions{
		IDFunc:  env.ids.Next,
		Lookups: env.lookups,
	})
	require.NoError(t, err)

	assert.Same(t, env.lookups, again)
	assert.Equal(t, env.counts, counts)
	assert.Equal(t, before, env.ids.Issued(), "no identifier may be minted for a known key")

	id, ok := again.ModelID("alice", "studio-a")
	require.True(t, ok)
	assert.Equal(t, aliceID, id)
	assert.Equal(t, 1, countRows(t, env.catalog.DB, `SELECT COUNT(*) FROM models`))
}

func TestAssignModelReusesIdentifier(t *testing.T) {
	ids := testfixtures.NewIDGenerator("assign")
	l := NewLookups(ids.Next)

	first, created := l.assignModel(ModelKey{"alice", "studio-a"})
	assert.True(t, created)
	second, created := l.assignModel(ModelKey{"alice", "studio-a"})
	assert.False(t, created)
	other, created := l.assignModel(ModelKey{"alice", "studio-b"})
	assert.True(t, created)

	assert.Equal(t, first, second)
	assert.NotEqual(t, first, other)
	assert.Len(t, ids.Issued(), 2)
}

func TestLoadLookupsTagValueInBothGroups(t *testing.T) {
	env := newMigrationEnv(t,
		testfixtures.NewLegacyImage(testfixtures.WithPath("a.jpg"), testfixtures.WithExposures("wet")),
		testfixtures.NewLegacyImage(testfixtures.WithPath("b.jpg"), testfixtures.WithFeatures("wet")),
	)

	assert.Equal(t, 1, env.counts.TagCollisions)
	assert.Equal(t, 1, env.counts.Tags)
	_, ok := env.lookups.TagID(legacy.TagFeature, "wet")
	assert.False(t, ok)
	assert.Equal(t, 1, countRows(t, env.catalog.DB,
		`SELECT COUNT(*) FROM tags t JOIN tag_groups g ON g.uuid = t.tag_group_uuid WHERE t.name = 'wet' AND g.name = 'exposure'`))

	stats := env.pivotSource(t, PivotOptions{BatchSize: 10})
	assert.Equal(t, 2, stats.Images)
	assert.Equal(t, 1, stats.ImageTags)
	assert.Equal(t, 1, stats.DroppedTagLinks)
}
