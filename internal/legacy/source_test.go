package legacy_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/tivoli-tools/internal/legacy"
	"github.com/example/tivoli-tools/internal/testfixtures"
)

func TestDistinctModelsRequiresUniverse(t *testing.T) {
	src := testfixtures.OpenLegacySource(t, testfixtures.LegacyRows(
		testfixtures.NewLegacyImage(testfixtures.WithPath("a/1.jpg"), testfixtures.WithModels("alice")),
		testfixtures.NewLegacyImage(testfixtures.WithPath("a/2.jpg"), testfixtures.WithModels("alice", "carol")),
		testfixtures.NewLegacyImage(testfixtures.WithPath("b/1.jpg"), testfixtures.WithUniverse("studio-b"), testfixtures.WithModels("alice")),
		testfixtures.NewLegacyImage(testfixtures.WithPath("x/1.jpg"), testfixtures.WithoutUniverse(), testfixtures.WithoutGallery(), testfixtures.WithModels("bob")),
	))

	pairs, err := src.DistinctModels(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []legacy.ModelPair{
		{Name: "alice", Collection: "studio-a"},
		{Name: "carol", Collection: "studio-a"},
		{Name: "alice", Collection: "studio-b"},
	}, pairs)
}

func TestDistinctValuesAndCount(t *testing.T) {
	src := testfixtures.OpenLegacySource(t, testfixtures.LegacyRows(
		testfixtures.NewLegacyImage(testfixtures.WithPath("a/1.jpg"), testfixtures.WithExposures("long", "dark"), testfixtures.WithFeatures("tattoo")),
		testfixtures.NewLegacyImage(testfixtures.WithPath("a/2.jpg"), testfixtures.WithExposures("long")),
		testfixtures.NewLegacyImage(testfixtures.WithPath("a/3.jpg"), testfixtures.WithoutGallery()),
	))
	ctx := t.Context()

	exposures, err := src.DistinctValues(ctx, legacy.TagExposure)
	require.NoError(t, err)
	assert.Equal(t, []string{"dark", "long"}, exposures)

	features, err := src.DistinctValues(ctx, legacy.TagFeature)
	require.NoError(t, err)
	assert.Equal(t, []string{"tattoo"}, features)

	n, err := src.CountDistinctPaths(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
}

func TestCursorGroupsRowsByPath(t *testing.T) {
	src := testfixtures.OpenLegacySource(t, []legacy.Row{
		legacy.NewRow("b.jpg", legacy.TagModel, "bob"),
		legacy.NewRow("a.jpg", legacy.TagUniverse, "studio-a"),
		{ImagePath: "b.jpg", RawType: "rating", Value: "5"},
		legacy.NewRow("a.jpg", legacy.TagGallery, "studio-a/shoot1"),
	})

	cur, err := src.Rows(t.Context())
	require.NoError(t, err)
	defer cur.Close()

	var paths []string
	var unknown []legacy.Row
	for cur.Next() {
		row := cur.Row()
		paths = append(paths, row.ImagePath)
		if row.Type == legacy.TagUnknown {
			unknown = append(unknown, row)
		}
	}
	require.NoError(t, cur.Err())

	assert.Equal(t, []string{"a.jpg", "a.jpg", "b.jpg", "b.jpg"}, paths)
	require.Len(t, unknown, 1)
	assert.Equal(t, "rating", unknown[0].RawType)
}

func TestOpenSourceDoesNotCreateMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.db")

	src, err := legacy.OpenSource(path)
	if err == nil {
		src.Close()
	}
	require.Error(t, err)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "read-only open must not create %s", path)
}

func TestSourceIsReadOnly(t *testing.T) {
	src := testfixtures.OpenLegacySource(t, testfixtures.NewLegacyImage().Rows())

	_, err := src.DB().ExecContext(t.Context(), `DELETE FROM image_tags`)
	assert.Error(t, err)
}

func TestCountEligiblePaths(t *testing.T) {
	src := testfixtures.OpenLegacySource(t, testfixtures.LegacyRows(
		testfixtures.NewLegacyImage(),
		testfixtures.NewLegacyImage(testfixtures.WithoutGallery()),
		testfixtures.NewLegacyImage(testfixtures.WithoutUniverse()),
		testfixtures.NewLegacyImage(testfixtures.WithUniverse("")),
		testfixtures.NewLegacyImage(testfixtures.WithGalleries("studio-a/one", "studio-a/two")),
	))

	// An empty universe value still counts as a universe row.
	n, err := src.CountEligiblePaths(t.Context())
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
}
