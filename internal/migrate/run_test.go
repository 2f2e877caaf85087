package migrate

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/tivoli-tools/internal/persistence/sqlite"
	"github.com/example/tivoli-tools/internal/testfixtures"
)

func TestRunMissingSourceLeavesDestinationUntouched(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "catalog.db")
	require.NoError(t, os.WriteFile(dest, []byte("previous catalog"), 0o644))

	_, err := Run(t.Context(), Options{
		SourcePath: filepath.Join(dir, "missing.db"),
		DestPath:   dest,
	})
	require.ErrorIs(t, err, ErrSourceNotFound)

	var notFound *SourceNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Contains(t, err.Error(), "old database not found at")

	data, readErr := os.ReadFile(dest)
	require.NoError(t, readErr)
	assert.Equal(t, "previous catalog", string(data))
}

func TestRunMigratesAndVerifies(t *testing.T) {
	images := testfixtures.ValidLegacyImages(5, 2)
	images = append(images,
		testfixtures.NewLegacyImage(testfixtures.WithoutUniverse(), testfixtures.WithoutGallery(), testfixtures.WithModels("bob")),
		testfixtures.NewLegacyImage(testfixtures.WithFeatures("tattoo"), testfixtures.WithModels("carol")),
	)
	source := testfixtures.WriteLegacyDB(t, testfixtures.LegacyRows(images...))

	dest := filepath.Join(t.TempDir(), "data", "tivoli.db")
	require.NoError(t, os.MkdirAll(filepath.Dir(dest), 0o755))
	require.NoError(t, os.WriteFile(dest, []byte("stale"), 0o644))

	clock := testfixtures.NewClock(time.Time{})
	clock.AutoAdvance(100 * time.Millisecond)
	var out bytes.Buffer

	report, err := Run(t.Context(), Options{
		SourcePath: source,
		DestPath:   dest,
		BatchSize:  2,
		Verify:     true,
		Out:        &out,
		IDFunc:     testfixtures.NewIDGenerator("run").Next,
		Now:        clock.Now,
	})
	require.NoError(t, err)

	assert.Equal(t, 6, report.Stats.Images)
	assert.Equal(t, 1, report.Stats.Skipped)
	assert.Equal(t, 6, report.Stats.ImageModels)
	assert.Equal(t, 6, report.Stats.ImageTags)
	assert.EqualValues(t, 7, report.TotalPaths)
	assert.Equal(t, LookupCounts{Models: 2, TagGroups: 2, Tags: 2, ExposureTags: 1, FeatureTags: 1}, report.Lookups)
	require.NotNil(t, report.Verification)
	assert.True(t, report.Verification.OK(), "problems: %v", report.Verification.Problems)
	assert.Positive(t, report.DestSize)
	assert.Positive(t, report.Elapsed)

	text := out.String()
	sourceAbs, err := filepath.Abs(source)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(text, "Old DB: "+sourceAbs+"\n"), "header: %q", text)

	for _, want := range []string{"Creating new database...", "Loading lookup tables...", "Models:     2", "Migrating 7 images...", "6/7 images"} {
		assert.Contains(t, text, want)
	}

	db, err := sqlite.Open(sqlite.ExistingCatalogConfig(dest))
	require.NoError(t, err)
	defer db.Close()
	assert.Equal(t, 6, countRows(t, db, `SELECT COUNT(*) FROM images`))
}

func TestReportPrint(t *testing.T) {
	report := Report{
		Stats:    Stats{Images: 12345, ImageModels: 20000, ImageTags: 300},
		Elapsed:  1500 * time.Millisecond,
		DestSize: 2_500_000,
	}

	var out bytes.Buffer
	report.Print(&out)
	text := out.String()
	assert.Contains(t, text, "Migration complete! (1.5s)")
	assert.Contains(t, text, "Images:       12,345")
	assert.Contains(t, text, "Image-models: 20,000")
	assert.Contains(t, text, "New DB size:  2.5 MB")
	assert.NotContains(t, text, "Skipped")

	report.Stats.Skipped = 3
	report.Verification = &VerifyResult{Checks: 4, Problems: []string{"bad"}}
	out.Reset()
	report.Print(&out)
	text = out.String()
	assert.Contains(t, text, "Skipped:      3")
	assert.Contains(t, text, "1 of 4 checks failed")
	assert.True(t, strings.HasSuffix(text, "    - bad\n"))
}
