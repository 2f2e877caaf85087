package persistence_test

import (
	"context"
	"errors"
	"testing"

	"github.com/example/tivoli-tools/internal/persistence"
	"github.com/example/tivoli-tools/internal/testfixtures"
)

func TestImageBatch(t *testing.T) {
	t.Parallel()

	batch := persistence.ImageBatch{
		Images:      []persistence.Image{{UUID: "i-1"}, {UUID: "i-2"}},
		ImageModels: []persistence.ImageModel{{ImageUUID: "i-1", ModelUUID: "m-1"}},
		ImageTags:   []persistence.ImageTag{{ImageUUID: "i-2", TagUUID: "t-1"}},
	}
	if batch.Len() != 2 {
		t.Fatalf("expected 2 images, got %d", batch.Len())
	}

	imagesCap := cap(batch.Images)
	batch.Reset()
	if batch.Len() != 0 || len(batch.ImageModels) != 0 || len(batch.ImageTags) != 0 {
		t.Fatalf("expected empty batch after reset, got %#v", batch)
	}
	if cap(batch.Images) != imagesCap {
		t.Fatalf("expected reset to keep capacity %d, got %d", imagesCap, cap(batch.Images))
	}
}

func TestCatalogRepository(t *testing.T) {
	t.Parallel()

	t.Run("writes dimensions before links and reads them back", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		harness := testfixtures.NewCatalogHarness(t)
		defer harness.Close()

		var writer persistence.CatalogWriter = harness.Catalog
		var reader persistence.CatalogReader = harness.Catalog

		ids := testfixtures.NewIDGenerator("repo")
		exposure := persistence.TagGroup{UUID: ids.Next(), Name: "exposure"}
		feature := persistence.TagGroup{UUID: ids.Next(), Name: "feature"}
		long := persistence.Tag{UUID: ids.Next(), Name: "long", TagGroupUUID: exposure.UUID}
		alice := persistence.Model{UUID: ids.Next(), Name: "alice", Collection: "studio-a"}

		if err := writer.InsertDimensions(ctx, []persistence.TagGroup{exposure, feature}, []persistence.Tag{long}, []persistence.Model{alice}); err != nil {
			t.Fatalf("InsertDimensions failed: %v", err)
		}

		image := persistence.Image{UUID: ids.Next(), Path: "studio-a/shoot1/a.jpg", Collection: "studio-a", Gallery: "shoot1"}
		err := writer.InsertImageBatch(ctx, persistence.ImageBatch{
			Images:      []persistence.Image{image},
			ImageModels: []persistence.ImageModel{{ImageUUID: image.UUID, ModelUUID: alice.UUID}},
			ImageTags:   []persistence.ImageTag{{ImageUUID: image.UUID, TagUUID: long.UUID}},
		})
		if err != nil {
			t.Fatalf("InsertImageBatch failed: %v", err)
		}

		counts, err := reader.Counts(ctx)
		if err != nil {
			t.Fatalf("Counts failed: %v", err)
		}
		want := persistence.TableCounts{Images: 1, Models: 1, TagGroups: 2, Tags: 1, ImageModels: 1, ImageTags: 1}
		if counts != want {
			t.Fatalf("unexpected counts: got %#v want %#v", counts, want)
		}

		models, err := reader.Models(ctx)
		if err != nil {
			t.Fatalf("Models failed: %v", err)
		}
		if len(models) != 1 || models[0] != alice {
			t.Fatalf("unexpected models: %#v", models)
		}

		summaries, err := reader.Collections(ctx)
		if err != nil {
			t.Fatalf("Collections failed: %v", err)
		}
		if len(summaries) != 1 || summaries[0] != (persistence.CollectionSummary{Collection: "studio-a", Galleries: 1, Images: 1, Models: 1}) {
			t.Fatalf("unexpected collection summaries: %#v", summaries)
		}
	})

	t.Run("rejects links to unknown endpoints", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		harness := testfixtures.NewCatalogHarness(t)

		err := harness.Catalog.InsertImageBatch(ctx, persistence.ImageBatch{
			Images:    []persistence.Image{{UUID: "i-1", Path: "a.jpg", Collection: "c", Gallery: "g"}},
			ImageTags: []persistence.ImageTag{{ImageUUID: "i-1", TagUUID: "t-missing"}},
		})
		if !errors.Is(err, persistence.ErrForeignKey) {
			t.Fatalf("expected ErrForeignKey, got %v", err)
		}

		counts, err := harness.Catalog.Counts(ctx)
		if err != nil {
			t.Fatalf("Counts failed: %v", err)
		}
		if counts.Images != 0 {
			t.Fatalf("expected rolled back batch, found %d images", counts.Images)
		}
	})

	t.Run("rejects duplicate group names", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		harness := testfixtures.NewCatalogHarness(t)

		err := harness.Catalog.InsertTagGroups(ctx, []persistence.TagGroup{
			{UUID: "g-1", Name: "exposure"},
			{UUID: "g-2", Name: "exposure"},
		})
		if !errors.Is(err, persistence.ErrDuplicate) {
			t.Fatalf("expected ErrDuplicate, got %v", err)
		}
	})
}
