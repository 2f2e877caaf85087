package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/example/tivoli-tools/internal/config"
	"github.com/example/tivoli-tools/internal/persistence/sqlite"
)

func newStatsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarise the contents of a catalog database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.load(cmd, map[string]string{
				config.KeyDestDB: "dest",
			})
			if err != nil {
				return err
			}
			return a.runStats(cmd, cfg)
		},
	}

	cmd.Flags().String("dest", "", "catalog database")
	return cmd
}

func (a *app) runStats(cmd *cobra.Command, cfg config.Config) error {
	ctx := cmd.Context()

	info, err := os.Stat(cfg.DestDB)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("catalog not found at %s", cfg.DestDB)
		}
		return err
	}

	db, err := sqlite.Open(sqlite.ExistingCatalogConfig(cfg.DestDB))
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer db.Close()
	catalog := sqlite.NewCatalog(db)

	counts, err := catalog.Counts(ctx)
	if err != nil {
		return err
	}
	collections, err := catalog.Collections(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "Catalog: %s (%s)\n\n", cfg.DestDB, humanize.Bytes(uint64(info.Size())))

	tw := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Collection\tGalleries\tImages\tModels\t")
	for _, c := range collections {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%d\t\n", c.Collection, c.Galleries, humanize.Comma(c.Images), c.Models)
	}
	fmt.Fprintf(tw, "TOTAL\t\t%s\t%s\t\n", humanize.Comma(counts.Images), humanize.Comma(counts.Models))
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "\nTag groups: %d, tags: %s\n", counts.TagGroups, humanize.Comma(counts.Tags))
	fmt.Fprintf(a.stdout, "Image-models: %s, image-tags: %s\n", humanize.Comma(counts.ImageModels), humanize.Comma(counts.ImageTags))
	return nil
}
