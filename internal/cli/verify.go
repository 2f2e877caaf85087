package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/example/tivoli-tools/internal/config"
	"github.com/example/tivoli-tools/internal/logging"
	"github.com/example/tivoli-tools/internal/migrate"
)

func newVerifyCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check a migrated catalog against its legacy database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.load(cmd, map[string]string{
				config.KeySourceDB: "source",
				config.KeyDestDB:   "dest",
			})
			if err != nil {
				return err
			}
			return a.runVerify(cmd, cfg)
		},
	}

	f := cmd.Flags()
	f.String("source", "", "legacy database")
	f.String("dest", "", "catalog database")
	return cmd
}

func (a *app) runVerify(cmd *cobra.Command, cfg config.Config) error {
	ctx := cmd.Context()
	result, err := migrate.VerifyFiles(ctx, cfg.SourceDB, cfg.DestDB)
	if err != nil {
		return err
	}

	c := result.Counts
	fmt.Fprintf(a.stdout, "Images:       %s\n", humanize.Comma(c.Images))
	fmt.Fprintf(a.stdout, "Models:       %s\n", humanize.Comma(c.Models))
	fmt.Fprintf(a.stdout, "Tags:         %s in %d groups\n", humanize.Comma(c.Tags), c.TagGroups)
	fmt.Fprintf(a.stdout, "Image-models: %s\n", humanize.Comma(c.ImageModels))
	fmt.Fprintf(a.stdout, "Image-tags:   %s\n", humanize.Comma(c.ImageTags))

	if !result.OK() {
		for _, p := range result.Problems {
			fmt.Fprintf(a.stdout, "FAIL %s\n", p)
		}
		logging.FromContext(ctx).Warn("verification failed", "problems", len(result.Problems), "checks", result.Checks)
		return result.Err()
	}
	fmt.Fprintf(a.stdout, "Verification passed! (%d checks)\n", result.Checks)
	return nil
}
