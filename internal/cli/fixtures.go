package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/tivoli-tools/internal/config"
	"github.com/example/tivoli-tools/internal/fixtures"
	"github.com/example/tivoli-tools/internal/logging"
)

func newFixturesCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fixtures",
		Short: "Generate placeholder galleries and a catalog database",
		Long: `Renders a labelled placeholder JPEG for every image of the built-in sample
catalog and writes a fresh catalog database describing them. Any existing
database at --db is replaced.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.load(cmd, map[string]string{
				config.KeyGalleriesDir: "galleries-dir",
				config.KeyDestDB:       "db",
				config.KeyLegacyDB:     "legacy",
				config.KeyJPEGQuality:  "quality",
			})
			if err != nil {
				return err
			}
			return a.runFixtures(cmd, cfg)
		},
	}

	f := cmd.Flags()
	f.String("galleries-dir", "", "directory receiving the rendered images")
	f.String("db", "", "catalog database to create")
	f.String("legacy", "", "also write a flat legacy database to this path")
	f.Int("quality", 0, "JPEG quality (1-100)")
	return cmd
}

func (a *app) runFixtures(cmd *cobra.Command, cfg config.Config) error {
	ctx := cmd.Context()
	fonts := fixtures.LoadFonts(cfg.FontPaths)
	logging.FromContext(ctx).Debug("fonts loaded", "source", fonts.Source)

	gen := fixtures.NewGenerator(fixtures.Options{
		GalleriesDir: cfg.GalleriesDir,
		DBPath:       cfg.DestDB,
		LegacyPath:   cfg.LegacyDB,
		Renderer:     fixtures.NewPlaceholderRenderer(fonts, cfg.JPEGQuality),
		Out:          a.stdout,
	})

	result, err := gen.Run(ctx)
	if err != nil {
		return err
	}
	result.Print(a.stdout)
	return nil
}
