package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/example/tivoli-tools/internal/config"
	"github.com/example/tivoli-tools/internal/logging"
	"github.com/example/tivoli-tools/internal/migrate"
)

func newMigrateCommand(a *app) *cobra.Command {
	var skipVerify bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migrate the legacy tag table into a fresh catalog",
		Long: `Reads the flat image_tags table of the legacy database and writes images,
models, tag groups, tags and their links into a new catalog database. The
destination is recreated from scratch; the source is opened read-only.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.load(cmd, map[string]string{
				config.KeySourceDB:  "source",
				config.KeyDestDB:    "dest",
				config.KeyBatchSize: "batch-size",
			})
			if err != nil {
				return err
			}
			return a.runMigrate(cmd, cfg, !skipVerify)
		},
	}

	f := cmd.Flags()
	f.String("source", "", "legacy database to read")
	f.String("dest", "", "catalog database to create")
	f.Int("batch-size", 0, "images committed per transaction")
	f.BoolVar(&skipVerify, "skip-verify", false, "skip post-migration verification")
	return cmd
}

func (a *app) runMigrate(cmd *cobra.Command, cfg config.Config, verify bool) error {
	ctx := cmd.Context()
	report, err := migrate.Run(ctx, migrate.Options{
		SourcePath: cfg.SourceDB,
		DestPath:   cfg.DestDB,
		BatchSize:  cfg.BatchSize,
		Verify:     verify,
		Out:        a.stdout,
		Logger:     logging.FromContext(ctx),
	})

	var verifyErr *migrate.VerifyError
	if err == nil || errors.As(err, &verifyErr) {
		report.Print(a.stdout)
	}
	return err
}
