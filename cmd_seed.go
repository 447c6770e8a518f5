package main

import (
	"fmt"
	"os"

	"qadashboard/internal/seed"
	"qadashboard/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load developers and requirements from a YAML fixtures file",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(seedFile)
		if err != nil {
			return fmt.Errorf("open fixtures: %w", err)
		}
		defer f.Close()

		fixtures, err := seed.Load(f)
		if err != nil {
			return err
		}

		repo, cleanup, err := buildRepository(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("init repository: %w", err)
		}
		defer cleanup()

		res, err := seed.Apply(cmd.Context(), service.New(repo), fixtures, logger)
		if err != nil {
			return err
		}

		logger.Info("fixtures applied",
			zap.String("file", seedFile),
			zap.Int("developers_created", res.DevelopersCreated),
			zap.Int("developers_existing", res.DevelopersExisting),
			zap.Int("requirements_created", res.RequirementsCreated),
			zap.Int("requirements_skipped", res.RequirementsSkipped),
		)
		return nil
	},
}
