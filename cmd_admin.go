package main

import (
	"context"
	"fmt"

	"qadashboard/internal/admin"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var bootstrapAdminCmd = &cobra.Command{
	Use:   "bootstrap-admin",
	Short: "Create the admin account from ADMIN_* settings, or reset its password",
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, cleanup, err := buildRepository(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("init repository: %w", err)
		}
		defer cleanup()

		return ensureAdmin(cmd.Context(), admin.NewManager(repo))
	},
}

func ensureAdmin(ctx context.Context, manager *admin.Manager) error {
	created, err := manager.Ensure(ctx, admin.Credentials{
		Username: cfg.Admin.Username,
		Email:    cfg.Admin.Email,
		Password: cfg.Admin.Password,
	})
	if err != nil {
		return err
	}

	if created {
		logger.Info("admin account created", zap.String("username", cfg.Admin.Username))
	} else {
		logger.Info("admin account password reset", zap.String("username", cfg.Admin.Username))
	}
	return nil
}
