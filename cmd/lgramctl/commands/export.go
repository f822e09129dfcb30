package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lgramweb/lgram-web/internal/config"
	"github.com/lgramweb/lgram-web/internal/database"
	"github.com/lgramweb/lgram-web/internal/export"
)

// NewExportCmd creates the export command: one account's data as JSON on stdout.
func NewExportCmd() *cobra.Command {
	var username string
	var limit int
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export one account's data as JSON",
		Long:  "Writes the account's profile, generation history, activity history and login history to stdout as a single JSON document.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" {
				return fmt.Errorf("--user is required")
			}
			if limit < 0 {
				return fmt.Errorf("--limit must not be negative")
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			db, err := database.New(cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			defer func() {
				_ = db.Close()
			}()

			ctx := context.Background()
			user, err := database.NewUserRepository(db).GetByUsername(ctx, username)
			if err != nil {
				return fmt.Errorf("find user: %w", err)
			}

			exporter := export.NewExporter(
				database.NewLoginLogRepository(db),
				database.NewActivityLogRepository(db),
				database.NewGeneratedTextRepository(db),
			)
			doc, err := exporter.Build(ctx, user, limit)
			if err != nil {
				return fmt.Errorf("build export: %w", err)
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(doc); err != nil {
				return fmt.Errorf("encode export: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "user", "", "Username to export (required)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Bound each history to its most recent N entries (0 = all)")
	return cmd
}
