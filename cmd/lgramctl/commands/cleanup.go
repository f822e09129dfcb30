package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lgramweb/lgram-web/internal/config"
	"github.com/lgramweb/lgram-web/internal/database"
	"github.com/lgramweb/lgram-web/internal/retention"
	"github.com/lgramweb/lgram-web/internal/session"
)

// NewCleanupCmd creates the cleanup command: one retention sweep, optionally dry-run.
func NewCleanupCmd() *cobra.Command {
	var days int
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete expired sessions and stale anonymous audit data",
		Long:  "Runs one retention sweep: expired sessions plus anonymous generated texts and activity logs older than the given age. Account-owned records are never touched.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if days <= 0 {
				return fmt.Errorf("--days must be positive")
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

			store, err := session.NewStore(cfg.RedisURL, cfg.SessionTTL, zap.NewNop())
			if err != nil {
				return fmt.Errorf("connect to redis: %w", err)
			}
			defer func() {
				_ = store.Close()
			}()

			sweeper := retention.NewSweeper(
				store,
				database.NewGeneratedTextRepository(db),
				database.NewActivityLogRepository(db),
				zap.NewNop(),
			)

			maxAge := time.Duration(days) * 24 * time.Hour
			result, err := sweeper.Sweep(context.Background(), maxAge, dryRun)
			if err != nil {
				return fmt.Errorf("sweep: %w", err)
			}

			if dryRun {
				fmt.Println("Dry run; nothing was deleted.")
			}
			fmt.Printf("Expired sessions:        %d\n", result.SessionsDeleted)
			fmt.Printf("Anonymous texts:         %d\n", result.TextsDeleted)
			fmt.Printf("Anonymous activity logs: %d\n", result.ActivityLogsDeleted)
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 30, "Delete anonymous data older than this many days")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would be deleted without deleting")
	return cmd
}
