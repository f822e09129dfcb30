package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lgramweb/lgram-web/internal/config"
	"github.com/lgramweb/lgram-web/internal/database"
	"github.com/lgramweb/lgram-web/internal/session"
	"github.com/lgramweb/lgram-web/internal/stats"
)

// NewSummaryCmd creates the summary command: the system-wide audit summary.
func NewSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show the system-wide audit summary",
		RunE: func(cmd *cobra.Command, args []string) error {
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

			aggregator := stats.NewAggregator(
				database.NewUserRepository(db),
				database.NewLoginLogRepository(db),
				database.NewActivityLogRepository(db),
				database.NewGeneratedTextRepository(db),
				store,
			)
			summary, err := aggregator.SystemSummary(context.Background(), time.Now())
			if err != nil {
				return fmt.Errorf("compute summary: %w", err)
			}

			fmt.Println("System summary:")
			fmt.Printf("  Total users:             %d\n", summary.TotalUsers)
			fmt.Printf("  Total successful logins: %d\n", summary.TotalSuccessfulLogins)
			fmt.Printf("  Total activities:        %d\n", summary.TotalActivities)
			fmt.Printf("  Total generated texts:   %d\n", summary.TotalGeneratedTexts)
			fmt.Printf("  Active sessions:         %d\n", summary.ActiveSessions)
			fmt.Printf("  Logins (last 24h):       %d\n", summary.RecentLogins)
			fmt.Printf("  Activities (last 24h):   %d\n", summary.RecentActivities)
			if len(summary.TopActiveUsers) > 0 {
				fmt.Println("  Most active users:")
				for _, u := range summary.TopActiveUsers {
					fmt.Printf("    %-30s %d\n", u.Username, u.Count)
				}
			}
			return nil
		},
	}
}
