package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lgramweb/lgram-web/internal/config"
	"github.com/lgramweb/lgram-web/internal/database"
	"github.com/lgramweb/lgram-web/internal/stats"
)

// NewStatsCmd creates the stats command: audit statistics for one account.
func NewStatsCmd() *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show audit statistics for one account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" {
				return fmt.Errorf("--user is required")
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
			userRepo := database.NewUserRepository(db)
			user, err := userRepo.GetByUsername(ctx, username)
			if err != nil {
				return fmt.Errorf("find user: %w", err)
			}

			aggregator := stats.NewAggregator(
				userRepo,
				database.NewLoginLogRepository(db),
				database.NewActivityLogRepository(db),
				database.NewGeneratedTextRepository(db),
				nil,
			)
			result, err := aggregator.UserStatistics(ctx, user.ID)
			if err != nil {
				return fmt.Errorf("compute statistics: %w", err)
			}

			fmt.Printf("Statistics for %s:\n", user.Username)
			fmt.Printf("  Total logins:     %d\n", result.TotalLogins)
			fmt.Printf("  Total activities: %d\n", result.TotalActivities)
			fmt.Printf("  Text generations: %d\n", result.TextGenerations)
			if result.LastLogin != nil {
				fmt.Printf("  Last login:       %s\n", result.LastLogin.Format("2006-01-02 15:04:05"))
			} else {
				fmt.Printf("  Last login:       never\n")
			}
			if len(result.MostCommonActions) > 0 {
				fmt.Println("  Most common actions:")
				for _, ac := range result.MostCommonActions {
					fmt.Printf("    %-30s %d\n", ac.Action, ac.Count)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "user", "", "Username to report on (required)")
	return cmd
}
