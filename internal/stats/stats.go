// Package stats derives per-user and system-wide summaries from the audit
// log. Every query is read-only and computable from the durable records
// alone; session state is consulted only for the live session count.
package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lgramweb/lgram-web/internal/database"
	"github.com/lgramweb/lgram-web/internal/models"
)

const (
	// TopActionsLimit bounds the most-common-actions list per user.
	TopActionsLimit = 5
	// TopUsersLimit bounds the top-active-users list in the system summary.
	TopUsersLimit = 5
	// RecentWindow is the half-open window [now-24h, now) for recent counts.
	RecentWindow = 24 * time.Hour
)

// SessionCounter reports the number of live sessions. Satisfied by the
// session store; nil disables the count.
type SessionCounter interface {
	ActiveCount(ctx context.Context) (int, error)
}

// Aggregator computes statistics from the audit repositories
type Aggregator struct {
	users        database.UserRepositoryInterface
	loginLogs    database.LoginLogRepositoryInterface
	activityLogs database.ActivityLogRepositoryInterface
	texts        database.GeneratedTextRepositoryInterface
	sessions     SessionCounter
}

// NewAggregator creates a statistics aggregator
func NewAggregator(
	users database.UserRepositoryInterface,
	loginLogs database.LoginLogRepositoryInterface,
	activityLogs database.ActivityLogRepositoryInterface,
	texts database.GeneratedTextRepositoryInterface,
	sessions SessionCounter,
) *Aggregator {
	return &Aggregator{
		users:        users,
		loginLogs:    loginLogs,
		activityLogs: activityLogs,
		texts:        texts,
		sessions:     sessions,
	}
}

// UserStatistics summarizes one account's audit history. An account with no
// records yields all-zero counts and a nil last login, not an error.
func (a *Aggregator) UserStatistics(ctx context.Context, userID uuid.UUID) (*models.UserStatistics, error) {
	totalLogins, err := a.loginLogs.CountSuccessfulByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count user logins: %w", err)
	}

	totalActivities, err := a.activityLogs.CountByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count user activities: %w", err)
	}

	textGenerations, err := a.activityLogs.CountByUserAndAction(ctx, userID, models.ActionGenerateText)
	if err != nil {
		return nil, fmt.Errorf("failed to count text generations: %w", err)
	}

	lastLogin, err := a.loginLogs.LastLoginTime(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get last login: %w", err)
	}

	mostCommon, err := a.activityLogs.MostCommonActions(ctx, userID, TopActionsLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get most common actions: %w", err)
	}

	return &models.UserStatistics{
		TotalLogins:       totalLogins,
		TotalActivities:   totalActivities,
		TextGenerations:   textGenerations,
		LastLogin:         lastLogin,
		MostCommonActions: mostCommon,
	}, nil
}

// SystemSummary computes the system-wide summary as of now. Recent windows
// cover [now-24h, now), half-open.
func (a *Aggregator) SystemSummary(ctx context.Context, now time.Time) (*models.SystemSummary, error) {
	totalUsers, err := a.users.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	totalLogins, err := a.loginLogs.CountSuccessful(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count logins: %w", err)
	}

	totalActivities, err := a.activityLogs.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count activities: %w", err)
	}

	totalTexts, err := a.texts.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count generated texts: %w", err)
	}

	since := now.Add(-RecentWindow)
	recentLogins, err := a.loginLogs.CountSuccessfulBetween(ctx, since, now)
	if err != nil {
		return nil, fmt.Errorf("failed to count recent logins: %w", err)
	}

	recentActivities, err := a.activityLogs.CountBetween(ctx, since, now)
	if err != nil {
		return nil, fmt.Errorf("failed to count recent activities: %w", err)
	}

	topUsers, err := a.activityLogs.TopActiveUsers(ctx, TopUsersLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to rank active users: %w", err)
	}

	summary := &models.SystemSummary{
		TotalUsers:            totalUsers,
		TotalSuccessfulLogins: totalLogins,
		TotalActivities:       totalActivities,
		TotalGeneratedTexts:   totalTexts,
		RecentLogins:          recentLogins,
		RecentActivities:      recentActivities,
		TopActiveUsers:        topUsers,
	}

	if a.sessions != nil {
		active, err := a.sessions.ActiveCount(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to count active sessions: %w", err)
		}
		summary.ActiveSessions = active
	}

	return summary, nil
}
