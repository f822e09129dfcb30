package models

import (
	"time"

	"github.com/google/uuid"
)

// ActionCount pairs an action kind with how often it occurred.
type ActionCount struct {
	Action ActionKind `json:"action"`
	Count  int        `json:"count"`
}

// UserStatistics summarizes one account's audit history.
type UserStatistics struct {
	TotalLogins       int           `json:"total_logins"`
	TotalActivities   int           `json:"total_activities"`
	TextGenerations   int           `json:"text_generations"`
	LastLogin         *time.Time    `json:"last_login,omitempty"`
	MostCommonActions []ActionCount `json:"most_common_actions"`
}

// UserActivityCount ranks one account by raw activity count.
type UserActivityCount struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	Count    int       `json:"count"`
}

// SystemSummary is the system-wide audit summary. Recent windows cover
// [now-24h, now).
type SystemSummary struct {
	TotalUsers            int                 `json:"total_users"`
	TotalSuccessfulLogins int                 `json:"total_successful_logins"`
	TotalActivities       int                 `json:"total_activities"`
	TotalGeneratedTexts   int                 `json:"total_generated_texts"`
	ActiveSessions        int                 `json:"active_sessions"`
	RecentLogins          int                 `json:"recent_logins"`
	RecentActivities      int                 `json:"recent_activities"`
	TopActiveUsers        []UserActivityCount `json:"top_active_users"`
}
