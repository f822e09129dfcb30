package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lgramweb/lgram-web/internal/models"
)

// UserRepositoryInterface defines the interface for user repository operations.
// Interfaces here enable better testability by allowing mock implementations.
type UserRepositoryInterface interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Count(ctx context.Context) (int, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}

// LoginLogRepositoryInterface defines the interface for login log repository operations
type LoginLogRepositoryInterface interface {
	Create(ctx context.Context, entry *models.LoginLog) error
	LatestOpen(ctx context.Context, userID uuid.UUID) (*models.LoginLog, error)
	StampLogout(ctx context.Context, id uuid.UUID, logoutTime time.Time) error
	CountSuccessfulByUser(ctx context.Context, userID uuid.UUID) (int, error)
	LastLoginTime(ctx context.Context, userID uuid.UUID) (*time.Time, error)
	CountSuccessful(ctx context.Context) (int, error)
	CountSuccessfulBetween(ctx context.Context, since, until time.Time) (int, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.LoginLog, error)
}

// ActivityLogRepositoryInterface defines the interface for activity log repository operations
type ActivityLogRepositoryInterface interface {
	Create(ctx context.Context, entry *models.ActivityLog) error
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)
	CountByUserAndAction(ctx context.Context, userID uuid.UUID, action models.ActionKind) (int, error)
	MostCommonActions(ctx context.Context, userID uuid.UUID, limit int) ([]models.ActionCount, error)
	Count(ctx context.Context) (int, error)
	CountBetween(ctx context.Context, since, until time.Time) (int, error)
	TopActiveUsers(ctx context.Context, limit int) ([]models.UserActivityCount, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.ActivityLog, error)
	CountAnonymousOlderThan(ctx context.Context, cutoff time.Time) (int, error)
	DeleteAnonymousOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}

// GeneratedTextRepositoryInterface defines the interface for generated text repository operations
type GeneratedTextRepositoryInterface interface {
	Create(ctx context.Context, text *models.GeneratedText) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.GeneratedText, error)
	ListBySessionKey(ctx context.Context, sessionKey string, limit int) ([]*models.GeneratedText, error)
	Count(ctx context.Context) (int, error)
	DeleteByUser(ctx context.Context, userID uuid.UUID) (int, error)
	DeleteBySessionKey(ctx context.Context, sessionKey string) (int, error)
	CountAnonymousOlderThan(ctx context.Context, cutoff time.Time) (int, error)
	DeleteAnonymousOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}

// Ensure concrete types implement the interfaces
var (
	_ UserRepositoryInterface          = (*UserRepository)(nil)
	_ LoginLogRepositoryInterface      = (*LoginLogRepository)(nil)
	_ ActivityLogRepositoryInterface   = (*ActivityLogRepository)(nil)
	_ GeneratedTextRepositoryInterface = (*GeneratedTextRepository)(nil)
)
