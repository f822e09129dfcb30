// Package audit writes the durable login and activity records. Every write is
// synchronous: the record is persisted before the call returns, and storage
// failures propagate to the caller rather than being swallowed.
package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lgramweb/lgram-web/internal/database"
	"github.com/lgramweb/lgram-web/internal/models"
)

// Log appends login attempts, typed actions and generated artifacts to the
// durable record store.
type Log struct {
	loginLogs    database.LoginLogRepositoryInterface
	activityLogs database.ActivityLogRepositoryInterface
	texts        database.GeneratedTextRepositoryInterface
	logger       *zap.Logger
}

// NewLog creates an audit log over the given repositories
func NewLog(
	loginLogs database.LoginLogRepositoryInterface,
	activityLogs database.ActivityLogRepositoryInterface,
	texts database.GeneratedTextRepositoryInterface,
	logger *zap.Logger,
) *Log {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Log{
		loginLogs:    loginLogs,
		activityLogs: activityLogs,
		texts:        texts,
		logger:       logger,
	}
}

// RecordLoginAttempt creates a login log entry for every authentication
// attempt. Successful attempts also get a companion login activity entry.
func (l *Log) RecordLoginAttempt(ctx context.Context, user *models.User, ip, userAgent, sessionKey string, successful bool) (*models.LoginLog, error) {
	entry := &models.LoginLog{
		ID:         uuid.New(),
		UserID:     user.ID,
		LoginTime:  time.Now(),
		IPAddress:  ip,
		UserAgent:  userAgent,
		SessionKey: sessionKey,
		Successful: successful,
	}

	if err := l.loginLogs.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to record login attempt: %w", err)
	}

	if successful {
		if _, err := l.RecordActivity(ctx, user, sessionKey, models.ActionLogin,
			"User successfully logged in", ip, userAgent, nil); err != nil {
			return nil, err
		}
	}

	return entry, nil
}

// RecordLogout stamps the logout time on the user's most recent open login
// entry. A missing open entry is a no-op, not an error; the logout activity
// entry is appended either way.
func (l *Log) RecordLogout(ctx context.Context, user *models.User, ip, userAgent, sessionKey string) error {
	open, err := l.loginLogs.LatestOpen(ctx, user.ID)
	switch {
	case errors.Is(err, models.ErrNotFound):
		l.logger.Debug("logout_without_open_login",
			zap.String("user_id", user.ID.String()),
		)
	case err != nil:
		return fmt.Errorf("failed to find open login: %w", err)
	default:
		err = l.loginLogs.StampLogout(ctx, open.ID, time.Now())
		if err != nil && !errors.Is(err, models.ErrNotFound) {
			return fmt.Errorf("failed to stamp logout: %w", err)
		}
		// NotFound here means a concurrent logout already stamped the entry;
		// the later write loses and that is fine.
	}

	_, err = l.RecordActivity(ctx, user, sessionKey, models.ActionLogout,
		"User logged out", ip, userAgent, nil)
	return err
}

// RecordActivity creates exactly one activity log entry. user may be nil for
// anonymous actors; the entry is then keyed by session key for correlation.
// Unknown action kinds are wrapped as custom kinds at this boundary.
func (l *Log) RecordActivity(ctx context.Context, user *models.User, sessionKey string, kind models.ActionKind, description, ip, userAgent string, data models.ActivityData) (*models.ActivityLog, error) {
	if !kind.Valid() {
		kind = models.OtherAction(string(kind))
	}

	entry := &models.ActivityLog{
		ID:          uuid.New(),
		SessionKey:  sessionKey,
		Action:      kind,
		Description: description,
		IPAddress:   ip,
		UserAgent:   userAgent,
		Timestamp:   time.Now(),
		Data:        data,
	}
	if user != nil {
		userID := user.ID
		entry.UserID = &userID
	}

	if err := l.activityLogs.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to record activity: %w", err)
	}

	return entry, nil
}

// RecordGeneration persists a generated artifact and appends a generate_text
// activity entry carrying lengths and bounded previews, never the full text.
func (l *Log) RecordGeneration(ctx context.Context, user *models.User, sessionKey, input, output, ip, userAgent string) (*models.GeneratedText, error) {
	text := &models.GeneratedText{
		ID:         uuid.New(),
		SessionKey: sessionKey,
		InputText:  input,
		OutputText: output,
		IPAddress:  ip,
		CreatedAt:  time.Now(),
	}
	if user != nil {
		userID := user.ID
		text.UserID = &userID
	}

	if err := l.texts.Create(ctx, text); err != nil {
		return nil, fmt.Errorf("failed to record generated text: %w", err)
	}

	description := fmt.Sprintf("Generated text for input: %q", previewForDescription(input))
	if _, err := l.RecordActivity(ctx, user, sessionKey, models.ActionGenerateText,
		description, ip, userAgent, models.GenerationData(input, output)); err != nil {
		return nil, err
	}

	return text, nil
}

// RecordGenerationFailure logs a failed generation attempt as a generate_text
// activity entry. The upstream failure never blocks the audit path, but a
// storage failure here still propagates.
func (l *Log) RecordGenerationFailure(ctx context.Context, user *models.User, sessionKey, input string, genErr error, ip, userAgent string) error {
	data := models.ActivityData{
		"failed":        true,
		"error":         genErr.Error(),
		"input_preview": models.Preview(input),
	}
	description := fmt.Sprintf("Text generation failed for input: %q", previewForDescription(input))
	_, err := l.RecordActivity(ctx, user, sessionKey, models.ActionGenerateText,
		description, ip, userAgent, data)
	return err
}

// previewForDescription bounds the input echoed into the free-text description.
func previewForDescription(input string) string {
	const limit = 50
	if len(input) <= limit {
		return input
	}
	return input[:limit] + "..."
}
