package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lgramweb/lgram-web/internal/models"
)

// LoginLogRepository handles login log database operations
type LoginLogRepository struct {
	db *DB
}

// NewLoginLogRepository creates a new login log repository
func NewLoginLogRepository(db *DB) *LoginLogRepository {
	return &LoginLogRepository{db: db}
}

// Create creates a new login log entry
func (r *LoginLogRepository) Create(ctx context.Context, entry *models.LoginLog) error {
	query := `
		INSERT INTO login_logs (id, user_id, login_time, logout_time, ip_address, user_agent, session_key, successful)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.LoginTime.IsZero() {
		entry.LoginTime = time.Now()
	}

	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.UserID,
		entry.LoginTime,
		entry.LogoutTime,
		entry.IPAddress,
		entry.UserAgent,
		entry.SessionKey,
		entry.Successful,
	)

	if err != nil {
		return fmt.Errorf("failed to create login log: %w", err)
	}

	return nil
}

// LatestOpen returns the most recent successful login for the user that has
// no logout time stamped yet. Most recent by login_time is the deterministic
// tie-break under concurrent logouts.
func (r *LoginLogRepository) LatestOpen(ctx context.Context, userID uuid.UUID) (*models.LoginLog, error) {
	entry := &models.LoginLog{}
	var logoutTime sql.NullTime

	query := `
		SELECT id, user_id, login_time, logout_time, ip_address, user_agent, session_key, successful
		FROM login_logs
		WHERE user_id = $1 AND logout_time IS NULL AND successful = TRUE
		ORDER BY login_time DESC
		LIMIT 1
	`

	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&entry.ID,
		&entry.UserID,
		&entry.LoginTime,
		&logoutTime,
		&entry.IPAddress,
		&entry.UserAgent,
		&entry.SessionKey,
		&entry.Successful,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("open login for user %s: %w", userID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get open login: %w", err)
	}

	if logoutTime.Valid {
		entry.LogoutTime = &logoutTime.Time
	}

	return entry, nil
}

// StampLogout sets the logout time on a login log entry. The stamp is written
// at most once; an already-stamped entry is left untouched.
func (r *LoginLogRepository) StampLogout(ctx context.Context, id uuid.UUID, logoutTime time.Time) error {
	query := `
		UPDATE login_logs
		SET logout_time = $2
		WHERE id = $1 AND logout_time IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, id, logoutTime)
	if err != nil {
		return fmt.Errorf("failed to stamp logout: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("login log %s: %w", id, models.ErrNotFound)
	}

	return nil
}

// CountSuccessfulByUser counts successful logins for one user
func (r *LoginLogRepository) CountSuccessfulByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM login_logs WHERE user_id = $1 AND successful = TRUE`
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count logins: %w", err)
	}
	return count, nil
}

// LastLoginTime returns the most recent successful login time for the user,
// or nil if the user never logged in.
func (r *LoginLogRepository) LastLoginTime(ctx context.Context, userID uuid.UUID) (*time.Time, error) {
	var t time.Time
	query := `
		SELECT login_time FROM login_logs
		WHERE user_id = $1 AND successful = TRUE
		ORDER BY login_time DESC
		LIMIT 1
	`

	err := r.db.QueryRowContext(ctx, query, userID).Scan(&t)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last login time: %w", err)
	}

	return &t, nil
}

// CountSuccessful counts all successful logins
func (r *LoginLogRepository) CountSuccessful(ctx context.Context) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM login_logs WHERE successful = TRUE`
	if err := r.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count successful logins: %w", err)
	}
	return count, nil
}

// CountSuccessfulBetween counts successful logins in the half-open window
// [since, until).
func (r *LoginLogRepository) CountSuccessfulBetween(ctx context.Context, since, until time.Time) (int, error) {
	var count int
	query := `
		SELECT COUNT(*) FROM login_logs
		WHERE successful = TRUE AND login_time >= $1 AND login_time < $2
	`
	if err := r.db.QueryRowContext(ctx, query, since, until).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count recent logins: %w", err)
	}
	return count, nil
}

// ListByUser returns login logs for one user, most recent first. A limit of 0
// returns all entries.
func (r *LoginLogRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.LoginLog, error) {
	query := `
		SELECT id, user_id, login_time, logout_time, ip_address, user_agent, session_key, successful
		FROM login_logs
		WHERE user_id = $1
		ORDER BY login_time DESC
	`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list login logs: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			_ = err
		}
	}()

	var entries []*models.LoginLog
	for rows.Next() {
		entry := &models.LoginLog{}
		var logoutTime sql.NullTime
		if err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.LoginTime,
			&logoutTime,
			&entry.IPAddress,
			&entry.UserAgent,
			&entry.SessionKey,
			&entry.Successful,
		); err != nil {
			return nil, fmt.Errorf("failed to scan login log: %w", err)
		}
		if logoutTime.Valid {
			entry.LogoutTime = &logoutTime.Time
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating login logs: %w", err)
	}

	return entries, nil
}
