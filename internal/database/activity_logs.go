package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lgramweb/lgram-web/internal/models"
)

// ActivityLogRepository handles activity log database operations
type ActivityLogRepository struct {
	db *DB
}

// NewActivityLogRepository creates a new activity log repository
func NewActivityLogRepository(db *DB) *ActivityLogRepository {
	return &ActivityLogRepository{db: db}
}

// Create creates a new activity log entry
func (r *ActivityLogRepository) Create(ctx context.Context, entry *models.ActivityLog) error {
	query := `
		INSERT INTO activity_logs (id, user_id, session_key, action, description, ip_address, user_agent, timestamp, additional_data)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	var dataJSON []byte
	if entry.Data != nil {
		var err error
		dataJSON, err = json.Marshal(entry.Data)
		if err != nil {
			return fmt.Errorf("failed to marshal additional data: %w", err)
		}
	}

	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.UserID,
		entry.SessionKey,
		entry.Action,
		entry.Description,
		entry.IPAddress,
		entry.UserAgent,
		entry.Timestamp,
		dataJSON,
	)

	if err != nil {
		return fmt.Errorf("failed to create activity log: %w", err)
	}

	return nil
}

// CountByUser counts activity log entries for one user
func (r *ActivityLogRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM activity_logs WHERE user_id = $1`
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count activities: %w", err)
	}
	return count, nil
}

// CountByUserAndAction counts one user's entries of a given action kind
func (r *ActivityLogRepository) CountByUserAndAction(ctx context.Context, userID uuid.UUID, action models.ActionKind) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM activity_logs WHERE user_id = $1 AND action = $2`
	if err := r.db.QueryRowContext(ctx, query, userID, action).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count activities by action: %w", err)
	}
	return count, nil
}

// MostCommonActions groups one user's entries by action kind and returns the
// top entries by count descending, ties broken by action ascending.
func (r *ActivityLogRepository) MostCommonActions(ctx context.Context, userID uuid.UUID, limit int) ([]models.ActionCount, error) {
	query := `
		SELECT action, COUNT(*) AS count
		FROM activity_logs
		WHERE user_id = $1
		GROUP BY action
		ORDER BY count DESC, action ASC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query most common actions: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			_ = err
		}
	}()

	var counts []models.ActionCount
	for rows.Next() {
		var ac models.ActionCount
		if err := rows.Scan(&ac.Action, &ac.Count); err != nil {
			return nil, fmt.Errorf("failed to scan action count: %w", err)
		}
		counts = append(counts, ac)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating action counts: %w", err)
	}

	return counts, nil
}

// Count counts all activity log entries
func (r *ActivityLogRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM activity_logs`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count activities: %w", err)
	}
	return count, nil
}

// CountBetween counts activity log entries in the half-open window [since, until).
func (r *ActivityLogRepository) CountBetween(ctx context.Context, since, until time.Time) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM activity_logs WHERE timestamp >= $1 AND timestamp < $2`
	if err := r.db.QueryRowContext(ctx, query, since, until).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count recent activities: %w", err)
	}
	return count, nil
}

// TopActiveUsers ranks accounts by raw activity count, anonymous entries
// excluded, ties broken by user id ascending.
func (r *ActivityLogRepository) TopActiveUsers(ctx context.Context, limit int) ([]models.UserActivityCount, error) {
	query := `
		SELECT a.user_id, u.username, COUNT(*) AS count
		FROM activity_logs a
		JOIN users u ON u.id = a.user_id
		WHERE a.user_id IS NOT NULL
		GROUP BY a.user_id, u.username
		ORDER BY count DESC, a.user_id ASC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top active users: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			_ = err
		}
	}()

	var users []models.UserActivityCount
	for rows.Next() {
		var uc models.UserActivityCount
		if err := rows.Scan(&uc.UserID, &uc.Username, &uc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan user activity count: %w", err)
		}
		users = append(users, uc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user activity counts: %w", err)
	}

	return users, nil
}

// ListByUser returns one user's activity logs, most recent first. A limit of 0
// returns all entries.
func (r *ActivityLogRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.ActivityLog, error) {
	query := `
		SELECT id, user_id, session_key, action, description, ip_address, user_agent, timestamp, additional_data
		FROM activity_logs
		WHERE user_id = $1
		ORDER BY timestamp DESC
	`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity logs: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			_ = err
		}
	}()

	var entries []*models.ActivityLog
	for rows.Next() {
		entry := &models.ActivityLog{}
		var dataJSON []byte
		if err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.SessionKey,
			&entry.Action,
			&entry.Description,
			&entry.IPAddress,
			&entry.UserAgent,
			&entry.Timestamp,
			&dataJSON,
		); err != nil {
			return nil, fmt.Errorf("failed to scan activity log: %w", err)
		}
		if len(dataJSON) > 0 {
			if err := json.Unmarshal(dataJSON, &entry.Data); err != nil {
				return nil, fmt.Errorf("failed to unmarshal additional data: %w", err)
			}
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activity logs: %w", err)
	}

	return entries, nil
}

// CountAnonymousOlderThan counts anonymous entries older than the cutoff.
// Used by dry-run sweeps.
func (r *ActivityLogRepository) CountAnonymousOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM activity_logs WHERE user_id IS NULL AND timestamp < $1`
	if err := r.db.QueryRowContext(ctx, query, cutoff).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count old anonymous activities: %w", err)
	}
	return count, nil
}

// DeleteAnonymousOlderThan deletes anonymous entries older than the cutoff.
// Entries tied to an account are never touched by this path.
func (r *ActivityLogRepository) DeleteAnonymousOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	query := `DELETE FROM activity_logs WHERE user_id IS NULL AND timestamp < $1`

	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old anonymous activities: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return int(rowsAffected), nil
}
