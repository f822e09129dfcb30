package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lgramweb/lgram-web/internal/models"
)

// GeneratedTextRepository handles generated text database operations
type GeneratedTextRepository struct {
	db *DB
}

// NewGeneratedTextRepository creates a new generated text repository
func NewGeneratedTextRepository(db *DB) *GeneratedTextRepository {
	return &GeneratedTextRepository{db: db}
}

// Create creates a new generated text record
func (r *GeneratedTextRepository) Create(ctx context.Context, text *models.GeneratedText) error {
	query := `
		INSERT INTO generated_texts (id, user_id, session_key, input_text, generated_text, ip_address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	if text.ID == uuid.Nil {
		text.ID = uuid.New()
	}
	if text.CreatedAt.IsZero() {
		text.CreatedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, query,
		text.ID,
		text.UserID,
		text.SessionKey,
		text.InputText,
		text.OutputText,
		text.IPAddress,
		text.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create generated text: %w", err)
	}

	return nil
}

// ListByUser returns one user's generation history, most recent first. A limit
// of 0 returns all records.
func (r *GeneratedTextRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.GeneratedText, error) {
	query := `
		SELECT id, user_id, session_key, input_text, generated_text, ip_address, created_at
		FROM generated_texts
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	return r.list(ctx, query, args...)
}

// ListBySessionKey returns an anonymous session's generation history, most
// recent first.
func (r *GeneratedTextRepository) ListBySessionKey(ctx context.Context, sessionKey string, limit int) ([]*models.GeneratedText, error) {
	query := `
		SELECT id, user_id, session_key, input_text, generated_text, ip_address, created_at
		FROM generated_texts
		WHERE session_key = $1 AND user_id IS NULL
		ORDER BY created_at DESC
	`
	args := []any{sessionKey}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	return r.list(ctx, query, args...)
}

func (r *GeneratedTextRepository) list(ctx context.Context, query string, args ...any) ([]*models.GeneratedText, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list generated texts: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			_ = err
		}
	}()

	var texts []*models.GeneratedText
	for rows.Next() {
		text := &models.GeneratedText{}
		if err := rows.Scan(
			&text.ID,
			&text.UserID,
			&text.SessionKey,
			&text.InputText,
			&text.OutputText,
			&text.IPAddress,
			&text.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan generated text: %w", err)
		}
		texts = append(texts, text)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating generated texts: %w", err)
	}

	return texts, nil
}

// Count counts all generated text records
func (r *GeneratedTextRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM generated_texts`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count generated texts: %w", err)
	}
	return count, nil
}

// DeleteByUser deletes one user's entire generation history. This is the
// explicit account-scoped deletion path; retention never touches these rows.
func (r *GeneratedTextRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM generated_texts WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete user texts: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return int(rowsAffected), nil
}

// DeleteBySessionKey deletes an anonymous session's generation history
func (r *GeneratedTextRepository) DeleteBySessionKey(ctx context.Context, sessionKey string) (int, error) {
	query := `DELETE FROM generated_texts WHERE session_key = $1 AND user_id IS NULL`

	result, err := r.db.ExecContext(ctx, query, sessionKey)
	if err != nil {
		return 0, fmt.Errorf("failed to delete session texts: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return int(rowsAffected), nil
}

// CountAnonymousOlderThan counts anonymous records older than the cutoff.
// Used by dry-run sweeps.
func (r *GeneratedTextRepository) CountAnonymousOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM generated_texts WHERE user_id IS NULL AND created_at < $1`
	if err := r.db.QueryRowContext(ctx, query, cutoff).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count old anonymous texts: %w", err)
	}
	return count, nil
}

// DeleteAnonymousOlderThan deletes anonymous records older than the cutoff.
// Records tied to an account are never deleted by this path.
func (r *GeneratedTextRepository) DeleteAnonymousOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	query := `DELETE FROM generated_texts WHERE user_id IS NULL AND created_at < $1`

	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old anonymous texts: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return int(rowsAffected), nil
}
