// Package sessions provides a PostgreSQL-backed repository for the session
// tokens a user currently holds.
package sessions

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gotodo/internal/dbx"
	"github.com/dmitrijs2005/gotodo/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create appends a token row for userID.
func (r *PostgresRepository) Create(ctx context.Context, userID string, token models.SessionToken) error {
	query := `
		INSERT INTO user_tokens (user_id, access, token, expires_at)
		VALUES ($1, $2, $3, $4)
	`
	var expires sql.NullTime
	if token.ExpiresAt != nil {
		expires = sql.NullTime{Time: *token.ExpiresAt, Valid: true}
	}
	if _, err := r.db.ExecContext(ctx, query, userID, token.Access, token.Token, expires); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Delete removes the row holding exactly this token. Deleting a token that
// is not present is not an error.
func (r *PostgresRepository) Delete(ctx context.Context, userID, token string) error {
	query := `
		DELETE FROM user_tokens
		WHERE user_id = $1 AND token = $2
	`
	if _, err := r.db.ExecContext(ctx, query, userID, token); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// DeleteExpired drops the user's tokens whose expiry is before now.
func (r *PostgresRepository) DeleteExpired(ctx context.Context, userID string, now time.Time) error {
	query := `
		DELETE FROM user_tokens
		WHERE user_id = $1 AND expires_at IS NOT NULL AND expires_at < $2
	`
	if _, err := r.db.ExecContext(ctx, query, userID, now); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// List returns the user's tokens in insertion order.
func (r *PostgresRepository) List(ctx context.Context, userID string) ([]models.SessionToken, error) {
	query := `
		SELECT access, token, expires_at, created_at
		FROM user_tokens
		WHERE user_id = $1
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	tokens := make([]models.SessionToken, 0)
	for rows.Next() {
		var (
			t       models.SessionToken
			expires sql.NullTime
		)
		if err := rows.Scan(&t.Access, &t.Token, &expires, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		t.ExpiresAt = dbx.TimePtr(expires)
		tokens = append(tokens, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return tokens, nil
}
