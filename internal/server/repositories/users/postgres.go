package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gotodo/internal/common"
	"github.com/dmitrijs2005/gotodo/internal/dbx"
	"github.com/dmitrijs2005/gotodo/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (id, email, password_hash, description)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query, user.ID, user.Email, user.PasswordHash, user.Description).Scan(&user.CreatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `
		SELECT id, email, password_hash, description, created_at
		FROM users
		WHERE id = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, email, password_hash, description, created_at
		FROM users
		WHERE email = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresRepository) GetBySession(ctx context.Context, userID, token, access string) (*models.User, error) {
	query := `
		SELECT u.id, u.email, u.password_hash, u.description, u.created_at
		FROM users u
		WHERE u.id = $1
		  AND EXISTS (
			SELECT 1 FROM user_tokens t
			WHERE t.user_id = u.id AND t.token = $2 AND t.access = $3
		  )
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, userID, token, access))
}

func (r *PostgresRepository) UpdateDescription(ctx context.Context, id, description string) (*models.User, error) {
	query := `
		UPDATE users SET description = $2
		WHERE id = $1
		RETURNING id, email, password_hash, description, created_at
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id, description))
}

func (r *PostgresRepository) AddFriend(ctx context.Context, userID, email string) error {
	query := `
		INSERT INTO user_friends (user_id, email)
		VALUES ($1, $2)
	`
	if _, err := r.db.ExecContext(ctx, query, userID, email); err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListFriends(ctx context.Context, userID string) ([]models.Friend, error) {
	query := `
		SELECT email, created_at
		FROM user_friends
		WHERE user_id = $1
		ORDER BY created_at, email
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	friends := make([]models.Friend, 0)
	for rows.Next() {
		var f models.Friend
		if err := rows.Scan(&f.Email, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		friends = append(friends, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return friends, nil
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	if err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Description, &user.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}
