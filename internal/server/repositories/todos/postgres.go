// Package todos provides PostgreSQL-backed persistence for to-do items.
package todos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gotodo/internal/common"
	"github.com/dmitrijs2005/gotodo/internal/dbx"
	"github.com/dmitrijs2005/gotodo/internal/server/models"
)

// PostgresRepository implements todo storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const todoColumns = `id, owner_id, text, completed, completed_at, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTodo(row rowScanner) (*models.Todo, error) {
	var (
		t           models.Todo
		completedAt sql.NullTime
	)
	if err := row.Scan(&t.ID, &t.OwnerID, &t.Text, &t.Completed, &completedAt, &t.CreatedAt); err != nil {
		return nil, err
	}
	t.CompletedAt = dbx.TimePtr(completedAt)
	return &t, nil
}

func (r *PostgresRepository) queryOne(ctx context.Context, query string, args ...any) (*models.Todo, error) {
	t, err := scanTodo(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) queryMany(ctx context.Context, query string, args ...any) ([]*models.Todo, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Todo, 0)
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

// Create inserts todo. completed_at is stored as given.
func (r *PostgresRepository) Create(ctx context.Context, todo *models.Todo) (*models.Todo, error) {
	query := `
		INSERT INTO todos (id, owner_id, text, completed, completed_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + todoColumns
	return r.queryOne(ctx, query, todo.ID, todo.OwnerID, todo.Text, todo.Completed, todo.CompletedAt)
}

// GetByID returns common.ErrorNotFound when no todo has this id.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Todo, error) {
	query := `SELECT ` + todoColumns + ` FROM todos WHERE id = $1`
	return r.queryOne(ctx, query, id)
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Todo, error) {
	query := `SELECT ` + todoColumns + ` FROM todos WHERE owner_id = $1 ORDER BY created_at, id`
	return r.queryMany(ctx, query, ownerID)
}

func (r *PostgresRepository) ListAll(ctx context.Context) ([]*models.Todo, error) {
	query := `SELECT ` + todoColumns + ` FROM todos ORDER BY created_at, id`
	return r.queryMany(ctx, query)
}

func (r *PostgresRepository) Update(ctx context.Context, todo *models.Todo) (*models.Todo, error) {
	query := `
		UPDATE todos SET text = $3, completed = $4, completed_at = $5
		WHERE id = $1 AND owner_id = $2
		RETURNING ` + todoColumns
	return r.queryOne(ctx, query, todo.ID, todo.OwnerID, todo.Text, todo.Completed, todo.CompletedAt)
}

func (r *PostgresRepository) Delete(ctx context.Context, id, ownerID string) (*models.Todo, error) {
	query := `
		DELETE FROM todos
		WHERE id = $1 AND owner_id = $2
		RETURNING ` + todoColumns
	return r.queryOne(ctx, query, id, ownerID)
}
