package todos

import (
	"context"

	"github.com/dmitrijs2005/gotodo/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, todo *models.Todo) (*models.Todo, error)
	GetByID(ctx context.Context, id string) (*models.Todo, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Todo, error)
	ListAll(ctx context.Context) ([]*models.Todo, error)
	// Update writes text, completed and completed_at of todo, but only when
	// its owner matches. ErrorNotFound otherwise.
	Update(ctx context.Context, todo *models.Todo) (*models.Todo, error)
	// Delete removes the todo if ownerID owns it and returns the removed row.
	Delete(ctx context.Context, id, ownerID string) (*models.Todo, error)
}
