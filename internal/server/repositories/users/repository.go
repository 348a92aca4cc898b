// Package users declares the repository contract for user accounts and their
// friend lists, with a PostgreSQL implementation.
package users

import (
	"context"

	"github.com/dmitrijs2005/gotodo/internal/server/models"
)

// Repository defines persistence operations on users.
type Repository interface {
	// Create inserts user. A duplicate email yields common.ErrAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// GetBySession returns the user with the given id only if it holds a
	// session row with exactly this token and access marker.
	GetBySession(ctx context.Context, userID, token, access string) (*models.User, error)

	UpdateDescription(ctx context.Context, id, description string) (*models.User, error)

	// AddFriend appends email to the user's friends. An existing entry
	// yields common.ErrAlreadyExists.
	AddFriend(ctx context.Context, userID, email string) error
	ListFriends(ctx context.Context, userID string) ([]models.Friend, error)
}
