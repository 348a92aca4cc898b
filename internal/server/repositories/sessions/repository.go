package sessions

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gotodo/internal/server/models"
)

// Repository stores the per-user list of valid session tokens.
type Repository interface {
	Create(ctx context.Context, userID string, token models.SessionToken) error
	Delete(ctx context.Context, userID, token string) error
	DeleteExpired(ctx context.Context, userID string, now time.Time) error
	// List returns the sessions of a user in issue order. Request handling
	// never calls it; it backs inspection of a user's sessions.
	List(ctx context.Context, userID string) ([]models.SessionToken, error)
}
