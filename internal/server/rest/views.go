package rest

import (
	"time"

	"github.com/dmitrijs2005/gotodo/internal/server/models"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type descriptionRequest struct {
	Description string `json:"description"`
}

type friendRequest struct {
	Email string `json:"email"`
}

// createTodoRequest deliberately has no owner field.
type createTodoRequest struct {
	Text string `json:"text"`
}

type authResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type friendView struct {
	Email string `json:"email"`
}

// userView is the public projection of a user: no password hash, no tokens.
type userView struct {
	ID          string       `json:"id"`
	Email       string       `json:"email"`
	Description string       `json:"description"`
	Friends     []friendView `json:"friends"`
}

type todoView struct {
	ID          string     `json:"id"`
	Text        string     `json:"text"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt"`
	Owner       string     `json:"owner"`
	CreatedAt   time.Time  `json:"createdAt"`
}

func newUserView(u *models.User) userView {
	friends := make([]friendView, 0, len(u.Friends))
	for _, f := range u.Friends {
		friends = append(friends, friendView{Email: f.Email})
	}
	return userView{ID: u.ID, Email: u.Email, Description: u.Description, Friends: friends}
}

func newTodoView(t *models.Todo) todoView {
	return todoView{
		ID:          t.ID,
		Text:        t.Text,
		Completed:   t.Completed,
		CompletedAt: t.CompletedAt,
		Owner:       t.OwnerID,
		CreatedAt:   t.CreatedAt,
	}
}
