// Package memory provides map-backed implementations of the users, sessions
// and todos repositories. All three share one DB so that cross-table lookups
// (a user by session token) see a consistent view.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/gotodo/internal/common"
	"github.com/dmitrijs2005/gotodo/internal/server/models"
)

// DB is the shared in-memory state. Values handed out are always copies.
type DB struct {
	mu sync.RWMutex

	users   map[string]*models.User // by id
	emails  map[string]string       // email -> id
	tokens  map[string][]models.SessionToken
	friends map[string][]models.Friend

	todos     map[string]*models.Todo
	todoOrder []string

	now func() time.Time
}

func NewDB() *DB {
	return &DB{
		users:   make(map[string]*models.User),
		emails:  make(map[string]string),
		tokens:  make(map[string][]models.SessionToken),
		friends: make(map[string][]models.Friend),
		todos:   make(map[string]*models.Todo),
		now:     time.Now,
	}
}

func (db *DB) Users() *UserRepository       { return &UserRepository{db: db} }
func (db *DB) Sessions() *SessionRepository { return &SessionRepository{db: db} }
func (db *DB) Todos() *TodoRepository       { return &TodoRepository{db: db} }

func copyUser(u *models.User) *models.User {
	c := *u
	c.Friends = nil
	return &c
}

func copyTodo(t *models.Todo) *models.Todo {
	c := *t
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		c.CompletedAt = &at
	}
	return &c
}

// UserRepository is the in-memory users.Repository.
type UserRepository struct {
	db *DB
}

func (r *UserRepository) Create(_ context.Context, user *models.User) (*models.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.emails[user.Email]; ok {
		return nil, common.ErrAlreadyExists
	}
	if _, ok := r.db.users[user.ID]; ok {
		return nil, common.ErrAlreadyExists
	}
	stored := copyUser(user)
	stored.CreatedAt = r.db.now()
	r.db.users[stored.ID] = stored
	r.db.emails[stored.Email] = stored.ID

	user.CreatedAt = stored.CreatedAt
	return user, nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	u, ok := r.db.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return copyUser(u), nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	id, ok := r.db.emails[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return copyUser(r.db.users[id]), nil
}

func (r *UserRepository) GetBySession(_ context.Context, userID, token, access string) (*models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	u, ok := r.db.users[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	found := slices.ContainsFunc(r.db.tokens[userID], func(t models.SessionToken) bool {
		return t.Token == token && t.Access == access
	})
	if !found {
		return nil, common.ErrorNotFound
	}
	return copyUser(u), nil
}

func (r *UserRepository) UpdateDescription(_ context.Context, id, description string) (*models.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	u, ok := r.db.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	u.Description = description
	return copyUser(u), nil
}

func (r *UserRepository) AddFriend(_ context.Context, userID, email string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.users[userID]; !ok {
		return common.ErrorNotFound
	}
	exists := slices.ContainsFunc(r.db.friends[userID], func(f models.Friend) bool {
		return f.Email == email
	})
	if exists {
		return common.ErrAlreadyExists
	}
	r.db.friends[userID] = append(r.db.friends[userID], models.Friend{Email: email, CreatedAt: r.db.now()})
	return nil
}

func (r *UserRepository) ListFriends(_ context.Context, userID string) ([]models.Friend, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	return append(make([]models.Friend, 0, len(r.db.friends[userID])), r.db.friends[userID]...), nil
}

// SessionRepository is the in-memory sessions.Repository.
type SessionRepository struct {
	db *DB
}

func (r *SessionRepository) Create(_ context.Context, userID string, token models.SessionToken) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.users[userID]; !ok {
		return common.ErrorNotFound
	}
	token.CreatedAt = r.db.now()
	r.db.tokens[userID] = append(r.db.tokens[userID], token)
	return nil
}

func (r *SessionRepository) Delete(_ context.Context, userID, token string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.tokens[userID] = slices.DeleteFunc(r.db.tokens[userID], func(t models.SessionToken) bool {
		return t.Token == token
	})
	return nil
}

func (r *SessionRepository) DeleteExpired(_ context.Context, userID string, now time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.tokens[userID] = slices.DeleteFunc(r.db.tokens[userID], func(t models.SessionToken) bool {
		return t.ExpiresAt != nil && t.ExpiresAt.Before(now)
	})
	return nil
}

func (r *SessionRepository) List(_ context.Context, userID string) ([]models.SessionToken, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	return append(make([]models.SessionToken, 0, len(r.db.tokens[userID])), r.db.tokens[userID]...), nil
}

// TodoRepository is the in-memory todos.Repository.
type TodoRepository struct {
	db *DB
}

func (r *TodoRepository) Create(_ context.Context, todo *models.Todo) (*models.Todo, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.todos[todo.ID]; ok {
		return nil, common.ErrAlreadyExists
	}
	stored := copyTodo(todo)
	stored.CreatedAt = r.db.now()
	r.db.todos[stored.ID] = stored
	r.db.todoOrder = append(r.db.todoOrder, stored.ID)
	return copyTodo(stored), nil
}

func (r *TodoRepository) GetByID(_ context.Context, id string) (*models.Todo, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	t, ok := r.db.todos[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return copyTodo(t), nil
}

func (r *TodoRepository) list(match func(*models.Todo) bool) []*models.Todo {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	result := make([]*models.Todo, 0)
	for _, id := range r.db.todoOrder {
		if t := r.db.todos[id]; match(t) {
			result = append(result, copyTodo(t))
		}
	}
	return result
}

func (r *TodoRepository) ListByOwner(_ context.Context, ownerID string) ([]*models.Todo, error) {
	return r.list(func(t *models.Todo) bool { return t.OwnerID == ownerID }), nil
}

func (r *TodoRepository) ListAll(_ context.Context) ([]*models.Todo, error) {
	return r.list(func(*models.Todo) bool { return true }), nil
}

func (r *TodoRepository) Update(_ context.Context, todo *models.Todo) (*models.Todo, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	stored, ok := r.db.todos[todo.ID]
	if !ok || stored.OwnerID != todo.OwnerID {
		return nil, common.ErrorNotFound
	}
	stored.Text = todo.Text
	stored.Completed = todo.Completed
	stored.CompletedAt = copyTodo(todo).CompletedAt
	return copyTodo(stored), nil
}

func (r *TodoRepository) Delete(_ context.Context, id, ownerID string) (*models.Todo, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	stored, ok := r.db.todos[id]
	if !ok || stored.OwnerID != ownerID {
		return nil, common.ErrorNotFound
	}
	delete(r.db.todos, id)
	r.db.todoOrder = slices.DeleteFunc(r.db.todoOrder, func(v string) bool { return v == id })
	return stored, nil
}
