package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/gotodo/internal/common"
	"github.com/dmitrijs2005/gotodo/internal/logging"
	"github.com/dmitrijs2005/gotodo/internal/server/config"
	"github.com/dmitrijs2005/gotodo/internal/server/models"
	"github.com/dmitrijs2005/gotodo/internal/server/repositories/repomanager"
)

// TodoService applies the ownership rules to to-do items: writes are limited
// to the owner of record, reads follow the configured read policy.
type TodoService struct {
	repomanager repomanager.RepositoryManager
	readPolicy  string
	validate    *validator.Validate
	logger      logging.Logger
	now         func() time.Time
}

func NewTodoService(m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *TodoService {
	return &TodoService{
		repomanager: m,
		readPolicy:  cfg.TodoReadPolicy,
		validate:    newValidator(),
		logger:      logger.With("module", "todos"),
		now:         time.Now,
	}
}

// PublicReads reports whether todos can be read without authentication.
func (s *TodoService) PublicReads() bool {
	return s.readPolicy == config.ReadPolicyPublic
}

// Create stores a new todo owned by ownerID.
func (s *TodoService) Create(ctx context.Context, ownerID, text string) (*models.Todo, error) {
	text = strings.TrimSpace(text)
	if err := validate(s.validate, todoTextInput{Text: text}); err != nil {
		return nil, err
	}
	todo := &models.Todo{ID: uuid.NewString(), OwnerID: ownerID, Text: text}
	created, err := s.repomanager.Todos().Create(ctx, todo)
	if err != nil {
		return nil, fmt.Errorf("error creating todo: %w", err)
	}
	return created, nil
}

// List returns the todos visible to requesterID, which may be empty under
// the public read policy.
func (s *TodoService) List(ctx context.Context, requesterID string) ([]*models.Todo, error) {
	var (
		list []*models.Todo
		err  error
	)
	if s.PublicReads() {
		list, err = s.repomanager.Todos().ListAll(ctx)
	} else {
		if requesterID == "" {
			return nil, common.ErrorUnauthorized
		}
		list, err = s.repomanager.Todos().ListByOwner(ctx, requesterID)
	}
	if err != nil {
		return nil, fmt.Errorf("error listing todos: %w", err)
	}
	return list, nil
}

// Get returns a single todo. Under the owner policy another user's todo is
// reported as not found.
func (s *TodoService) Get(ctx context.Context, requesterID, id string) (*models.Todo, error) {
	if !s.PublicReads() && requesterID == "" {
		return nil, common.ErrorUnauthorized
	}
	todo, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.PublicReads() && todo.OwnerID != requesterID {
		return nil, common.ErrorNotFound
	}
	return todo, nil
}

// Owned returns the todo if requesterID owns it. The id and ownership are
// checked before anything else about a write request.
func (s *TodoService) Owned(ctx context.Context, requesterID, id string) (*models.Todo, error) {
	return s.fetchOwned(ctx, requesterID, id)
}

// Update applies patch to the todo if requesterID owns it.
func (s *TodoService) Update(ctx context.Context, requesterID, id string, patch models.TodoPatch) (*models.Todo, error) {
	todo, err := s.fetchOwned(ctx, requesterID, id)
	if err != nil {
		return nil, err
	}

	if patch.Text != nil {
		text := strings.TrimSpace(*patch.Text)
		if err := validate(s.validate, todoTextInput{Text: text}); err != nil {
			return nil, err
		}
		patch.Text = &text
	}
	patch.Apply(todo, s.now())

	updated, err := s.repomanager.Todos().Update(ctx, todo)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error updating todo: %w", err)
	}
	return updated, nil
}

// Delete removes the todo if requesterID owns it and returns it.
func (s *TodoService) Delete(ctx context.Context, requesterID, id string) (*models.Todo, error) {
	todo, err := s.fetchOwned(ctx, requesterID, id)
	if err != nil {
		return nil, err
	}
	deleted, err := s.repomanager.Todos().Delete(ctx, todo.ID, requesterID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error deleting todo: %w", err)
	}
	s.logger.Debug(ctx, "todo deleted", "todo_id", todo.ID, "owner_id", requesterID)
	return deleted, nil
}

// canonicalID accepts only the 36-character hyphenated uuid form and returns
// it lower-cased. uuid.Parse alone also takes urn, braced and undashed forms.
func canonicalID(id string) (string, bool) {
	if len(id) != 36 {
		return "", false
	}
	u, err := uuid.Parse(id)
	if err != nil {
		return "", false
	}
	return u.String(), true
}

func (s *TodoService) fetch(ctx context.Context, id string) (*models.Todo, error) {
	id, ok := canonicalID(id)
	if !ok {
		return nil, common.ErrorNotFound
	}
	todo, err := s.repomanager.Todos().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error loading todo: %w", err)
	}
	return todo, nil
}

// fetchOwned loads the todo and checks the requester is its owner of record.
func (s *TodoService) fetchOwned(ctx context.Context, requesterID, id string) (*models.Todo, error) {
	if requesterID == "" {
		return nil, common.ErrorUnauthorized
	}
	todo, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if todo.OwnerID != requesterID {
		s.logger.Warn(ctx, "ownership check failed", "todo_id", id, "requester_id", requesterID)
		return nil, common.ErrorNotOwner
	}
	return todo, nil
}
