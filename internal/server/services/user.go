// Package services contains server-side business logic. This file implements
// UserService: signup, login, logout and the profile operations of the
// authenticated user.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/gotodo/internal/common"
	"github.com/dmitrijs2005/gotodo/internal/logging"
	"github.com/dmitrijs2005/gotodo/internal/server/auth"
	"github.com/dmitrijs2005/gotodo/internal/server/config"
	"github.com/dmitrijs2005/gotodo/internal/server/models"
	"github.com/dmitrijs2005/gotodo/internal/server/repositories/repomanager"
)

// UserService owns the user accounts and their session token lists.
type UserService struct {
	repomanager repomanager.RepositoryManager
	hasher      *auth.Hasher
	codec       *auth.TokenCodec
	validate    *validator.Validate
	logger      logging.Logger
	now         func() time.Time
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *UserService {
	return &UserService{
		repomanager: m,
		hasher:      auth.NewHasher(cfg.BcryptCost),
		codec:       auth.NewTokenCodec(cfg.SecretKey, cfg.TokenValidityDuration),
		validate:    newValidator(),
		logger:      logger.With("module", "users"),
		now:         time.Now,
	}
}

// Signup creates a user and its first session. The password is hashed exactly
// once, before anything is written; if hashing fails nothing is persisted.
func (s *UserService) Signup(ctx context.Context, email, password string) (*models.User, string, error) {
	email = normalizeEmail(email)
	if err := validate(s.validate, credentialsInput{Email: email, Password: password}); err != nil {
		return nil, "", err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, "", fmt.Errorf("%w: password must be at most %d bytes", common.ErrValidation, auth.MaxPasswordBytes)
		}
		s.logger.Error(ctx, "password hashing failed", "error", err)
		return nil, "", common.ErrorInternal
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Description:  models.DefaultDescription,
	}

	var token string
	err = s.repomanager.InTx(ctx, func(ctx context.Context, tx repomanager.RepositoryManager) error {
		if _, err := tx.Users().Create(ctx, user); err != nil {
			return err
		}
		var err error
		token, err = s.issueSession(ctx, tx, user.ID)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, "", fmt.Errorf("%w: email %s is already registered", common.ErrValidation, email)
		}
		return nil, "", fmt.Errorf("error creating user: %w", err)
	}

	s.logger.Info(ctx, "user signed up", "user_id", user.ID)
	return user, token, nil
}

// Login checks the credentials and appends a fresh session. An unknown email
// yields common.ErrorNotFound, a wrong password common.ErrorUnauthorized.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, "", fmt.Errorf("%w: email and password are required", common.ErrValidation)
	}

	user, err := s.repomanager.Users().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, "", common.ErrorNotFound
		}
		return nil, "", fmt.Errorf("error searching user: %w", err)
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, "", common.ErrorUnauthorized
	}

	token, err := s.IssueSession(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Logout revokes exactly the token the request was authenticated with.
func (s *UserService) Logout(ctx context.Context, userID, token string) error {
	return s.RevokeSession(ctx, userID, token)
}

// Me returns the user with its friend list. Token strings are never loaded.
func (s *UserService) Me(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repomanager.Users().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}
	friends, err := s.repomanager.Users().ListFriends(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error loading friends: %w", err)
	}
	user.Friends = friends
	return user, nil
}

// UpdateDescription replaces the profile text of the user.
func (s *UserService) UpdateDescription(ctx context.Context, userID, description string) (*models.User, error) {
	description = strings.TrimSpace(description)
	if err := validate(s.validate, descriptionInput{Description: description}); err != nil {
		return nil, err
	}
	if _, err := s.repomanager.Users().UpdateDescription(ctx, userID, description); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error updating description: %w", err)
	}
	return s.Me(ctx, userID)
}

// AddFriend links another registered user, by email, to the user's friend
// list. Self-links, unknown emails and duplicates are validation errors.
func (s *UserService) AddFriend(ctx context.Context, userID, email string) (*models.User, error) {
	email = normalizeEmail(email)
	if err := validate(s.validate, friendInput{Email: email}); err != nil {
		return nil, err
	}

	err := s.repomanager.InTx(ctx, func(ctx context.Context, tx repomanager.RepositoryManager) error {
		me, err := tx.Users().GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if me.Email == email {
			return fmt.Errorf("%w: you cannot add yourself as a friend", common.ErrValidation)
		}
		if _, err := tx.Users().GetByEmail(ctx, email); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return fmt.Errorf("%w: no user with email %s", common.ErrValidation, email)
			}
			return err
		}
		if err := tx.Users().AddFriend(ctx, userID, email); err != nil {
			if errors.Is(err, common.ErrAlreadyExists) {
				return fmt.Errorf("%w: %s is already a friend", common.ErrValidation, email)
			}
			return err
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrValidation) {
			return nil, err
		}
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error adding friend: %w", err)
	}
	return s.Me(ctx, userID)
}
