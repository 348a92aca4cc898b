package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gotodo/internal/common"
	"github.com/dmitrijs2005/gotodo/internal/server/models"
	"github.com/dmitrijs2005/gotodo/internal/server/repositories/repomanager"
)

// IssueSession mints a token for userID and appends it to the user's token
// list. Concurrent calls for the same user each add their own row.
func (s *UserService) IssueSession(ctx context.Context, userID string) (string, error) {
	return s.issueSession(ctx, s.repomanager, userID)
}

func (s *UserService) issueSession(ctx context.Context, m repomanager.RepositoryManager, userID string) (string, error) {
	token, err := s.codec.Issue(userID)
	if err != nil {
		s.logger.Error(ctx, "token signing failed", "error", err)
		return "", common.ErrorInternal
	}

	now := s.now()
	expiresAt := s.codec.ExpiresAt(now)
	if expiresAt != nil {
		if err := m.Sessions().DeleteExpired(ctx, userID, now); err != nil {
			s.logger.Warn(ctx, "pruning expired sessions failed", "user_id", userID, "error", err)
		}
	}

	session := models.SessionToken{Access: common.AuthAccess, Token: token, ExpiresAt: expiresAt}
	if err := m.Sessions().Create(ctx, userID, session); err != nil {
		return "", fmt.Errorf("error storing session: %w", err)
	}
	return token, nil
}

// RevokeSession removes token from the user's list. Other sessions of the
// same user stay valid.
func (s *UserService) RevokeSession(ctx context.Context, userID, token string) error {
	if err := s.repomanager.Sessions().Delete(ctx, userID, token); err != nil {
		return fmt.Errorf("error revoking session: %w", err)
	}
	return nil
}

// FindBySession resolves a presented token to its user. The token must be
// authentic, scoped to common.AuthAccess and still present in the token list
// of the user it names; otherwise common.ErrorUnauthorized is returned.
func (s *UserService) FindBySession(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, common.ErrorUnauthorized
	}
	claims, err := s.codec.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorUnauthorized, err)
	}

	user, err := s.repomanager.Users().GetBySession(ctx, claims.UserID, token, common.AuthAccess)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error resolving session: %w", err)
	}
	return user, nil
}
