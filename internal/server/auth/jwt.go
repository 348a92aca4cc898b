// Package auth holds the credential primitives of the server: the session
// token codec (HS256 JWT) and the bcrypt password hasher.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/gotodo/internal/common"
)

// Claims is the token payload: the standard claims plus the subject's user id
// and the scope marker the token was issued for.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	Access string `json:"access"`
}

// GenerateToken signs a token for userID with the given scope marker. A zero
// validityDuration produces a token without an expiry claim. Every token gets
// a fresh jti, so two tokens minted in the same second still differ.
func GenerateToken(userID, access string, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       uuid.NewString(),
			IssuedAt: jwt.NewNumericDate(now),
		},
		UserID: userID,
		Access: access,
	}
	if validityDuration != 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(validityDuration))
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken validates signature and structure of tokenString and returns its
// claims. Expired tokens yield common.ErrTokenExpired, anything else that
// fails validation yields common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid || claims.UserID == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

// TokenCodec issues and verifies session tokens scoped to common.AuthAccess.
type TokenCodec struct {
	secret   []byte
	validity time.Duration
}

func NewTokenCodec(secretKey string, validity time.Duration) *TokenCodec {
	return &TokenCodec{secret: []byte(secretKey), validity: validity}
}

// Issue mints a session token bound to userID.
func (c *TokenCodec) Issue(userID string) (string, error) {
	return GenerateToken(userID, common.AuthAccess, c.secret, c.validity)
}

// Verify proves the token authentic and returns its claims. It does not
// check whether the session is still current; that is the session store's job.
func (c *TokenCodec) Verify(token string) (*Claims, error) {
	claims, err := ParseToken(token, c.secret)
	if err != nil {
		return nil, err
	}
	if claims.Access != common.AuthAccess {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}

// ExpiresAt returns when a token issued now would expire, or nil when tokens
// do not expire.
func (c *TokenCodec) ExpiresAt(now time.Time) *time.Time {
	if c.validity == 0 {
		return nil
	}
	t := now.Add(c.validity)
	return &t
}
