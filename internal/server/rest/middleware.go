package rest

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/gotodo/internal/common"
	"github.com/dmitrijs2005/gotodo/internal/server/models"
)

const (
	userKey  = "user"
	tokenKey = "token"
)

const authHeaderName = common.AuthCookieName

// requestLogger logs every request and feeds the request metrics.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		route := c.FullPath()

		s.metrics.ObserveRequest(c.Request.Method, route, status, latency)
		s.logger.Info(c.Request.Context(), "http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"route", route,
			"status", status,
			"client_ip", c.ClientIP(),
			"latency", latency.String(),
		)
	}
}

// tokenFromRequest reads the session token from the x-auth cookie, falling
// back to the x-auth header.
func tokenFromRequest(c *gin.Context) string {
	if v, err := c.Cookie(common.AuthCookieName); err == nil && v != "" {
		return v
	}
	return strings.TrimSpace(c.GetHeader(authHeaderName))
}

// resolve looks up the user owning the presented token and attaches it to
// the gin context.
func (s *Server) resolve(c *gin.Context) (bool, string) {
	token := tokenFromRequest(c)
	if token == "" {
		return false, "missing_token"
	}
	user, err := s.users.FindBySession(c.Request.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrTokenExpired):
			return false, "expired_token"
		case errors.Is(err, common.ErrInvalidToken):
			return false, "invalid_token"
		case errors.Is(err, common.ErrorUnauthorized):
			return false, "revoked_token"
		default:
			s.logger.Error(c.Request.Context(), "session lookup failed", "error", err)
			return false, "lookup_error"
		}
	}

	c.Set(userKey, user)
	c.Set(tokenKey, token)
	return true, ""
}

// authenticate rejects the request with 401 unless it carries a current
// session token.
func (s *Server) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if ok, reason := s.resolve(c); !ok {
			s.metrics.AuthFailure(reason)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

// optionalAuthenticate attaches the user when a valid token is present and
// lets the request through either way.
func (s *Server) optionalAuthenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.resolve(c)
		c.Next()
	}
}

// userFromContext returns the user attached by the authentication middleware.
func userFromContext(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok && user != nil
}

func tokenFromContext(c *gin.Context) string {
	return c.GetString(tokenKey)
}
