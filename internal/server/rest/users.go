package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/gotodo/internal/common"
)

func (s *Server) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(common.AuthCookieName, token, s.cookieMaxAge, "/", "", s.secureCookie, true)
	c.Header(authHeaderName, token)
}

func (s *Server) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(common.AuthCookieName, "", -1, "/", "", s.secureCookie, true)
}

func (s *Server) handleSignup(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	user, token, err := s.users.Signup(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.setSessionCookie(c, token)
	c.JSON(http.StatusOK, authResponse{ID: user.ID, Email: user.Email})
}

func (s *Server) handleLogin(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	user, token, err := s.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) || errors.Is(err, common.ErrorNotFound) {
			s.metrics.AuthFailure("bad_credentials")
		}
		s.writeError(c, err)
		return
	}

	s.setSessionCookie(c, token)
	c.JSON(http.StatusOK, authResponse{ID: user.ID, Email: user.Email})
}

func (s *Server) handleMe(c *gin.Context) {
	user, ok := userFromContext(c)
	if !ok {
		s.writeError(c, common.ErrorUnauthorized)
		return
	}
	me, err := s.users.Me(c.Request.Context(), user.ID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserView(me))
}

func (s *Server) handleLogout(c *gin.Context) {
	user, ok := userFromContext(c)
	if !ok {
		s.writeError(c, common.ErrorUnauthorized)
		return
	}
	if err := s.users.Logout(c.Request.Context(), user.ID, tokenFromContext(c)); err != nil {
		s.writeError(c, err)
		return
	}
	s.clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (s *Server) handleUpdateDescription(c *gin.Context) {
	user, ok := userFromContext(c)
	if !ok {
		s.writeError(c, common.ErrorUnauthorized)
		return
	}
	var req descriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	updated, err := s.users.UpdateDescription(c.Request.Context(), user.ID, req.Description)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserView(updated))
}

func (s *Server) handleAddFriend(c *gin.Context) {
	user, ok := userFromContext(c)
	if !ok {
		s.writeError(c, common.ErrorUnauthorized)
		return
	}
	var req friendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	updated, err := s.users.AddFriend(c.Request.Context(), user.ID, req.Email)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserView(updated))
}
