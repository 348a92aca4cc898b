package rest

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/gotodo/internal/common"
	"github.com/dmitrijs2005/gotodo/internal/server/models"
)

// requesterID is empty for anonymous requests on public read routes.
func requesterID(c *gin.Context) string {
	if user, ok := userFromContext(c); ok {
		return user.ID
	}
	return ""
}

func (s *Server) handleCreateTodo(c *gin.Context) {
	user, ok := userFromContext(c)
	if !ok {
		s.writeError(c, common.ErrorUnauthorized)
		return
	}
	var req createTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	todo, err := s.todos.Create(c.Request.Context(), user.ID, req.Text)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTodoView(todo))
}

func (s *Server) handleListTodos(c *gin.Context) {
	list, err := s.todos.List(c.Request.Context(), requesterID(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	if len(list) == 0 {
		c.String(http.StatusOK, "no todos")
		return
	}
	views := make([]todoView, 0, len(list))
	for _, t := range list {
		views = append(views, newTodoView(t))
	}
	c.JSON(http.StatusOK, views)
}

func (s *Server) handleGetTodo(c *gin.Context) {
	todo, err := s.todos.Get(c.Request.Context(), requesterID(c), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTodoView(todo))
}

func (s *Server) handleUpdateTodo(c *gin.Context) {
	user, ok := userFromContext(c)
	if !ok {
		s.writeError(c, common.ErrorUnauthorized)
		return
	}
	body, err := c.GetRawData()
	if err != nil {
		badRequest(c, "invalid request body")
		return
	}
	patch, msg := parseTodoPatch(body)
	if msg != "" {
		// an unknown id or a foreign todo outranks a bad body
		if _, err := s.todos.Owned(c.Request.Context(), user.ID, c.Param("id")); err != nil {
			s.writeError(c, err)
			return
		}
		badRequest(c, msg)
		return
	}
	todo, err := s.todos.Update(c.Request.Context(), user.ID, c.Param("id"), patch)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTodoView(todo))
}

func (s *Server) handleDeleteTodo(c *gin.Context) {
	user, ok := userFromContext(c)
	if !ok {
		s.writeError(c, common.ErrorUnauthorized)
		return
	}
	todo, err := s.todos.Delete(c.Request.Context(), user.ID, c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTodoView(todo))
}

var jsonNull = []byte("null")

// parseTodoPatch reads only text and completed from body; every other key is
// ignored. A non-empty message means the body is rejected with 400.
func parseTodoPatch(body []byte) (models.TodoPatch, string) {
	var patch models.TodoPatch

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		return patch, "body must be a JSON object"
	}

	if raw, ok := fields["text"]; ok {
		var text string
		if bytes.Equal(bytes.TrimSpace(raw), jsonNull) || json.Unmarshal(raw, &text) != nil {
			return patch, "text must be a string"
		}
		patch.Text = &text
	}
	if raw, ok := fields["completed"]; ok {
		var completed bool
		if bytes.Equal(bytes.TrimSpace(raw), jsonNull) || json.Unmarshal(raw, &completed) != nil {
			return patch, "completed must be a boolean"
		}
		patch.Completed = &completed
	}
	return patch, ""
}
