package rest

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/dmitrijs2005/gotodo/internal/common"
	"github.com/dmitrijs2005/gotodo/internal/logging"
)

func TestWriteError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := &Server{logger: logging.Nop()}

	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: email is required", common.ErrValidation), http.StatusBadRequest},
		{common.ErrAlreadyExists, http.StatusBadRequest},
		{common.ErrorNotOwner, http.StatusUnauthorized},
		{common.ErrorUnauthorized, http.StatusUnauthorized},
		{fmt.Errorf("%w: %w", common.ErrorUnauthorized, common.ErrTokenExpired), http.StatusUnauthorized},
		{common.ErrInvalidToken, http.StatusUnauthorized},
		{common.ErrorNotFound, http.StatusNotFound},
		{errors.New("db error: connection refused"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		s.writeError(c, tc.err)
		assert.Equal(t, tc.want, rec.Code, tc.err.Error())
		assert.NotContains(t, rec.Body.String(), "connection refused")
	}
}
