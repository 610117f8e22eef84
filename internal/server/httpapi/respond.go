package httpapi

import (
	"errors"
	"net/http"

	"github.com/avasilkov/keyvault/internal/common"
	"github.com/gin-gonic/gin"
)

// fail maps a domain error onto the REST status taxonomy and writes a generic
// error body. The full error stays in the server log; clients get the class,
// not the cause.
func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	switch {
	case errors.Is(err, common.ErrValidation) || errors.Is(err, common.ErrResetTokenExpired):
		status = http.StatusBadRequest
		message = "invalid request"
	case errors.Is(err, common.ErrUnauthorized) || errors.Is(err, common.ErrInvalidToken) ||
		errors.Is(err, common.ErrTokenExpired):
		status = http.StatusUnauthorized
		message = "unauthorized"
	case errors.Is(err, common.ErrForbidden):
		status = http.StatusForbidden
		message = "forbidden"
	case errors.Is(err, common.ErrNotFound):
		status = http.StatusNotFound
		message = "not found"
	case errors.Is(err, common.ErrConflict):
		status = http.StatusConflict
		message = "already exists"
	case errors.Is(err, common.ErrFormatValidation):
		status = http.StatusUnprocessableEntity
		message = "unprocessable content"
	}

	if status == http.StatusInternalServerError {
		s.logger.Error(c.Request.Context(), "request failed",
			"method", c.Request.Method, "path", c.FullPath(), "error", err)
	} else {
		s.logger.Debug(c.Request.Context(), "request rejected",
			"method", c.Request.Method, "path", c.FullPath(), "status", status, "error", err)
	}

	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

func (s *Server) badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": message})
}
