package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/taskboard/core"
	"github.com/layer-3/taskboard/internal/logctx"
)

// envelope is the body of every JSON response.
type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Count   *int              `json:"count,omitempty"`
	Data    any               `json:"data,omitempty"`
	Errors  []core.FieldError `json:"errors,omitempty"`
}

func respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, envelope{Success: true, Message: message, Data: data})
}

func respondList(c *gin.Context, count int, data any) {
	c.JSON(http.StatusOK, envelope{Success: true, Count: &count, Data: data})
}

func abortWithMessage(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, envelope{Message: message})
}

// abortWithError maps err to a status and client-safe message. Anything not
// in the table is logged and answered with a bare 500.
func abortWithError(c *gin.Context, err error) {
	var verr *core.ValidationError
	if errors.As(err, &verr) {
		c.AbortWithStatusJSON(http.StatusBadRequest, envelope{Message: "Validation failed", Errors: verr.Fields})
		return
	}

	status, message := statusFor(err)
	if status == http.StatusInternalServerError {
		logctx.From(c.Request.Context()).Error("request_failed", "error", err)
	}
	abortWithMessage(c, status, message)
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, core.ErrMissingToken):
		return http.StatusUnauthorized, "No token provided"
	case errors.Is(err, core.ErrTokenRevoked):
		return http.StatusUnauthorized, "Token is no longer valid"
	case errors.Is(err, core.ErrUserNotFound):
		return http.StatusNotFound, "User not found"
	case errors.Is(err, core.ErrBadToken), errors.Is(err, core.ErrInvalidToken):
		return http.StatusUnauthorized, "Invalid or expired token"
	case errors.Is(err, core.ErrUnauthenticated):
		return http.StatusUnauthorized, "Not authenticated"
	case errors.Is(err, core.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid email or password"
	case errors.Is(err, core.ErrForbidden):
		return http.StatusForbidden, "Not authorized to access this route"
	case errors.Is(err, core.ErrTaskNotFound):
		return http.StatusNotFound, "Task not found"
	case errors.Is(err, core.ErrEmailTaken):
		return http.StatusBadRequest, "User already exists with this email"
	case errors.Is(err, core.ErrInvalidRole):
		return http.StatusBadRequest, "Invalid role"
	case errors.Is(err, core.ErrInvalidStatus):
		return http.StatusBadRequest, "Invalid status"
	case errors.Is(err, core.ErrInvalidPriority):
		return http.StatusBadRequest, "Invalid priority"
	case errors.Is(err, core.ErrInvalidInput):
		return http.StatusBadRequest, "Invalid request"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}
