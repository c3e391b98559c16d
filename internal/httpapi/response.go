package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mmynk/timecard/internal/apperr"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Errors []string `json:"errors"`
}

// statusFor maps a business failure to an HTTP status. Attempts that clash with the
// current shift state are 422 like other validation failures.
func statusFor(e *apperr.Error) int {
	switch e.Kind {
	case apperr.KindConflict, apperr.KindValidation:
		return http.StatusUnprocessableEntity
	case apperr.KindNotFound:
		if e.Code == apperr.CodeNoActiveShift {
			return http.StatusUnprocessableEntity
		}
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as an ErrorResponse. Unexpected errors are logged and
// reported without detail.
func respondError(c *gin.Context, err error) {
	if e, ok := apperr.As(err); ok {
		messages := e.Messages
		if len(messages) == 0 {
			messages = []string{e.Error()}
		}
		c.JSON(statusFor(e), ErrorResponse{Errors: messages})
		return
	}

	slog.Error("Request failed", "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Errors: []string{"internal server error"}})
}

func respondBadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Errors: []string{err.Error()}})
}
