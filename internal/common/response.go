package common

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/plantpulse/messaging/internal/apperr"
)

// ErrorMsg writes the {"error": msg} payload the chat clients expect.
func ErrorMsg(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}

// Error maps a service error to its HTTP status. Unknown errors are
// reported as opaque internals; the cause stays server-side.
func Error(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	msg := "internal server error"

	var e *apperr.Error
	if errors.As(err, &e) {
		msg = e.Message
		switch e.Kind {
		case apperr.KindValidation:
			status = http.StatusBadRequest
		case apperr.KindUnauthorized:
			status = http.StatusUnauthorized
		case apperr.KindForbidden:
			status = http.StatusForbidden
		case apperr.KindNotFound:
			status = http.StatusNotFound
		case apperr.KindConflict:
			status = http.StatusConflict
		default:
			msg = "internal server error"
		}
	}
	ErrorMsg(c, status, msg)
}
