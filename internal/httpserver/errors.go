package httpserver

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"food-delivery/internal/domain"
	usersvc "food-delivery/internal/service/user"
	"github.com/gin-gonic/gin"
)

func failure(message string) gin.H {
	return gin.H{"success": false, "message": message}
}

// respondError maps service errors onto status codes. notFound is the
// message used for a missing entity. Internal faults are logged and never
// echoed to the client.
func respondError(c *gin.Context, logger *log.Logger, err error, notFound string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, failure(notFound))
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrInvalidState),
		errors.Is(err, domain.ErrGateway),
		errors.Is(err, domain.ErrAlreadyExists):
		c.JSON(http.StatusBadRequest, failure(clientMessage(err)))
	case errors.Is(err, usersvc.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, failure("Incorrect email or password"))
	default:
		logger.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, failure("Internal server error"))
	}
}

var sentinels = []error{
	domain.ErrInvalidInput,
	domain.ErrInvalidState,
	domain.ErrGateway,
	domain.ErrAlreadyExists,
}

// clientMessage drops sentinel text from a wrapped validation error.
func clientMessage(err error) string {
	msg := err.Error()
	for trimmed := true; trimmed; {
		trimmed = false
		for _, s := range sentinels {
			if rest, ok := strings.CutPrefix(msg, s.Error()+": "); ok {
				msg, trimmed = rest, true
			}
			if rest, ok := strings.CutSuffix(msg, ": "+s.Error()); ok {
				msg, trimmed = rest, true
			}
		}
	}
	return msg
}
