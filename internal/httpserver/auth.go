package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"food-delivery/internal/domain"
	usersvc "food-delivery/internal/service/user"
	"github.com/gin-gonic/gin"
)

type ctxKey string

const userCtxKey ctxKey = "user"

// tokenCookie carries the access token for browser clients.
const tokenCookie = "token"

type tokenLookup interface {
	LookupByToken(ctx context.Context, token string) (*domain.User, error)
}

// authMiddleware resolves the access token to a user and stores it on the
// request context.
func authMiddleware(users tokenLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := requestToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, failure("User not authenticated"))
			return
		}
		u, err := users.LookupByToken(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, usersvc.ErrInvalidToken) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, failure("Invalid token"))
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, failure("Internal server error"))
			return
		}
		ctx := context.WithValue(c.Request.Context(), userCtxKey, u)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func currentUser(c *gin.Context) *domain.User {
	u, _ := c.Request.Context().Value(userCtxKey).(*domain.User)
	return u
}

// requestToken prefers a bearer header over the cookie.
func requestToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if v, err := c.Cookie(tokenCookie); err == nil {
		return strings.TrimSpace(v)
	}
	return ""
}
