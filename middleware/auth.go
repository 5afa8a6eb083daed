package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jayansh1208/marketly/apperror"
	"github.com/jayansh1208/marketly/models"
)

const (
	principalKey = "principal"
	tokenKey     = "token"
)

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (models.Principal, error)
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
}

func AuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			abort(c, http.StatusUnauthorized, "Not authorized, no token")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		principal, err := auth.Authenticate(ctx, tokenString)
		if err != nil {
			status, message := apperror.HTTPStatus(err)
			if status == http.StatusInternalServerError {
				_ = c.Error(err)
			}
			abort(c, status, message)
			return
		}

		c.Set(principalKey, principal)
		c.Set(tokenKey, tokenString)
		c.Next()
	}
}

func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := CurrentUser(c)
		if !ok || !principal.IsAdmin() {
			abort(c, http.StatusForbidden, "Access denied: admin only")
			return
		}
		c.Next()
	}
}

// CurrentUser returns the caller set by AuthMiddleware.
func CurrentUser(c *gin.Context) (models.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return models.Principal{}, false
	}
	principal, ok := v.(models.Principal)
	return principal, ok
}

func Token(c *gin.Context) string {
	return c.GetString(tokenKey)
}
