package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Gin context keys set by SessionMiddleware.
const (
	ContextUsernameKey = "sessionUsername"
	ContextLoginIDKey  = "sessionLoginID"
)

// SessionMiddleware guards routes that require a verified face
// session. On success it injects the username and login id into the
// request context.
func SessionMiddleware(secret string) gin.HandlerFunc {
	secret = strings.TrimSpace(secret)

	return func(c *gin.Context) {
		tokenString, err := extractBearerToken(c.Request.Header.Get("Authorization"))
		if err != nil {
			unauthorized(c, err.Error())
			return
		}
		if secret == "" {
			unauthorized(c, "missing session secret")
			return
		}

		claims, err := ParseSession(secret, tokenString)
		if err != nil {
			unauthorized(c, err.Error())
			return
		}

		c.Set(ContextUsernameKey, claims.Subject)
		c.Set(ContextLoginIDKey, claims.LoginID)
		c.Next()
	}
}

func extractBearerToken(header string) (string, error) {
	if header == "" {
		return "", errors.New("authorization header required")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization header")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errors.New("token missing")
	}
	return token, nil
}

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": message})
}
