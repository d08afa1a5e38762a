package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// TokenAuthConfig contains the configuration for token-based authentication.
type TokenAuthConfig struct {
	// Token is the shared secret handed to the front end at launch.
	Token string
}

// TokenAuth checks `Authorization: Bearer <token>` or `?token=<token>`.
// An empty token disables the check.
func TokenAuth(config TokenAuthConfig) gin.HandlerFunc {
	if config.Token == "" {
		slog.Warn("bridge auth disabled")
		return func(c *gin.Context) {
			c.Next()
		}
	}

	want := []byte(config.Token)
	return func(c *gin.Context) {
		token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if token == "" {
			token = c.Query("token")
		}

		if subtle.ConstantTimeCompare([]byte(token), want) != 1 {
			slog.Debug("bridge rejected token", "ip", c.ClientIP(), "path", c.FullPath())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":  "ERR_UNAUTHORIZED",
				"error": "unauthorized",
			})
			return
		}

		c.Set("authenticated", true)
		c.Next()
	}
}
