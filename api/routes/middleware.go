package routes

import (
	"crypto/subtle"

	"scanwarden/internal/handlers"

	"github.com/gin-gonic/gin"
)

// APIKeyAuth rejects requests whose X-API-Key header does not match the
// configured shared secret, before any core logic runs. An empty secret
// leaves the API open.
func APIKeyAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}

		provided := c.GetHeader("X-API-Key")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
			c.AbortWithStatusJSON(401, handlers.ErrorResponse{Error: "Unauthorized"})
			return
		}
		c.Next()
	}
}
