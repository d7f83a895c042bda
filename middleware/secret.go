package middleware

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const SecretHeader = "X-Vapi-Secret"

type JsonResponse struct {
	Error string `json:"error"`
}

// SecretMiddleware rejects requests whose X-Vapi-Secret header does not
// match secret. An empty secret disables the check.
func SecretMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}
		got := c.GetHeader(SecretHeader)
		if got == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, JsonResponse{Error: SecretHeader + " header is required"})
			return
		}
		if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, JsonResponse{Error: "invalid secret"})
			return
		}
		c.Next()
	}
}

// Logger logs one line per request.
func Logger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
