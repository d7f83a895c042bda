package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/vapi-kb/middleware"
)

const (
	corsAllowMethods = "GET, POST, OPTIONS"
	corsMaxAge       = "600"
)

var corsAllowHeaders = strings.Join([]string{"Content-Type", "Authorization", middleware.SecretHeader}, ", ")

// CorsHandler sets CORS headers for browser callers of /search. Vapi itself
// sends no Origin and is unaffected.
type CorsHandler struct {
	allowAny bool
	origins  map[string]bool
}

// NewCorsHandler allows the listed origins. An empty list or "*" allows any.
func NewCorsHandler(allowedOrigins []string) *CorsHandler {
	h := &CorsHandler{origins: make(map[string]bool)}
	for _, origin := range allowedOrigins {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if origin == "*" {
			h.allowAny = true
		} else if origin != "" {
			h.origins[origin] = true
		}
	}
	if len(h.origins) == 0 {
		h.allowAny = true
	}
	return h
}

func (h *CorsHandler) CorsMiddleware(c *gin.Context) {
	origin := c.GetHeader("Origin")
	header := c.Writer.Header()

	switch {
	case h.allowAny:
		header.Set("Access-Control-Allow-Origin", "*")
	case origin != "" && h.origins[origin]:
		header.Set("Access-Control-Allow-Origin", origin)
		header.Add("Vary", "Origin")
	default:
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Next()
		return
	}

	header.Set("Access-Control-Allow-Methods", corsAllowMethods)
	header.Set("Access-Control-Allow-Headers", corsAllowHeaders)
	if c.Request.Method == http.MethodOptions {
		header.Set("Access-Control-Max-Age", corsMaxAge)
		c.AbortWithStatus(http.StatusNoContent)
		return
	}
	c.Next()
}
