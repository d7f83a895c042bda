package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/vapi-kb/middleware"
	"go.uber.org/zap"
)

type RouterConfig struct {
	WeaviateURL string
	// Secret guards the webhook routes when non-empty.
	Secret string
	// AllowedOrigins feeds the CORS middleware; empty allows any origin.
	AllowedOrigins []string
}

// NewRouter wires every HTTP route the server exposes.
func NewRouter(cfg RouterConfig, searcher KnowledgeSearcher, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(middleware.Logger(logger), gin.Recovery())

	corsHandler := NewCorsHandler(cfg.AllowedOrigins)
	healthHandler := NewHealthHandler(cfg.WeaviateURL)
	searchHandler := NewSearchHandler(searcher, logger)
	webhookHandler := NewWebhookHandler(searcher, logger)

	router.Use(corsHandler.CorsMiddleware)

	router.GET("/health", healthHandler.HandleHealth)
	router.POST("/search", searchHandler.HandleSearch)

	webhookRoutes := router.Group("/webhook")
	webhookRoutes.Use(middleware.SecretMiddleware(cfg.Secret))
	{
		webhookRoutes.POST("/search-knowledge-base", webhookHandler.HandleSearchKnowledgeBase)
	}
	return router
}
