package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/vapi-kb/types"
)

const ServiceName = "vapi-kb"

type HealthHandler struct {
	weaviateURL string
}

func NewHealthHandler(weaviateURL string) *HealthHandler {
	return &HealthHandler{weaviateURL: weaviateURL}
}

func (h *HealthHandler) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, types.HealthResponse{
		Status:   "healthy",
		Service:  ServiceName,
		Weaviate: h.weaviateURL,
	})
}
