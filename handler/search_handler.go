package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/vapi-kb/service"
	"github.com/tieubaoca/vapi-kb/types"
	"go.uber.org/zap"
)

// KnowledgeSearcher is implemented by service.SearchService.
type KnowledgeSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]types.SearchHit, error)
}

type SearchHandler struct {
	searcher KnowledgeSearcher
	logger   *zap.Logger
}

func NewSearchHandler(searcher KnowledgeSearcher, logger *zap.Logger) *SearchHandler {
	return &SearchHandler{
		searcher: searcher,
		logger:   logger,
	}
}

func (h *SearchHandler) HandleSearch(c *gin.Context) {
	var req types.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no query provided"})
		return
	}

	hits, err := h.searcher.Search(c.Request.Context(), req.Query, req.Limit)
	if err != nil {
		h.logger.Error("search failed", zap.String("query", req.Query), zap.Error(err))
		c.JSON(http.StatusBadGateway, types.SearchResponse{
			Query:   req.Query,
			Results: []types.SearchResult{},
			Status:  "error",
			Error:   "search failed: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, types.SearchResponse{
		Query:   req.Query,
		Found:   len(hits),
		Results: service.FormatResults(hits),
		Status:  "success",
	})
}
