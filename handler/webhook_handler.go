package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/vapi-kb/service"
	"github.com/tieubaoca/vapi-kb/types"
	"go.uber.org/zap"
)

const noQueryResult = "No search query provided. Please provide a query to search the knowledge base."

// WebhookHandler answers Vapi tool calls for the knowledge base search.
type WebhookHandler struct {
	searcher KnowledgeSearcher
	logger   *zap.Logger
}

func NewWebhookHandler(searcher KnowledgeSearcher, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		searcher: searcher,
		logger:   logger,
	}
}

// HandleSearchKnowledgeBase accepts both the legacy functionCall message and
// the toolCallList message. Failures are reported in the result text with a
// 200 so the assistant can say something sensible.
func (h *WebhookHandler) HandleSearchKnowledgeBase(c *gin.Context) {
	var msg types.VapiServerMessage
	if err := c.ShouldBindJSON(&msg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if calls := msg.Message.ToolCallList; len(calls) > 0 {
		results := make([]types.ToolCallResult, 0, len(calls))
		for _, call := range calls {
			results = append(results, types.ToolCallResult{
				ToolCallID: call.ID,
				Result:     h.answer(c.Request.Context(), queryArg(call.Function.Args())),
			})
		}
		c.JSON(http.StatusOK, types.ToolCallsResponse{Results: results})
		return
	}

	var query string
	if msg.Message.FunctionCall != nil {
		query = queryArg(msg.Message.FunctionCall.Parameters)
	}
	c.JSON(http.StatusOK, types.FunctionCallResponse{Result: h.answer(c.Request.Context(), query)})
}

func (h *WebhookHandler) answer(ctx context.Context, query string) string {
	if query == "" {
		return noQueryResult
	}
	hits, err := h.searcher.Search(ctx, query, 0)
	if err != nil {
		h.logger.Error("knowledge base search failed", zap.String("query", query), zap.Error(err))
		return fmt.Sprintf("Sorry, I encountered an error while searching the knowledge base: %v", err)
	}
	h.logger.Info("knowledge base search", zap.String("query", query), zap.Int("hits", len(hits)))
	return service.FormatForAssistant(query, hits)
}

func queryArg(args map[string]interface{}) string {
	q, _ := args["query"].(string)
	return strings.TrimSpace(q)
}
