package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tieubaoca/vapi-kb/database"
	"github.com/tieubaoca/vapi-kb/types"
	"github.com/tieubaoca/vapi-kb/utils"
	"go.uber.org/zap"
)

const (
	SearchModeLike     = "like"
	SearchModeNearText = "near_text"

	defaultSearchLimit = 5
	fallbackLimit      = 3
	contentPreviewLen  = 300
	assistantPreview   = 200
	assistantTopN      = 3
)

// SearchService queries the knowledge base on behalf of the HTTP handlers.
type SearchService struct {
	store  database.Searcher
	mode   string
	logger *zap.Logger
}

func NewSearchService(store database.Searcher, mode string, logger *zap.Logger) *SearchService {
	if mode == "" {
		mode = SearchModeLike
	}
	return &SearchService{store: store, mode: mode, logger: logger}
}

// Search returns up to limit hits. A Like query rejected by GraphQL falls
// back to an unfiltered Get of three records.
func (s *SearchService) Search(ctx context.Context, query string, limit int) ([]types.SearchHit, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	var (
		hits []types.SearchHit
		err  error
	)
	switch s.mode {
	case SearchModeNearText:
		hits, err = s.store.SearchNearText(ctx, query, limit)
	default:
		hits, err = s.store.SearchLike(ctx, query, limit)
	}

	var gqlErr *database.GraphQLError
	if errors.As(err, &gqlErr) {
		s.logger.Warn("search query rejected, falling back to plain get",
			zap.String("query", query),
			zap.Error(err))
		return s.store.SearchAll(ctx, fallbackLimit)
	}
	return hits, err
}

// FormatResults shapes hits for the /search endpoint.
func FormatResults(hits []types.SearchHit) []types.SearchResult {
	results := make([]types.SearchResult, 0, len(hits))
	for _, hit := range hits {
		results = append(results, types.SearchResult{
			Name:      orDefault(hit.DocName, "Unknown"),
			Type:      orDefault(hit.DocType, "Unknown"),
			Title:     hit.Title,
			Link:      hit.DocLink,
			Content:   utils.Truncate(orDefault(hit.Text, "No content"), contentPreviewLen),
			Relevance: relevance(hit.Score),
		})
	}
	return results
}

// FormatForAssistant renders hits as text the assistant reads back to the caller.
func FormatForAssistant(query string, hits []types.SearchHit) string {
	if len(hits) == 0 {
		return fmt.Sprintf("I couldn't find any information about '%s' in the knowledge base.", query)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "I found %d relevant document(s) about '%s':\n\n", len(hits), query)
	for i, hit := range hits {
		if i == assistantTopN {
			break
		}
		fmt.Fprintf(&b, "%d. **%s**\n", i+1, orDefault(hit.Title, "Untitled Document"))
		fmt.Fprintf(&b, "   Source: %s\n", orDefault(hit.DocLink, orDefault(hit.Source, "Unknown source")))
		fmt.Fprintf(&b, "   Content: %s\n", utils.Truncate(hit.Text, assistantPreview))
		fmt.Fprintf(&b, "   Relevance: %s\n\n", relevance(hit.Score))
	}
	if len(hits) > assistantTopN {
		fmt.Fprintf(&b, "...and %d more documents found.", len(hits)-assistantTopN)
	}
	return strings.TrimRight(b.String(), "\n")
}

func relevance(score *float64) string {
	if score == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", *score)
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
