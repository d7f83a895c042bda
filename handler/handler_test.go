package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tieubaoca/vapi-kb/types"
	"go.uber.org/zap"
)

type fakeSearcher struct {
	hits    []types.SearchHit
	err     error
	queries []string
}

func (f *fakeSearcher) Search(_ context.Context, query string, _ int) ([]types.SearchHit, error) {
	f.queries = append(f.queries, query)
	return f.hits, f.err
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(searcher KnowledgeSearcher, secret string) *gin.Engine {
	return NewRouter(RouterConfig{WeaviateURL: "https://kb.example.com", Secret: secret}, searcher, zap.NewNop())
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func sampleHits() []types.SearchHit {
	score := 0.9
	return []types.SearchHit{
		{Title: "Site - Rooms", Text: strings.Repeat("Lake view cabins. ", 30), DocName: "page_a", DocType: "webpage", DocLink: "https://example.com/rooms", Score: &score},
		{Title: "Site - Dining", Text: "Breakfast is served from 7am.", DocName: "page_b", DocType: "webpage"},
	}
}

func TestHealth(t *testing.T) {
	rec := doJSON(t, newTestRouter(&fakeSearcher{}, ""), http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp types.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, ServiceName, resp.Service)
	assert.Equal(t, "https://kb.example.com", resp.Weaviate)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCors(t *testing.T) {
	t.Run("any origin by default", func(t *testing.T) {
		rec := doJSON(t, newTestRouter(&fakeSearcher{}, ""), http.MethodOptions, "/search", nil, map[string]string{
			"Origin":                        "https://app.example.com",
			"Access-Control-Request-Method": "POST",
		})
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "X-Vapi-Secret")
		assert.Equal(t, corsMaxAge, rec.Header().Get("Access-Control-Max-Age"))
	})

	router := NewRouter(RouterConfig{AllowedOrigins: []string{"https://app.example.com/"}}, &fakeSearcher{}, zap.NewNop())

	t.Run("listed origin is echoed", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/search", types.SearchRequest{Query: "x"}, map[string]string{"Origin": "https://app.example.com"})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "Origin", rec.Header().Get("Vary"))
	})

	t.Run("other origin gets no headers", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/search", types.SearchRequest{Query: "x"}, map[string]string{"Origin": "https://evil.example.com"})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

		rec = doJSON(t, router, http.MethodOptions, "/search", nil, map[string]string{"Origin": "https://evil.example.com"})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("server to server calls pass", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/search", types.SearchRequest{Query: "x"}, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestSearch(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		searcher := &fakeSearcher{hits: sampleHits()}
		rec := doJSON(t, newTestRouter(searcher, ""), http.MethodPost, "/search", types.SearchRequest{Query: " cabins "}, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp types.SearchResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "cabins", resp.Query)
		assert.Equal(t, 2, resp.Found)
		assert.Equal(t, "success", resp.Status)
		require.Len(t, resp.Results, 2)
		assert.Equal(t, "page_a", resp.Results[0].Name)
		assert.True(t, strings.HasSuffix(resp.Results[0].Content, "..."))
		assert.Equal(t, "0.90", resp.Results[0].Relevance)
		assert.Equal(t, "N/A", resp.Results[1].Relevance)
		assert.Equal(t, []string{"cabins"}, searcher.queries)
	})

	t.Run("empty query", func(t *testing.T) {
		searcher := &fakeSearcher{}
		rec := doJSON(t, newTestRouter(searcher, ""), http.MethodPost, "/search", types.SearchRequest{}, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "no query provided")
		assert.Empty(t, searcher.queries)
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := doJSON(t, newTestRouter(&fakeSearcher{}, ""), http.MethodPost, "/search", "{", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("store failure", func(t *testing.T) {
		searcher := &fakeSearcher{err: errors.New("connection refused")}
		rec := doJSON(t, newTestRouter(searcher, ""), http.MethodPost, "/search", types.SearchRequest{Query: "x"}, nil)
		assert.Equal(t, http.StatusBadGateway, rec.Code)

		var resp types.SearchResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "error", resp.Status)
		assert.Contains(t, resp.Error, "connection refused")
	})
}

func TestWebhook_LegacyFunctionCall(t *testing.T) {
	searcher := &fakeSearcher{hits: sampleHits()}
	body := map[string]interface{}{
		"message": map[string]interface{}{
			"type": "function-call",
			"functionCall": map[string]interface{}{
				"name":       "search_knowledge_base",
				"parameters": map[string]interface{}{"query": "cabins"},
			},
		},
	}
	rec := doJSON(t, newTestRouter(searcher, ""), http.MethodPost, "/webhook/search-knowledge-base", body, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp types.FunctionCallResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, strings.HasPrefix(resp.Result, "I found 2 relevant document(s) about 'cabins'"))
	assert.Contains(t, resp.Result, "1. **Site - Rooms**")
	assert.Contains(t, resp.Result, "Relevance: 0.90")
}

func TestWebhook_ToolCallList(t *testing.T) {
	searcher := &fakeSearcher{}
	body := map[string]interface{}{
		"message": map[string]interface{}{
			"type": "tool-calls",
			"toolCallList": []interface{}{
				map[string]interface{}{
					"id":   "call_1",
					"type": "function",
					"function": map[string]interface{}{
						"name":      "search_knowledge_base",
						"arguments": map[string]interface{}{"query": "sauna"},
					},
				},
				map[string]interface{}{
					"id":       "call_2",
					"type":     "function",
					"function": map[string]interface{}{"name": "search_knowledge_base", "arguments": map[string]interface{}{}},
				},
			},
		},
	}
	rec := doJSON(t, newTestRouter(searcher, ""), http.MethodPost, "/webhook/search-knowledge-base", body, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp types.ToolCallsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "call_1", resp.Results[0].ToolCallID)
	assert.Equal(t, "I couldn't find any information about 'sauna' in the knowledge base.", resp.Results[0].Result)
	assert.Equal(t, "call_2", resp.Results[1].ToolCallID)
	assert.Equal(t, noQueryResult, resp.Results[1].Result)
	assert.Equal(t, []string{"sauna"}, searcher.queries)
}

func TestWebhook_ToolCallStringArguments(t *testing.T) {
	searcher := &fakeSearcher{}
	body := `{"message":{"type":"tool-calls","toolCallList":[
		{"id":"call_1","type":"function","function":{"name":"search_knowledge_base","arguments":"{\"query\":\"sauna\"}"}},
		{"id":"call_2","type":"function","function":{"name":"search_knowledge_base","arguments":"not json"}}
	]}}`
	rec := doJSON(t, newTestRouter(searcher, ""), http.MethodPost, "/webhook/search-knowledge-base", body, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp types.ToolCallsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "call_1", resp.Results[0].ToolCallID)
	assert.Contains(t, resp.Results[0].Result, "'sauna'")
	assert.Equal(t, noQueryResult, resp.Results[1].Result)
	assert.Equal(t, []string{"sauna"}, searcher.queries)
}

func TestWebhook_SearchErrorStill200(t *testing.T) {
	searcher := &fakeSearcher{err: errors.New("timeout")}
	body := map[string]interface{}{"message": map[string]interface{}{
		"functionCall": map[string]interface{}{"parameters": map[string]interface{}{"query": "x"}},
	}}
	rec := doJSON(t, newTestRouter(searcher, ""), http.MethodPost, "/webhook/search-knowledge-base", body, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Sorry, I encountered an error")
}

func TestWebhook_Secret(t *testing.T) {
	body := map[string]interface{}{"message": map[string]interface{}{}}
	router := newTestRouter(&fakeSearcher{}, "s3cret")

	rec := doJSON(t, router, http.MethodPost, "/webhook/search-knowledge-base", body, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/webhook/search-knowledge-base", body, map[string]string{"X-Vapi-Secret": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/webhook/search-knowledge-base", body, map[string]string{"X-Vapi-Secret": "s3cret"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), noQueryResult)

	// /search is not behind the secret.
	rec = doJSON(t, router, http.MethodPost, "/search", types.SearchRequest{Query: "x"}, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
