package types

type SearchResult struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Title     string `json:"title,omitempty"`
	Link      string `json:"link,omitempty"`
	Content   string `json:"content"`
	Relevance string `json:"relevance"`
}

type SearchResponse struct {
	Query   string         `json:"query"`
	Found   int            `json:"found"`
	Results []SearchResult `json:"results"`
	Status  string         `json:"status"`
	Error   string         `json:"error,omitempty"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Service  string `json:"service"`
	Weaviate string `json:"weaviate,omitempty"`
}

// FunctionCallResponse answers a legacy functionCall message.
type FunctionCallResponse struct {
	Result string `json:"result"`
}

type ToolCallResult struct {
	ToolCallID string `json:"toolCallId"`
	Result     string `json:"result"`
}

// ToolCallsResponse answers a toolCalls message.
type ToolCallsResponse struct {
	Results []ToolCallResult `json:"results"`
}
