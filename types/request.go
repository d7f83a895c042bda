package types

import "encoding/json"

type SearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

// SearchHit is a document returned by the vector store.
type SearchHit struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Text    string   `json:"text"`
	DocName string   `json:"doc_name"`
	DocType string   `json:"doc_type"`
	DocLink string   `json:"doc_link"`
	Source  string   `json:"source"`
	Score   *float64 `json:"score,omitempty"`
}

// VapiServerMessage is the body Vapi posts to a tool server.
type VapiServerMessage struct {
	Message struct {
		Type         string        `json:"type"`
		FunctionCall *FunctionCall `json:"functionCall,omitempty"`
		ToolCallList []ToolCall    `json:"toolCallList,omitempty"`
	} `json:"message"`
}

type FunctionCall struct {
	Name       string                 `json:"name"`
	Parameters map[string]interface{} `json:"parameters"`
}

type ToolCall struct {
	ID       string           `json:"id"`
	Type     string           `json:"type"`
	Function ToolCallFunction `json:"function"`
}

// ToolCallFunction carries arguments either as a JSON object or, in the
// OpenAI style, as a string holding the encoded object.
type ToolCallFunction struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// Args decodes Arguments. Malformed or missing arguments yield nil.
func (f ToolCallFunction) Args() map[string]interface{} {
	if len(f.Arguments) == 0 {
		return nil
	}
	raw := []byte(f.Arguments)
	var encoded string
	if err := json.Unmarshal(raw, &encoded); err == nil {
		raw = []byte(encoded)
	}
	var args map[string]interface{}
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil
	}
	return args
}
