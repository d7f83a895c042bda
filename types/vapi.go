package types

import (
	"encoding/json"

	"github.com/sashabaranov/go-openai"
)

// Assistant is the subset of a Vapi assistant this tool reads and writes.
type Assistant struct {
	ID           string                 `json:"id"`
	OrgID        string                 `json:"orgId,omitempty"`
	Name         string                 `json:"name"`
	Model        *AssistantModel        `json:"model,omitempty"`
	Voice        map[string]interface{} `json:"voice,omitempty"`
	FirstMessage string                 `json:"firstMessage,omitempty"`
	ServerURL    string                 `json:"serverUrl,omitempty"`
	CreatedAt    string                 `json:"createdAt,omitempty"`
	UpdatedAt    string                 `json:"updatedAt,omitempty"`
}

// AssistantModel keeps settings it has no field for (temperature, maxTokens
// and so on) in Extra so a read-modify-write does not reset them.
type AssistantModel struct {
	Provider string                         `json:"provider"`
	Model    string                         `json:"model"`
	Messages []openai.ChatCompletionMessage `json:"messages,omitempty"`
	ToolIDs  []string                       `json:"toolIds,omitempty"`
	Extra    map[string]json.RawMessage     `json:"-"`
}

type assistantModelFields AssistantModel

var assistantModelKeys = []string{"provider", "model", "messages", "toolIds"}

func (m *AssistantModel) UnmarshalJSON(data []byte) error {
	var known assistantModelFields
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for _, key := range assistantModelKeys {
		delete(all, key)
	}
	*m = AssistantModel(known)
	m.Extra = nil
	if len(all) > 0 {
		m.Extra = all
	}
	return nil
}

func (m AssistantModel) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(assistantModelFields(m))
	if err != nil || len(m.Extra) == 0 {
		return known, err
	}
	out := make(map[string]json.RawMessage, len(m.Extra)+len(assistantModelKeys))
	for key, value := range m.Extra {
		out[key] = value
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(known, &fields); err != nil {
		return nil, err
	}
	for key, value := range fields {
		out[key] = value
	}
	return json.Marshal(out)
}

// SystemPrompt returns the content of the first system message, if any.
func (m *AssistantModel) SystemPrompt() string {
	if m == nil {
		return ""
	}
	for _, msg := range m.Messages {
		if msg.Role == openai.ChatMessageRoleSystem {
			return msg.Content
		}
	}
	return ""
}

// AssistantUpdate is the PATCH body for /assistant/{id}. Nil fields are omitted.
type AssistantUpdate struct {
	Model        *AssistantModel        `json:"model,omitempty"`
	Voice        map[string]interface{} `json:"voice,omitempty"`
	FirstMessage string                 `json:"firstMessage,omitempty"`
	ServerURL    string                 `json:"serverUrl,omitempty"`
}

// ToolServer is where Vapi sends tool calls.
type ToolServer struct {
	URL            string            `json:"url"`
	Secret         string            `json:"secret,omitempty"`
	TimeoutSeconds int               `json:"timeoutSeconds,omitempty"`
	Headers        map[string]string `json:"headers,omitempty"`
}

// ToolSpec is the POST body for /tool.
type ToolSpec struct {
	Type     string                    `json:"type"`
	Function openai.FunctionDefinition `json:"function"`
	Server   *ToolServer               `json:"server,omitempty"`
}

type Tool struct {
	ID       string                    `json:"id"`
	Type     string                    `json:"type"`
	Function openai.FunctionDefinition `json:"function"`
	Server   *ToolServer               `json:"server,omitempty"`
}

type PhoneNumber struct {
	ID          string `json:"id"`
	Number      string `json:"number"`
	Provider    string `json:"provider"`
	Name        string `json:"name,omitempty"`
	AssistantID string `json:"assistantId,omitempty"`
}
