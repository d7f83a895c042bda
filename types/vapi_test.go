package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssistantModel_KeepsUnknownSettings(t *testing.T) {
	raw := `{"provider":"openai","model":"gpt-4","toolIds":["a"],"temperature":0.3,"maxTokens":250,"emotionRecognitionEnabled":true}`

	var model AssistantModel
	require.NoError(t, json.Unmarshal([]byte(raw), &model))
	assert.Equal(t, "gpt-4", model.Model)
	assert.Equal(t, []string{"a"}, model.ToolIDs)
	require.Len(t, model.Extra, 3)
	assert.JSONEq(t, `0.3`, string(model.Extra["temperature"]))

	model.ToolIDs = append(model.ToolIDs, "b")
	out, err := json.Marshal(model)
	require.NoError(t, err)
	assert.JSONEq(t, `{"provider":"openai","model":"gpt-4","toolIds":["a","b"],"temperature":0.3,"maxTokens":250,"emotionRecognitionEnabled":true}`, string(out))
}

func TestAssistantModel_KnownFieldsWin(t *testing.T) {
	model := AssistantModel{
		Provider: "openai",
		Model:    "gpt-4",
		Extra:    map[string]json.RawMessage{"model": json.RawMessage(`"stale"`)},
	}
	out, err := json.Marshal(model)
	require.NoError(t, err)
	assert.JSONEq(t, `{"provider":"openai","model":"gpt-4"}`, string(out))
}

func TestAssistantUpdate_PointerModelUsesExtras(t *testing.T) {
	update := AssistantUpdate{Model: &AssistantModel{
		Provider: "openai",
		Model:    "gpt-4",
		Extra:    map[string]json.RawMessage{"temperature": json.RawMessage(`0.7`)},
	}}
	out, err := json.Marshal(update)
	require.NoError(t, err)
	assert.JSONEq(t, `{"model":{"provider":"openai","model":"gpt-4","temperature":0.7}}`, string(out))
}
