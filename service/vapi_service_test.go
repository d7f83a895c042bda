package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tieubaoca/vapi-kb/config"
	"github.com/tieubaoca/vapi-kb/types"
)

// fakeVapi is an in-memory stand-in for the Vapi REST API.
type fakeVapi struct {
	mu         sync.Mutex
	assistants []types.Assistant
	patches    []map[string]interface{}
	tools      []map[string]interface{}
	auth       []string
}

func (f *fakeVapi) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.auth = append(f.auth, r.Header.Get("Authorization"))
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/assistant":
		json.NewEncoder(w).Encode(f.assistants)
	case r.Method == http.MethodGet && r.URL.Path == "/phone-number":
		json.NewEncoder(w).Encode([]types.PhoneNumber{{ID: "pn1", Number: "+15555550100", Provider: "twilio"}})
	case r.Method == http.MethodPatch && len(r.URL.Path) > len("/assistant/"):
		id := r.URL.Path[len("/assistant/"):]
		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		f.patches = append(f.patches, body)
		for _, a := range f.assistants {
			if a.ID == id {
				json.NewEncoder(w).Encode(a)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"assistant not found"}`))
	case r.Method == http.MethodGet && len(r.URL.Path) > len("/assistant/"):
		id := r.URL.Path[len("/assistant/"):]
		for _, a := range f.assistants {
			if a.ID == id {
				json.NewEncoder(w).Encode(a)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
	case r.Method == http.MethodPost && r.URL.Path == "/tool":
		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		f.tools = append(f.tools, body)
		body["id"] = "tool-1"
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(body)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newTestVapi(t *testing.T, fake *fakeVapi) *VapiClient {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	return NewVapiClient(config.VapiConfig{BaseURL: srv.URL + "/", APIKey: "test-key"})
}

func TestVapiClient_Assistants(t *testing.T) {
	fake := &fakeVapi{assistants: []types.Assistant{
		{ID: "a1", Name: "Sam"},
		{ID: "a2", Name: "Alex", FirstMessage: "Hi"},
	}}
	client := newTestVapi(t, fake)
	ctx := context.Background()

	assistants, err := client.ListAssistants(ctx, 5)
	require.NoError(t, err)
	assert.Len(t, assistants, 2)

	alex, err := client.FindAssistantByName(ctx, "Alex")
	require.NoError(t, err)
	require.NotNil(t, alex)
	assert.Equal(t, "a2", alex.ID)

	missing, err := client.FindAssistantByName(ctx, "Nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)

	got, err := client.GetAssistant(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "Sam", got.Name)

	_, err = client.GetAssistant(ctx, "zzz")
	assert.True(t, IsStatus(err, http.StatusNotFound))

	for _, header := range fake.auth {
		assert.Equal(t, "Bearer test-key", header)
	}
}

func TestVapiClient_CreateToolAcceptsCreated(t *testing.T) {
	client := newTestVapi(t, &fakeVapi{})
	tool, err := client.CreateTool(context.Background(), types.ToolSpec{Type: "function"})
	require.NoError(t, err)
	assert.Equal(t, "tool-1", tool.ID)
}

func TestVapiClient_PhoneNumbers(t *testing.T) {
	client := newTestVapi(t, &fakeVapi{})
	numbers, err := client.ListPhoneNumbers(context.Background())
	require.NoError(t, err)
	require.Len(t, numbers, 1)
	assert.Equal(t, "+15555550100", numbers[0].Number)
}

func TestVapiClient_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Invalid Key"}`))
	}))
	defer srv.Close()

	client := NewVapiClient(config.VapiConfig{BaseURL: srv.URL})
	_, err := client.ListAssistants(context.Background(), 0)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "vapi", apiErr.Service)
	assert.Contains(t, apiErr.Body, "Invalid Key")
}
