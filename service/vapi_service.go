package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tieubaoca/vapi-kb/config"
	"github.com/tieubaoca/vapi-kb/types"
)

const DEFAULT_VAPI_URL = "https://api.vapi.ai"

// VapiClient is a thin JSON client for the Vapi REST API.
type VapiClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewVapiClient(cfg config.VapiConfig) *VapiClient {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DEFAULT_VAPI_URL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &VapiClient{
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *VapiClient) ListAssistants(ctx context.Context, limit int) ([]types.Assistant, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", fmt.Sprint(limit))
	}
	var assistants []types.Assistant
	if err := c.do(ctx, http.MethodGet, "/assistant", query, nil, &assistants, http.StatusOK); err != nil {
		return nil, err
	}
	return assistants, nil
}

func (c *VapiClient) GetAssistant(ctx context.Context, id string) (*types.Assistant, error) {
	var assistant types.Assistant
	if err := c.do(ctx, http.MethodGet, "/assistant/"+url.PathEscape(id), nil, nil, &assistant, http.StatusOK); err != nil {
		return nil, err
	}
	return &assistant, nil
}

// FindAssistantByName returns the first assistant called name, or nil.
func (c *VapiClient) FindAssistantByName(ctx context.Context, name string) (*types.Assistant, error) {
	assistants, err := c.ListAssistants(ctx, 0)
	if err != nil {
		return nil, err
	}
	for i := range assistants {
		if assistants[i].Name == name {
			return &assistants[i], nil
		}
	}
	return nil, nil
}

func (c *VapiClient) UpdateAssistant(ctx context.Context, id string, update types.AssistantUpdate) (*types.Assistant, error) {
	var assistant types.Assistant
	if err := c.do(ctx, http.MethodPatch, "/assistant/"+url.PathEscape(id), nil, update, &assistant, http.StatusOK); err != nil {
		return nil, err
	}
	return &assistant, nil
}

func (c *VapiClient) CreateTool(ctx context.Context, spec types.ToolSpec) (*types.Tool, error) {
	var tool types.Tool
	if err := c.do(ctx, http.MethodPost, "/tool", nil, spec, &tool, http.StatusOK, http.StatusCreated); err != nil {
		return nil, err
	}
	return &tool, nil
}

func (c *VapiClient) ListPhoneNumbers(ctx context.Context) ([]types.PhoneNumber, error) {
	var numbers []types.PhoneNumber
	if err := c.do(ctx, http.MethodGet, "/phone-number", nil, nil, &numbers, http.StatusOK); err != nil {
		return nil, err
	}
	return numbers, nil
}

func (c *VapiClient) do(ctx context.Context, method, path string, query url.Values, in, out interface{}, expected ...int) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("vapi %s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	ok := false
	for _, code := range expected {
		if resp.StatusCode == code {
			ok = true
			break
		}
	}
	if !ok {
		return newAPIError("vapi", resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode vapi response: %w", err)
	}
	return nil
}
