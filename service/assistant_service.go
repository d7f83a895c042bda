package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"text/template"

	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
	"github.com/tieubaoca/vapi-kb/types"
	"go.uber.org/zap"
)

const defaultPromptTemplate = `You're {{.Name}}. You're helpful, conversational, and have access to a {{.KnowledgeName}} full of information.

Here's how you work:
- For ANY question or topic someone brings up, use the {{.ToolName}} tool to check your {{.KnowledgeName}} first
- Talk like a real person, casual and friendly
- Don't announce that you're "searching". Just find the info and share it naturally
- If you find relevant info, weave it into your response conversationally
- If you don't find anything specific, say so simply and offer to help another way

Your vibe:
- Conversational and warm, not robotic or formal
- Curious and engaged with what people are asking about
- Straightforward, no corporate speak

Just be yourself and help people find what they need from the {{.KnowledgeName}}.`

// AssistantAPI is the part of VapiClient the assistant service uses.
type AssistantAPI interface {
	FindAssistantByName(ctx context.Context, name string) (*types.Assistant, error)
	UpdateAssistant(ctx context.Context, id string, update types.AssistantUpdate) (*types.Assistant, error)
	CreateTool(ctx context.Context, spec types.ToolSpec) (*types.Tool, error)
}

type PromptData struct {
	Name          string
	KnowledgeName string
	ToolName      string
}

type ConfigureOptions struct {
	Name         string
	Provider     string
	Model        string
	FirstMessage string
	// PromptFile overrides the built-in prompt template when set.
	PromptFile    string
	KnowledgeName string
	ToolName      string
	ServerURL     string
	ToolIDs       []string
}

type ToolOptions struct {
	Name        string
	Description string
	WebhookURL  string
	Secret      string
	// Attach adds the new tool to this assistant when set.
	Attach string
}

var ErrAssistantNotFound = errors.New("assistant not found")

type AssistantService struct {
	api    AssistantAPI
	logger *zap.Logger
}

func NewAssistantService(api AssistantAPI, logger *zap.Logger) *AssistantService {
	return &AssistantService{api: api, logger: logger}
}

// RenderPrompt executes the prompt template in file, or the built-in one.
func RenderPrompt(file string, data PromptData) (string, error) {
	text := defaultPromptTemplate
	if file != "" {
		raw, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read prompt file: %w", err)
		}
		text = string(raw)
	}
	tmpl, err := template.New("prompt").Option("missingkey=error").Parse(text)
	if err != nil {
		return "", fmt.Errorf("failed to parse prompt template: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}
	return buf.String(), nil
}

// Configure rewrites the named assistant's model, prompt and first message.
// The current voice, existing tool ids and other model settings are kept.
func (s *AssistantService) Configure(ctx context.Context, opts ConfigureOptions) (*types.Assistant, error) {
	assistant, err := s.api.FindAssistantByName(ctx, opts.Name)
	if err != nil {
		return nil, err
	}
	if assistant == nil {
		return nil, fmt.Errorf("%w: %s", ErrAssistantNotFound, opts.Name)
	}

	prompt, err := RenderPrompt(opts.PromptFile, PromptData{
		Name:          opts.Name,
		KnowledgeName: opts.KnowledgeName,
		ToolName:      opts.ToolName,
	})
	if err != nil {
		return nil, err
	}

	update := types.AssistantUpdate{
		Model: &types.AssistantModel{
			Provider: opts.Provider,
			Model:    opts.Model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: prompt},
			},
			ToolIDs: mergeToolIDs(assistant.Model, opts.ToolIDs),
			Extra:   modelExtra(assistant.Model),
		},
		Voice:        assistant.Voice,
		FirstMessage: opts.FirstMessage,
		ServerURL:    opts.ServerURL,
	}

	s.logger.Info("updating assistant",
		zap.String("id", assistant.ID),
		zap.String("name", assistant.Name),
		zap.Int("tools", len(update.Model.ToolIDs)))
	return s.api.UpdateAssistant(ctx, assistant.ID, update)
}

// CreateSearchTool registers the knowledge base search function and
// optionally attaches it to an assistant.
func (s *AssistantService) CreateSearchTool(ctx context.Context, opts ToolOptions) (*types.Tool, error) {
	if opts.WebhookURL == "" {
		return nil, fmt.Errorf("webhook url is required")
	}
	description := opts.Description
	if description == "" {
		description = "Search the knowledge base for information relevant to the caller's question."
	}

	spec := types.ToolSpec{
		Type: string(openai.ToolTypeFunction),
		Function: openai.FunctionDefinition{
			Name:        opts.Name,
			Description: description,
			Parameters: jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"query": {
						Type:        jsonschema.String,
						Description: "The question or topic to look up",
					},
				},
				Required: []string{"query"},
			},
		},
		Server: &types.ToolServer{
			URL:    opts.WebhookURL,
			Secret: opts.Secret,
		},
	}

	tool, err := s.api.CreateTool(ctx, spec)
	if err != nil {
		return nil, err
	}
	s.logger.Info("created tool", zap.String("id", tool.ID), zap.String("name", opts.Name))

	if opts.Attach == "" {
		return tool, nil
	}
	if err := s.attachTool(ctx, opts.Attach, tool.ID); err != nil {
		return tool, err
	}
	return tool, nil
}

func (s *AssistantService) attachTool(ctx context.Context, name, toolID string) error {
	assistant, err := s.api.FindAssistantByName(ctx, name)
	if err != nil {
		return err
	}
	if assistant == nil {
		return fmt.Errorf("%w: %s", ErrAssistantNotFound, name)
	}

	model := types.AssistantModel{Provider: "openai", Model: "gpt-4"}
	if assistant.Model != nil {
		model = *assistant.Model
	}
	model.ToolIDs = mergeToolIDs(assistant.Model, []string{toolID})

	s.logger.Info("attaching tool", zap.String("assistant", assistant.ID), zap.String("tool", toolID))
	_, err = s.api.UpdateAssistant(ctx, assistant.ID, types.AssistantUpdate{Model: &model})
	return err
}

func modelExtra(current *types.AssistantModel) map[string]json.RawMessage {
	if current == nil {
		return nil
	}
	return current.Extra
}

func mergeToolIDs(current *types.AssistantModel, extra []string) []string {
	seen := make(map[string]bool)
	var ids []string
	add := func(id string) {
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		ids = append(ids, id)
	}
	if current != nil {
		for _, id := range current.ToolIDs {
			add(id)
		}
	}
	for _, id := range extra {
		add(id)
	}
	return ids
}
