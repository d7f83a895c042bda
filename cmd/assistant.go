/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tieubaoca/vapi-kb/config"
	"github.com/tieubaoca/vapi-kb/service"
	"github.com/tieubaoca/vapi-kb/types"
)

var assistantCmd = &cobra.Command{
	Use:   "assistant",
	Short: "Inspect and configure the Vapi assistant",
}

var assistantListCmd = &cobra.Command{
	Use:   "list",
	Short: "List assistants on the Vapi account",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireConfig(config.NeedVapi); err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")
		assistants, err := service.NewVapiClient(cfg.Vapi).ListAssistants(cmd.Context(), limit)
		if err != nil {
			return err
		}
		printSuccess("Found %d assistants", len(assistants))
		for _, a := range assistants {
			model := "-"
			if a.Model != nil {
				model = a.Model.Provider + "/" + a.Model.Model
			}
			fmt.Printf("  %s  %-20s %-24s tools=%d\n", a.ID, a.Name, model, toolCount(a.Model))
		}
		return nil
	},
}

var assistantConfigureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Rewrite the assistant's prompt, model and first message",
	Long: `Finds the assistant by name and updates its model, system prompt and
first message. The prompt is rendered from --prompt-file (a Go template
with .Name, .KnowledgeName and .ToolName) or from the built-in default.
The current voice and attached tools are kept.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		applyAssistantFlags(cmd)
		if err := requireConfig(config.NeedVapi); err != nil {
			return err
		}
		toolIDs, _ := cmd.Flags().GetStringSlice("tool-id")

		svc := service.NewAssistantService(service.NewVapiClient(cfg.Vapi), logger)
		assistant, err := svc.Configure(cmd.Context(), service.ConfigureOptions{
			Name:          cfg.Assistant.Name,
			Provider:      cfg.Assistant.Provider,
			Model:         cfg.Assistant.Model,
			FirstMessage:  cfg.Assistant.FirstMessage,
			PromptFile:    cfg.Assistant.PromptFile,
			KnowledgeName: cfg.Assistant.KnowledgeName,
			ToolName:      cfg.Assistant.ToolName,
			ServerURL:     cfg.Assistant.ServerURL,
			ToolIDs:       toolIDs,
		})
		if err != nil {
			printFailure("Failed to configure %s: %v", cfg.Assistant.Name, err)
			return err
		}
		printSuccess("Updated %s (%s)", assistant.Name, assistant.ID)
		return nil
	},
}

var assistantCreateToolCmd = &cobra.Command{
	Use:   "create-tool",
	Short: "Register the knowledge base search tool with Vapi",
	Long: `Creates a function tool that sends {"query": "..."} to the webhook
server and, unless --attach=false, attaches it to the assistant.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		applyAssistantFlags(cmd)
		if err := requireConfig(config.NeedVapi); err != nil {
			return err
		}
		attach, _ := cmd.Flags().GetBool("attach")
		opts := service.ToolOptions{
			Name:       cfg.Assistant.ToolName,
			WebhookURL: cfg.Assistant.WebhookURL,
			Secret:     cfg.Server.Secret,
		}
		if attach {
			opts.Attach = cfg.Assistant.Name
		}

		svc := service.NewAssistantService(service.NewVapiClient(cfg.Vapi), logger)
		tool, err := svc.CreateSearchTool(cmd.Context(), opts)
		if err != nil {
			if tool != nil {
				printFailure("Created tool %s but could not attach it: %v", tool.ID, err)
			} else {
				printFailure("Failed to create tool: %v", err)
			}
			return err
		}
		printSuccess("Created tool %s (%s) -> %s", tool.Function.Name, tool.ID, cfg.Assistant.WebhookURL)
		if attach {
			printSuccess("Attached to %s", cfg.Assistant.Name)
		}
		return nil
	},
}

func applyAssistantFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("name") {
		cfg.Assistant.Name, _ = flags.GetString("name")
	}
	if flags.Changed("model") {
		cfg.Assistant.Model, _ = flags.GetString("model")
	}
	if flags.Changed("prompt-file") {
		cfg.Assistant.PromptFile, _ = flags.GetString("prompt-file")
	}
	if flags.Changed("server-url") {
		cfg.Assistant.ServerURL, _ = flags.GetString("server-url")
	}
	if flags.Changed("webhook-url") {
		cfg.Assistant.WebhookURL, _ = flags.GetString("webhook-url")
	}
}

func init() {
	rootCmd.AddCommand(assistantCmd)
	assistantCmd.AddCommand(assistantListCmd, assistantConfigureCmd, assistantCreateToolCmd)

	assistantListCmd.Flags().Int("limit", 0, "Maximum assistants to list (0 = API default)")

	assistantConfigureCmd.Flags().String("name", "Alex", "Assistant name to look up")
	assistantConfigureCmd.Flags().String("model", "gpt-4", "Model name")
	assistantConfigureCmd.Flags().String("prompt-file", "", "Template file for the system prompt")
	assistantConfigureCmd.Flags().String("server-url", "", "Server URL for assistant events")
	assistantConfigureCmd.Flags().StringSlice("tool-id", nil, "Tool ids to attach")

	assistantCreateToolCmd.Flags().String("name", "Alex", "Assistant to attach the tool to")
	assistantCreateToolCmd.Flags().String("webhook-url", "", "Public URL of /webhook/search-knowledge-base")
	assistantCreateToolCmd.Flags().Bool("attach", true, "Attach the tool to the assistant")
}

func toolCount(model *types.AssistantModel) int {
	if model == nil {
		return 0
	}
	return len(model.ToolIDs)
}
