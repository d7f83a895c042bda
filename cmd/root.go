/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tieubaoca/vapi-kb/config"
	"github.com/tieubaoca/vapi-kb/utils"
	"go.uber.org/zap"
)

var (
	cfgFile string
	verbose bool

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vapi-kb",
	Short: "Knowledge base tooling for a Vapi voice assistant",
	Long: `vapi-kb ingests crawled website content into Weaviate through the
Unstructured partitioning API, serves that knowledge base to a Vapi
assistant over HTTP webhooks, and configures the assistant itself.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadConfig(cfgFile)
		if err != nil {
			return err
		}
		logger, err = utils.NewLogger(verbose)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml or $HOME/.vapi-kb.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "human-readable debug logging")
}

// requireConfig fails with every validation error for the services a command needs.
func requireConfig(need config.Requirement) error {
	errs := cfg.Validate(need)
	if len(errs) == 0 {
		return nil
	}
	for _, e := range errs {
		printFailure("%s: %s", e.Field, e.Message)
	}
	return fmt.Errorf("invalid configuration (%d errors)", len(errs))
}
