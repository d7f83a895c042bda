/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/tieubaoca/vapi-kb/config"
	"github.com/tieubaoca/vapi-kb/database"
	"github.com/tieubaoca/vapi-kb/handler"
	"github.com/tieubaoca/vapi-kb/service"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the search and Vapi webhook server",
	Long: `Starts an HTTP server exposing /health, /search and
/webhook/search-knowledge-base, backed by the Weaviate knowledge base.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if port, _ := cmd.Flags().GetString("port"); cmd.Flags().Changed("port") {
			cfg.Server.Port = port
		}
		if err := requireConfig(config.NeedWeaviate); err != nil {
			return err
		}
		if !verbose {
			gin.SetMode(gin.ReleaseMode)
		}

		store, err := database.NewWeaviateStore(cfg.Weaviate)
		if err != nil {
			return err
		}
		searchService := service.NewSearchService(store, cfg.Weaviate.SearchMode, logger)
		router := handler.NewRouter(handler.RouterConfig{
			WeaviateURL:    store.URL(),
			Secret:         cfg.Server.Secret,
			AllowedOrigins: cfg.Server.AllowedOrigins,
		}, searchService, logger)

		srv := &http.Server{
			Addr:              net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info("starting server",
				zap.String("addr", srv.Addr),
				zap.String("weaviate", store.URL()),
				zap.String("class", store.ClassName()),
				zap.Bool("secret", cfg.Server.Secret != ""))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			return err
		case <-cmd.Context().Done():
		}

		logger.Info("shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "5003", "port to listen on (overrides PORT)")
}
