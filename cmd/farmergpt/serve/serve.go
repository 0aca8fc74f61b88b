// Package servecmder provides the serve command, which runs the HTTP API.
package servecmder

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/farmergpt/farmergpt/api"
	"github.com/farmergpt/farmergpt/api/mcp"
	"github.com/farmergpt/farmergpt/cmd/farmergpt/stack"
	"github.com/farmergpt/farmergpt/pkg/cliui"
	"github.com/farmergpt/farmergpt/pkg/config"
	"github.com/farmergpt/farmergpt/pkg/logger"
)

// shutdownTimeout bounds both the HTTP drain and the persistence drain.
const shutdownTimeout = 15 * time.Second

type ServeCommander struct {
	flags       stack.Flags
	listen      string
	frontendDir string
	noMCP       bool
	debug       bool
	configDir   string

	viper  *viper.Viper
	logger *slog.Logger
}

const serveLongDesc string = `Run the FarmerGPT HTTP API.

Routes:
  GET  /health           Liveness check
  POST /ask              Answer a JSON question {question, language, session_id}
  POST /ask/audio        Answer a recorded question (multipart "audio" field)
  GET  /conversations    Recent stored exchanges (?limit=, ?session_id=)
  GET  /metrics          Prometheus metrics
  POST /mcp              MCP endpoint exposing the ask_farming_advisor tool

Settings come from flags, FARMERGPT_* environment variables (plus the legacy
OPENROUTER_API_KEY, SUPABASE_URL and SUPABASE_KEY), a .env file, and
config.toml in that order of precedence.`

const serveShortDesc string = "Run the FarmerGPT API server"

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			keys := append([]string{config.FlagListen, config.FlagFrontendDir}, stack.FlagKeys...)
			v, err := stack.LoadViper(cmd, keys...)
			if err != nil {
				return err
			}
			cmder.viper = v
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return cmder.run(ctx)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagListen, &cmder.listen)
	config.AddStringFlag(cmd, config.Flags, config.FlagFrontendDir, &cmder.frontendDir)
	cmder.flags.AddFlags(cmd)
	cmd.Flags().BoolVar(&cmder.noMCP, "no-mcp", false, "Disable the /mcp endpoint")

	return cmd
}

func (c *ServeCommander) run(ctx context.Context) error {
	c.logger = logger.New(logger.WithDebug(c.debug), logger.WithPretty(true))

	var s *stack.Stack
	err := cliui.Step(os.Stdout, "Starting farming advisor", func() error {
		var err error
		s, err = stack.Build(ctx, c.viper, c.configDir, c.logger)
		return err
	})
	if err != nil {
		return err
	}

	mcpServer, err := mcp.NewServer(mcp.Config{
		Advisor: s.Advisor,
		Noop:    c.noMCP,
		Logger:  c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating MCP server: %w", err)
	}

	apiServer, err := api.NewServer(api.Config{
		ListenAddr:  c.viper.GetString("api.listen"),
		FrontendDir: c.viper.GetString("api.frontend_dir"),
		Metrics:     s.Metrics,
		MCPHandler:  mcpServer.Handler(),
	}, s.Advisor, s.Storage, c.logger)
	if err != nil {
		return err
	}

	errChan := make(chan error, 1)
	go func() {
		if err := apiServer.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	var runErr error
	select {
	case runErr = <-errChan:
	case <-ctx.Done():
		c.logger.Info("received signal, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := apiServer.ShutdownWithContext(shutdownCtx); err != nil {
		c.logger.Warn("API server shutdown", "error", err)
	}
	if err := s.Shutdown(shutdownCtx); err != nil {
		c.logger.Warn("persistence shutdown incomplete", "error", err)
	}

	return runErr
}
