package api

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/farmergpt/farmergpt/advisor"
	"github.com/farmergpt/farmergpt/pkg/logger"
	"github.com/farmergpt/farmergpt/pkg/storage"
)

// Asker runs one question through the advisor pipeline.
type Asker interface {
	Ask(ctx context.Context, in advisor.Input) (*advisor.Reply, error)
}

// Server is the HTTP front of the advisor.
type Server struct {
	config Config
	asker  Asker
	storer storage.Driver
	logger *slog.Logger
	app    *fiber.App
}

// NewServer creates a new API server.
// The storer backs GET /conversations and may be nil, in which case the
// route answers 503.
func NewServer(config Config, asker Asker, storer storage.Driver, log *slog.Logger) (*Server, error) {
	if asker == nil {
		return nil, errors.New("advisor is required")
	}
	if log == nil {
		log = logger.Nop()
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		BodyLimit:             maxAudioBytes,
	})

	s := &Server{
		config: config,
		asker:  asker,
		storer: storer,
		logger: log,
		app:    app,
	}

	app.Use(cors.New())

	app.Get("/health", s.handleHealth)
	app.Post("/ask", s.handleAsk)
	app.Post("/ask/audio", s.handleAskAudio)
	app.Get("/conversations", s.handleListConversations)

	if config.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(config.Metrics.Handler()))
	}
	if config.MCPHandler != nil {
		app.All("/mcp", adaptor.HTTPHandler(config.MCPHandler))
	}

	s.mountFrontend()

	return s, nil
}

// mountFrontend serves config.FrontendDir at "/" when it holds an index.html.
func (s *Server) mountFrontend() {
	dir := s.config.FrontendDir
	if dir == "" {
		s.app.Get("/", s.handleRoot(runningMessage))
		return
	}

	if _, err := os.Stat(dir); err != nil {
		s.logger.Warn("frontend directory not found, serving API only",
			"frontend_dir", dir,
			"error", err,
		)
		s.app.Get("/", s.handleRoot(runningMessage))
		return
	}

	if _, err := os.Stat(filepath.Join(dir, "index.html")); err != nil {
		s.app.Static("/static", filepath.Join(dir, "static"))
		s.app.Get("/", s.handleRoot(missingIndexMessage))
		return
	}

	s.app.Static("/", dir)
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		"listen", s.config.ListenAddr,
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// ShutdownWithContext stops accepting connections and waits for in-flight
// requests until ctx is done.
func (s *Server) ShutdownWithContext(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
