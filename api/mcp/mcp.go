// Package mcp exposes the farming advisor as an MCP (Model Context Protocol)
// tool over streamable HTTP.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/farmergpt/farmergpt/advisor"
	"github.com/farmergpt/farmergpt/pkg/utils"
)

var (
	askToolName    = "ask_farming_advisor"
	askDescription = "Ask the expert farming advisor a question about crops, soil, pests, irrigation or livestock. " +
		"Answers are practical and can be requested in English, Telugu, Malayalam, Kannada, Hindi or Tenglish."
)

// Asker runs one question through the advisor pipeline.
type Asker interface {
	Ask(ctx context.Context, in advisor.Input) (*advisor.Reply, error)
}

type Config struct {
	// Advisor answers tool calls
	Advisor Asker

	// Noop for empty MCP server
	Noop bool

	// Logger is the configured slog logger
	Logger *slog.Logger
}

type Server struct {
	config    Config
	mcpServer *mcp.Server
	handler   *mcp.StreamableHTTPHandler
}

// AskInput represents the input arguments for the ask tool.
type AskInput struct {
	Question  string `json:"question" jsonschema:"the farming question to answer"`
	Language  string `json:"language,omitempty" jsonschema:"answer language: English, Telugu, Malayalam, Kannada, Hindi, Tenglish or auto"`
	SessionID string `json:"session_id,omitempty" jsonschema:"conversation id; reuse it for follow-up questions"`
}

// AskOutput represents the output of the ask tool.
type AskOutput struct {
	Answer    string `json:"answer"`
	Language  string `json:"language"`
	SessionID string `json:"session_id"`
	Degraded  bool   `json:"degraded,omitempty"`
}

// NewServer creates a new MCP server with the ask tool.
func NewServer(c Config) (*Server, error) {
	s := &Server{
		config: c,
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "farmergpt",
			Version: utils.Version,
		},
		&mcp.ServerOptions{},
	)

	if !c.Noop {
		if c.Advisor == nil {
			return nil, errors.New("advisor is required")
		}
		if c.Logger == nil {
			return nil, errors.New("logger is required")
		}

		mcp.AddTool(mcpServer, &mcp.Tool{
			Name:        askToolName,
			Description: askDescription,
		}, s.handleAsk)
	}

	s.mcpServer = mcpServer

	// Create a streamable HTTP net/http handler for stateless operations
	s.handler = mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server {
			return mcpServer
		},
		&mcp.StreamableHTTPOptions{
			Stateless: true,
		},
	)

	return s, nil
}

// Handler returns the HTTP handler for the MCP server.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// MCPServer returns the underlying MCP server, for in-process transports.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcpServer
}

// handleAsk answers a question. Invalid input is reported as a tool error
// rather than a protocol error so the calling model can correct itself.
func (s *Server) handleAsk(ctx context.Context, _ *mcp.CallToolRequest, input AskInput) (*mcp.CallToolResult, AskOutput, error) {
	logger := s.config.Logger

	logger.Debug("MCP ask request",
		"session_id", input.SessionID,
		"language", input.Language,
	)

	reply, err := s.config.Advisor.Ask(ctx, advisor.Input{
		SessionID: input.SessionID,
		Question:  input.Question,
		Language:  input.Language,
	})
	if err != nil {
		logger.Error("MCP ask failed", "error", err)
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Could not answer: %v", err)},
			},
		}, AskOutput{}, nil
	}

	output := AskOutput{
		Answer:    reply.Answer,
		Language:  string(reply.Language),
		SessionID: reply.SessionID,
		Degraded:  reply.Degraded,
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: reply.Answer},
		},
	}, output, nil
}
