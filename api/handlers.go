package api

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/farmergpt/farmergpt/advisor"
	"github.com/farmergpt/farmergpt/pkg/language"
	"github.com/farmergpt/farmergpt/pkg/llm"
	"github.com/farmergpt/farmergpt/pkg/storage"
)

const (
	runningMessage      = "FarmerGPT Backend is running"
	missingIndexMessage = "Frontend build exists but index.html is missing."

	// maxAudioBytes bounds request bodies, recorded questions included.
	maxAudioBytes = 25 << 20
)

// AskRequest is the body of POST /ask.
type AskRequest struct {
	Question  string `json:"question"`
	Language  string `json:"language,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

// AskResponse is returned by both ask routes.
type AskResponse struct {
	Answer    string       `json:"answer"`
	Question  string       `json:"question,omitempty"`
	SessionID string       `json:"session_id"`
	Language  language.Tag `json:"language"`
	Degraded  bool         `json:"degraded,omitempty"`
}

// ConversationsResponse is returned by GET /conversations.
type ConversationsResponse struct {
	Count         int             `json:"count"`
	Conversations []*llm.Exchange `json:"conversations"`
}

func (s *Server) handleRoot(message string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": message})
	}
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// handleAsk answers a text question.
func (s *Server) handleAsk(c *fiber.Ctx) error {
	var req AskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "invalid request body"})
	}

	return s.ask(c, advisor.Input{
		SessionID: req.SessionID,
		Question:  req.Question,
		Language:  req.Language,
	})
}

// handleAskAudio answers a recorded question uploaded as the multipart
// "audio" field. The upload is spooled to a temporary file that is removed
// once the request completes.
func (s *Server) handleAskAudio(c *fiber.Ctx) error {
	fh, err := c.FormFile("audio")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "audio file is required"})
	}

	tmp, err := os.CreateTemp("", "farmergpt-audio-*"+filepath.Ext(fh.Filename))
	if err != nil {
		s.logger.Error("could not create audio spool file", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "could not store upload"})
	}
	path := tmp.Name()
	_ = tmp.Close()
	defer os.Remove(path)

	if err := c.SaveFile(fh, path); err != nil {
		s.logger.Error("could not save audio upload", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "could not store upload"})
	}

	return s.ask(c, advisor.Input{
		SessionID: c.FormValue("session_id"),
		AudioPath: path,
		Language:  c.FormValue("language"),
	})
}

func (s *Server) ask(c *fiber.Ctx, in advisor.Input) error {
	reply, err := s.asker.Ask(c.UserContext(), in)
	switch {
	case errors.Is(err, advisor.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: err.Error()})
	case err != nil:
		s.logger.Error("ask failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: fmt.Sprintf("AI model error: %v", err)})
	}

	return c.JSON(AskResponse{
		Answer:    strings.TrimSpace(reply.Answer),
		Question:  reply.Question,
		SessionID: reply.SessionID,
		Language:  reply.Language,
		Degraded:  reply.Degraded,
	})
}

// handleListConversations returns the most recent persisted exchanges,
// newest first.
func (s *Server) handleListConversations(c *fiber.Ctx) error {
	if s.storer == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(llm.ErrorResponse{Error: "conversation storage is not configured"})
	}

	opts := storage.ListOptions{SessionID: c.Query("session_id")}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "limit must be a non-negative integer"})
		}
		opts.Limit = limit
	}

	exchanges, err := s.storer.List(c.UserContext(), opts)
	if err != nil {
		s.logger.Error("failed to list conversations", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "failed to list conversations"})
	}

	return c.JSON(ConversationsResponse{
		Count:         len(exchanges),
		Conversations: exchanges,
	})
}
