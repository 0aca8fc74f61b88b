// Package advisor answers farmers' questions by sequencing the pipeline:
// transcription for recorded questions, language normalization, prompt
// assembly over the session's recent history, the model call, the memory
// update and the hand-off to asynchronous persistence.
//
// Every external fault degrades to in-band answer text. Only malformed input
// and internal faults surface as Go errors.
package advisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/farmergpt/farmergpt/pkg/language"
	"github.com/farmergpt/farmergpt/pkg/llm"
	"github.com/farmergpt/farmergpt/pkg/llm/provider"
	"github.com/farmergpt/farmergpt/pkg/logger"
	"github.com/farmergpt/farmergpt/pkg/memory"
	"github.com/farmergpt/farmergpt/pkg/metrics"
	"github.com/farmergpt/farmergpt/pkg/prompt"
	"github.com/farmergpt/farmergpt/pkg/transcribe"
)

// DefaultModel is the hosted model used when none is configured.
const DefaultModel = "z-ai/glm-4.5-air:free"

// FallbackAnswer replaces an empty model completion.
const FallbackAnswer = "Sorry, I could not generate an answer. Please try again."

var (
	// ErrInvalidInput is returned when a request carries neither or both of
	// a text question and an audio file.
	ErrInvalidInput = errors.New("exactly one of question or audio is required")

	// ErrPipelineFault is returned when the pipeline itself breaks, as
	// opposed to one of its dependencies failing.
	ErrPipelineFault = errors.New("advisor pipeline fault")
)

// Persister accepts finished exchanges for durable storage. Persist must not
// block; *worker.Pool satisfies it.
type Persister interface {
	Persist(ex llm.Exchange)
}

// Config wires the advisor's dependencies.
type Config struct {
	// Provider answers prompts. Required.
	Provider provider.Provider

	// Memory holds per-session history. Required.
	Memory memory.Driver

	// Transcriber handles audio questions. Defaults to transcribe.Unavailable.
	Transcriber transcribe.Transcriber

	// Persister receives every exchange. Optional.
	Persister Persister

	// Model is sent with each chat request. Defaults to DefaultModel.
	Model string

	// Window is the number of prior exchanges replayed. Defaults to
	// prompt.DefaultWindow.
	Window int

	// Languages decides the answer language. Defaults to
	// language.DefaultPolicy.
	Languages *language.Policy

	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// Input is one advisor request. Exactly one of Question and AudioPath is set.
type Input struct {
	SessionID string
	Question  string
	AudioPath string
	Language  string
}

// Reply is the outcome of one request.
type Reply struct {
	Answer    string
	Question  string
	SessionID string
	Language  language.Tag

	// Degraded is set when Answer or Question is a rendered failure.
	Degraded bool
}

// Advisor runs the question answering pipeline.
type Advisor struct {
	provider    provider.Provider
	memory      memory.Driver
	transcriber transcribe.Transcriber
	persister   Persister
	prompts     prompt.Builder
	languages   language.Policy
	model       string
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

// New validates c and returns an Advisor.
func New(c Config) (*Advisor, error) {
	if c.Provider == nil {
		return nil, errors.New("advisor requires a model provider")
	}
	if c.Memory == nil {
		return nil, errors.New("advisor requires a memory driver")
	}

	a := &Advisor{
		provider:    c.Provider,
		memory:      c.Memory,
		transcriber: c.Transcriber,
		persister:   c.Persister,
		prompts:     prompt.Builder{Window: c.Window},
		languages:   language.DefaultPolicy,
		model:       c.Model,
		metrics:     c.Metrics,
		logger:      c.Logger,
	}

	if a.transcriber == nil {
		a.transcriber = transcribe.Unavailable
	}
	if c.Languages != nil {
		a.languages = *c.Languages
	}
	if a.model == "" {
		a.model = DefaultModel
	}
	if a.logger == nil {
		a.logger = logger.Nop()
	}

	return a, nil
}

// GenerateAnswer returns the answer text for in. The text is never empty; on
// dependency failures it is a descriptive surrogate.
func (a *Advisor) GenerateAnswer(ctx context.Context, in Input) (string, error) {
	reply, err := a.Ask(ctx, in)
	if err != nil {
		return "", err
	}
	return reply.Answer, nil
}

// Ask runs the pipeline and returns the full reply.
func (a *Advisor) Ask(ctx context.Context, in Input) (reply *Reply, err error) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("advisor pipeline panic",
				"panic", r,
				"stack", string(debug.Stack()),
			)
			reply = nil
			err = fmt.Errorf("%w: %v", ErrPipelineFault, r)
		}
	}()

	question := strings.TrimSpace(in.Question)
	audio := strings.TrimSpace(in.AudioPath)
	if (question == "") == (audio == "") {
		a.metrics.ObserveExchange(metrics.OutcomeRejected, "")
		return nil, ErrInvalidInput
	}

	sessionID := memory.SessionKey(in.SessionID)
	source := llm.SourceText
	degraded := false

	if audio != "" {
		source = llm.SourceAudio
		res := a.transcriber.Transcribe(ctx, audio)
		if !res.OK() {
			degraded = true
			a.logger.Warn("transcription failed",
				"session_id", sessionID,
				"error", res.Failure,
			)
		}
		question = res.Render()
	}

	tag := a.languages.Normalize(in.Language)

	history, err := a.memory.Recent(ctx, sessionID)
	if err != nil {
		a.logger.Warn("could not read conversation history, continuing without it",
			"session_id", sessionID,
			"error", err,
		)
		history = nil
	}

	req := &llm.ChatRequest{
		Model:    a.model,
		Messages: a.prompts.Build(question, tag, history),
	}

	start := time.Now()
	res := a.provider.Complete(ctx, req)
	a.metrics.ObserveModelCall(a.provider.Name(), res.OK(), time.Since(start))

	answer := res.Render()
	if !res.OK() {
		degraded = true
		a.logger.Error("model call failed",
			"session_id", sessionID,
			"provider", a.provider.Name(),
			"error", res.Failure,
		)
	} else if strings.TrimSpace(answer) == "" {
		answer = FallbackAnswer
	}

	ex := llm.Exchange{
		SessionID: sessionID,
		Question:  question,
		Answer:    answer,
		Language:  tag,
		Source:    source,
		Model:     a.model,
		Failed:    degraded,
	}

	if err := a.memory.Append(ctx, sessionID, ex); err != nil {
		a.logger.Warn("could not record exchange in memory",
			"session_id", sessionID,
			"error", err,
		)
	}

	if a.persister != nil {
		a.persister.Persist(ex)
	}

	outcome := metrics.OutcomeAnswered
	if degraded {
		outcome = metrics.OutcomeFailed
	}
	a.metrics.ObserveExchange(outcome, string(source))

	a.logger.Debug("question answered",
		"session_id", sessionID,
		"language", tag,
		"source", source,
		"degraded", degraded,
	)

	return &Reply{
		Answer:    answer,
		Question:  question,
		SessionID: sessionID,
		Language:  tag,
		Degraded:  degraded,
	}, nil
}

// Model returns the model name sent with each request.
func (a *Advisor) Model() string {
	return a.model
}
