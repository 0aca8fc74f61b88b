package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/farmergpt/farmergpt/pkg/llm"
	"github.com/farmergpt/farmergpt/pkg/utils"
)

type provider struct {
	endpoint string
	client   *resty.Client
}

// New returns a client posting non-streaming chat requests to endpoint
// (e.g. "http://localhost:11434/api/chat").
func New(endpoint string, timeout time.Duration) *provider {
	return &provider{
		endpoint: endpoint,
		client:   resty.New().SetTimeout(timeout),
	}
}

func (o *provider) Name() string {
	return "ollama"
}

func (o *provider) Complete(ctx context.Context, req *llm.ChatRequest) llm.Result {
	if o.endpoint == "" {
		return llm.Failed(llm.FailureTransport, "model endpoint is not configured")
	}

	body := ollamaRequest{Model: req.Model, Stream: false}
	for _, m := range req.Messages {
		body.Messages = append(body.Messages, ollamaMessage{Role: m.Role, Content: m.Content})
	}

	resp, err := o.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(o.endpoint)
	if err != nil {
		var ne net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
			return llm.Failed(llm.FailureTimeout, "model request timed out: %v", err)
		}
		return llm.Failed(llm.FailureTransport, "%v", err)
	}

	raw := resp.Body()
	if resp.IsError() {
		return llm.Failed(llm.FailureStatus, "upstream returned %d: %s",
			resp.StatusCode(), utils.Truncate(strings.TrimSpace(string(raw)), 300))
	}

	var parsed ollamaResponse
	if err := json.Unmarshal(raw, &parsed); err != nil || parsed.Message == nil {
		return llm.Failed(llm.FailureMalformed, "%s", utils.Truncate(string(raw), 300))
	}
	if parsed.Error != "" {
		return llm.Failed(llm.FailureStatus, "%s", parsed.Error)
	}

	text := strings.TrimSpace(parsed.Message.Content)
	return llm.Result{
		Text: text,
		Response: &llm.ChatResponse{
			Model:      parsed.Model,
			Message:    llm.NewAssistantMessage(text),
			StopReason: parsed.DoneReason,
			Usage: &llm.Usage{
				PromptTokens:     parsed.PromptEvalCount,
				CompletionTokens: parsed.EvalCount,
				TotalTokens:      parsed.PromptEvalCount + parsed.EvalCount,
			},
		},
	}
}
