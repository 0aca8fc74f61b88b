// Package openai implements the model client for OpenAI-compatible
// chat-completions endpoints such as OpenRouter.
package openai

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

// bodyExcerptLen caps how much of an upstream body is echoed into a failure.
const bodyExcerptLen = 300

type provider struct {
	endpoint string
	client   *resty.Client
}

// New returns a client posting to endpoint with a bearer apiKey.
func New(endpoint, apiKey string, timeout time.Duration) *provider {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	if apiKey != "" {
		client.SetAuthToken(apiKey)
	}

	return &provider{
		endpoint: endpoint,
		client:   client,
	}
}

func (p *provider) Name() string {
	return "openai"
}

// Complete posts req and returns the first choice's trimmed content.
func (p *provider) Complete(ctx context.Context, req *llm.ChatRequest) llm.Result {
	if p.endpoint == "" {
		return llm.Failed(llm.FailureTransport, "model endpoint is not configured")
	}

	body := openaiRequest{
		Model:    req.Model,
		Messages: make([]openaiMessage, 0, len(req.Messages)),
	}
	for _, m := range req.Messages {
		body.Messages = append(body.Messages, openaiMessage{Role: m.Role, Content: m.Content})
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(body).
		Post(p.endpoint)
	if err != nil {
		if isTimeout(err) {
			return llm.Failed(llm.FailureTimeout, "model request timed out: %v", err)
		}
		return llm.Failed(llm.FailureTransport, "%v", err)
	}

	raw := resp.Body()
	if resp.IsError() {
		return llm.Failed(llm.FailureStatus, "upstream returned %d: %s",
			resp.StatusCode(), utils.Truncate(strings.TrimSpace(string(raw)), bodyExcerptLen))
	}

	return parseResponse(raw)
}

func parseResponse(raw []byte) llm.Result {
	var parsed openaiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return llm.Failed(llm.FailureMalformed, "%s", utils.Truncate(string(raw), bodyExcerptLen))
	}

	if len(parsed.Choices) == 0 {
		return llm.Failed(llm.FailureMalformed, "%s", utils.Truncate(string(raw), bodyExcerptLen))
	}

	choice := parsed.Choices[0]
	text, ok := contentText(choice.Message.Content)
	if !ok {
		return llm.Failed(llm.FailureMalformed, "completion has no content: %s",
			utils.Truncate(string(raw), bodyExcerptLen))
	}
	text = strings.TrimSpace(text)

	chat := &llm.ChatResponse{
		Model:      parsed.Model,
		Message:    llm.NewAssistantMessage(text),
		StopReason: choice.FinishReason,
	}
	if parsed.Usage != nil {
		chat.Usage = &llm.Usage{
			PromptTokens:     parsed.Usage.PromptTokens,
			CompletionTokens: parsed.Usage.CompletionTokens,
			TotalTokens:      parsed.Usage.TotalTokens,
		}
	}

	return llm.Result{Text: text, Response: chat}
}

// contentText flattens a string or an array of text parts.
func contentText(content any) (string, bool) {
	switch c := content.(type) {
	case string:
		return c, true
	case []any:
		var sb strings.Builder
		found := false
		for _, item := range c {
			part, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if text, ok := part["text"].(string); ok {
				sb.WriteString(text)
				found = true
			}
		}
		return sb.String(), found
	default:
		return "", false
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
