// Package whisper implements transcribe.Transcriber against an
// OpenAI-compatible /audio/transcriptions endpoint.
package whisper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-resty/resty/v2"

	"github.com/farmergpt/farmergpt/pkg/llm"
	"github.com/farmergpt/farmergpt/pkg/transcribe"
	"github.com/farmergpt/farmergpt/pkg/utils"
)

const (
	// DefaultModel is the transcription model requested when none is set.
	DefaultModel = "whisper-1"

	// DefaultTimeout bounds the upload and recognition.
	DefaultTimeout = 60 * time.Second
)

// Config configures the whisper client.
type Config struct {
	// Endpoint is the full URL of the transcriptions route.
	Endpoint string

	// APIKey is sent as a bearer credential when non-empty.
	APIKey string

	// Model defaults to DefaultModel.
	Model string

	// Timeout defaults to DefaultTimeout.
	Timeout time.Duration
}

// Transcriber uploads audio files for recognition.
type Transcriber struct {
	endpoint string
	model    string
	client   *resty.Client
}

var _ transcribe.Transcriber = (*Transcriber)(nil)

// New returns a whisper transcriber.
func New(c Config) *Transcriber {
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}

	client := resty.New().SetTimeout(c.Timeout)
	if c.APIKey != "" {
		client.SetAuthToken(c.APIKey)
	}

	return &Transcriber{
		endpoint: c.Endpoint,
		model:    c.Model,
		client:   client,
	}
}

type transcriptionResponse struct {
	Text string `json:"text"`
}

// Transcribe uploads the file at audioPath and returns the transcript. The
// file handle is released on every path.
func (t *Transcriber) Transcribe(ctx context.Context, audioPath string) llm.Result {
	f, err := os.Open(audioPath)
	if err != nil {
		return llm.Failed(llm.FailureTranscription, "could not read audio: %v", err)
	}
	defer f.Close()

	mt, err := mimetype.DetectReader(f)
	if err != nil {
		return llm.Failed(llm.FailureTranscription, "could not read audio: %v", err)
	}
	if !transcribe.IsAudio(mt) {
		return llm.Failed(llm.FailureTranscription, "unsupported audio format %s", mt.String())
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return llm.Failed(llm.FailureTranscription, "could not read audio: %v", err)
	}

	if t.endpoint == "" {
		return llm.Failed(llm.FailureTranscription, "speech recognition is not configured")
	}

	resp, err := t.client.R().
		SetContext(ctx).
		SetFileReader("file", filepath.Base(audioPath), f).
		SetFormData(map[string]string{
			"model":           t.model,
			"response_format": "json",
		}).
		Post(t.endpoint)
	if err != nil {
		return llm.Failed(llm.FailureTranscription, "recognition request failed: %v", err)
	}
	if resp.IsError() {
		return llm.Failed(llm.FailureTranscription, "recognition service returned %d: %s",
			resp.StatusCode(), utils.Truncate(strings.TrimSpace(string(resp.Body())), 200))
	}

	var parsed transcriptionResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return llm.Failed(llm.FailureTranscription, "unexpected recognition response: %s",
			utils.Truncate(string(resp.Body()), 200))
	}

	text := strings.TrimSpace(parsed.Text)
	if text == "" {
		return llm.Failed(llm.FailureTranscription, "could not understand audio")
	}

	return llm.Succeeded(text)
}

// String identifies the backend in logs.
func (t *Transcriber) String() string {
	return fmt.Sprintf("whisper(%s)", t.model)
}
