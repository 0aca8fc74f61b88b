// Package transcribe turns recorded questions into text.
//
// Transcribers are fail-soft: they report problems through the returned
// llm.Result rather than a Go error, and the rendered failure text
// ("Transcription error: ...") travels down the pipeline as the question.
package transcribe

import (
	"context"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/farmergpt/farmergpt/pkg/llm"
)

// Transcriber converts a local audio file to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) llm.Result
}

// Func adapts a function to Transcriber.
type Func func(ctx context.Context, audioPath string) llm.Result

// Transcribe calls f.
func (f Func) Transcribe(ctx context.Context, audioPath string) llm.Result {
	return f(ctx, audioPath)
}

// Unavailable is used when no speech backend is configured. Every call fails
// softly.
var Unavailable = Func(func(context.Context, string) llm.Result {
	return llm.Failed(llm.FailureTranscription, "speech recognition is not configured")
})

// acceptedContainers are non-audio/* types browsers and phones record into.
var acceptedContainers = []string{
	"video/webm",
	"video/mp4",
	"application/ogg",
}

// IsAudio reports whether mt is a recording the backend can decode.
func IsAudio(mt *mimetype.MIME) bool {
	if mt == nil {
		return false
	}
	if strings.HasPrefix(mt.String(), "audio/") {
		return true
	}
	for _, c := range acceptedContainers {
		if mt.Is(c) {
			return true
		}
	}
	return false
}
