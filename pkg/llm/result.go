package llm

import (
	"fmt"
	"strings"
)

// FailureKind classifies why an external call did not produce usable text.
type FailureKind string

const (
	FailureTransport     FailureKind = "transport"
	FailureTimeout       FailureKind = "timeout"
	FailureStatus        FailureKind = "status"
	FailureMalformed     FailureKind = "malformed"
	FailureTranscription FailureKind = "transcription"
)

// Failure describes a contained failure of the model provider or the
// transcription backend.
type Failure struct {
	Kind   FailureKind
	Reason string
}

// Error implements error so a Failure can be wrapped or logged directly.
func (f *Failure) Error() string {
	return fmt.Sprintf("%s failure: %s", f.Kind, f.Reason)
}

// Render returns the in-band text shown to the user in place of an answer.
// Surrogates always start with one of the SurrogatePrefixes.
func (f *Failure) Render() string {
	switch f.Kind {
	case FailureTranscription:
		return "Transcription error: " + f.Reason
	case FailureTransport, FailureTimeout:
		return "Exception: " + f.Reason
	default:
		return "Error: " + f.Reason
	}
}

// SurrogatePrefixes are the prefixes of every rendered Failure.
var SurrogatePrefixes = []string{"Error: ", "Exception: ", "Transcription error: "}

// IsSurrogate reports whether text looks like a rendered Failure.
func IsSurrogate(text string) bool {
	for _, p := range SurrogatePrefixes {
		if strings.HasPrefix(text, p) {
			return true
		}
	}
	return false
}

// Result is the outcome of a provider or transcriber call: either Text or a
// Failure, never both.
type Result struct {
	Text    string
	Failure *Failure

	// Response is the parsed provider response on success, if available.
	Response *ChatResponse
}

// Succeeded wraps text as a successful result.
func Succeeded(text string) Result {
	return Result{Text: text}
}

// Failed builds a failed result.
func Failed(kind FailureKind, format string, args ...any) Result {
	return Result{Failure: &Failure{Kind: kind, Reason: fmt.Sprintf(format, args...)}}
}

// OK reports whether the call succeeded.
func (r Result) OK() bool {
	return r.Failure == nil
}

// Render returns the text to use downstream: the payload on success or the
// surrogate string on failure.
func (r Result) Render() string {
	if r.Failure != nil {
		return r.Failure.Render()
	}
	return r.Text
}
