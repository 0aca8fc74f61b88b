// Package llm holds the provider-agnostic chat types shared by the advisor
// pipeline, its providers and its storage drivers.
package llm

import (
	"time"

	"github.com/farmergpt/farmergpt/pkg/language"
)

// Source records how a question reached the advisor.
type Source string

const (
	SourceText  Source = "text"
	SourceAudio Source = "audio"
)

// Exchange is one question/answer pair. It is created once the model call
// returns and is never mutated afterwards.
type Exchange struct {
	// ID is assigned by the storage driver on insert.
	ID int64 `json:"id,omitempty"`

	SessionID string       `json:"session_id,omitempty"`
	Question  string       `json:"question"`
	Answer    string       `json:"answer"`
	Language  language.Tag `json:"language"`
	Source    Source       `json:"source,omitempty"`
	Model     string       `json:"model,omitempty"`

	// Failed is set when Answer is a rendered failure surrogate.
	Failed bool `json:"failed,omitempty"`

	// CreatedAt is stamped at persistence time when left zero.
	CreatedAt time.Time `json:"created_at,omitzero"`
}
