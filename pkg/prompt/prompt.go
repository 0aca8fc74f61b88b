// Package prompt assembles the message sequence sent to the model for a
// single advisor turn.
package prompt

import (
	"fmt"

	"github.com/farmergpt/farmergpt/pkg/language"
	"github.com/farmergpt/farmergpt/pkg/llm"
)

// DefaultWindow is the number of prior exchanges replayed to the model.
const DefaultWindow = 5

const personaFormat = "You are an expert farming advisor. Answer in %s. " +
	"Give short, clear, and step-by-step answers. " +
	"Use bullet points if possible. Avoid long paragraphs."

// Persona returns the system instruction for the given answer language. It is
// regenerated on every turn so the answer language follows the latest request.
func Persona(tag language.Tag) string {
	return fmt.Sprintf(personaFormat, tag)
}

// Builder renders prompts with a bounded history window.
type Builder struct {
	// Window caps the number of history exchanges replayed. Zero means
	// DefaultWindow.
	Window int
}

// Build is Builder{}.Build.
func Build(question string, tag language.Tag, history []llm.Exchange) []llm.Message {
	return Builder{}.Build(question, tag, history)
}

// Build returns the persona instruction, then a user/assistant pair for each
// history exchange (oldest first), then the new question. When history is
// longer than the window only the newest exchanges are used.
func (b Builder) Build(question string, tag language.Tag, history []llm.Exchange) []llm.Message {
	window := b.Window
	if window <= 0 {
		window = DefaultWindow
	}
	if len(history) > window {
		history = history[len(history)-window:]
	}

	msgs := make([]llm.Message, 0, 2+2*len(history))
	msgs = append(msgs, llm.NewSystemMessage(Persona(tag)))
	for _, ex := range history {
		msgs = append(msgs,
			llm.NewUserMessage(ex.Question),
			llm.NewAssistantMessage(ex.Answer),
		)
	}
	msgs = append(msgs, llm.NewUserMessage(question))

	return msgs
}
