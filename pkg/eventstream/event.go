package eventstream

import (
	"time"

	"github.com/google/uuid"

	"github.com/farmergpt/farmergpt/pkg/llm"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeExchangeRecorded is emitted after an exchange is persisted.
	EventTypeExchangeRecorded = "farmergpt.exchange.recorded"
)

// ExchangeRecordedEvent is a transport-neutral event payload for a persisted
// question/answer exchange.
type ExchangeRecordedEvent struct {
	SchemaVersion int          `json:"schema_version"`
	EventType     string       `json:"event_type"`
	EventID       string       `json:"event_id"`
	EmittedAt     time.Time    `json:"emitted_at"`
	Source        EventSource  `json:"source"`
	Exchange      llm.Exchange `json:"exchange"`
}

// EventSource identifies the service instance and model that produced the
// exchange.
type EventSource struct {
	Service string `json:"service"`
	Model   string `json:"model,omitempty"`
}

// NewExchangeRecordedEvent builds a v1 event for ex with a fresh id.
func NewExchangeRecordedEvent(ex llm.Exchange) *ExchangeRecordedEvent {
	return &ExchangeRecordedEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypeExchangeRecorded,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		Source: EventSource{
			Service: "farmergpt",
			Model:   ex.Model,
		},
		Exchange: ex,
	}
}

// Key is the partition key for the event: exchanges of one session stay
// ordered.
func (e *ExchangeRecordedEvent) Key() string {
	if e.Exchange.SessionID != "" {
		return e.Exchange.SessionID
	}
	return e.EventID
}
