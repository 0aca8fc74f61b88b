package storage

import (
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/farmergpt/farmergpt/pkg/language"
	"github.com/farmergpt/farmergpt/pkg/llm"
)

// Columns lists the exchange columns in scan order.
var Columns = []string{
	"id",
	"session_id",
	"question",
	"answer",
	"language",
	"source",
	"model",
	"failed",
	"created_at",
}

// InsertBuilder builds the insert for ex using the given placeholder format.
func InsertBuilder(ex *llm.Exchange, format squirrel.PlaceholderFormat) squirrel.InsertBuilder {
	return squirrel.
		Insert(Table).
		Columns(
			"session_id",
			"question",
			"answer",
			"language",
			"source",
			"model",
			"failed",
			"created_at",
		).
		Values(
			ex.SessionID,
			ex.Question,
			ex.Answer,
			string(ex.Language),
			string(ex.Source),
			ex.Model,
			ex.Failed,
			ex.CreatedAt,
		).
		PlaceholderFormat(format)
}

// SelectBuilder builds the newest-first listing query for opts.
func SelectBuilder(opts ListOptions, format squirrel.PlaceholderFormat) squirrel.SelectBuilder {
	b := squirrel.
		Select(Columns...).
		From(Table).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(opts.EffectiveLimit())).
		PlaceholderFormat(format)
	if opts.SessionID != "" {
		b = b.Where(squirrel.Eq{"session_id": opts.SessionID})
	}
	return b
}

// Row is the scan target shared by the SQL drivers.
type Row struct {
	ID        int64
	SessionID string
	Question  string
	Answer    string
	Language  string
	Source    string
	Model     string
	Failed    bool
}

// Dest returns scan destinations for Columns, with createdAt last.
func (r *Row) Dest(createdAt any) []any {
	return []any{
		&r.ID,
		&r.SessionID,
		&r.Question,
		&r.Answer,
		&r.Language,
		&r.Source,
		&r.Model,
		&r.Failed,
		createdAt,
	}
}

// Exchange converts a scanned row.
func (r *Row) Exchange(createdAt time.Time) *llm.Exchange {
	return &llm.Exchange{
		ID:        r.ID,
		SessionID: r.SessionID,
		Question:  r.Question,
		Answer:    r.Answer,
		Language:  language.Tag(r.Language),
		Source:    llm.Source(r.Source),
		Model:     r.Model,
		Failed:    r.Failed,
		CreatedAt: createdAt.UTC(),
	}
}
