// Package supabase stores exchanges through a Supabase project's PostgREST
// endpoint into the hosted "conversations" table.
package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/farmergpt/farmergpt/pkg/language"
	"github.com/farmergpt/farmergpt/pkg/llm"
	"github.com/farmergpt/farmergpt/pkg/storage"
	"github.com/farmergpt/farmergpt/pkg/utils"
)

// DefaultTimeout bounds each PostgREST call.
const DefaultTimeout = 10 * time.Second

// Config configures the Supabase driver.
type Config struct {
	// URL is the project URL, e.g. https://xyz.supabase.co.
	URL string

	// Key is the anon or service-role key.
	Key string

	// Table defaults to storage.Table.
	Table string

	// Extended sends session_id, source, model, failed and created_at in
	// addition to question, answer and language. Leave it off for tables
	// created with only the original three columns.
	Extended bool

	Timeout time.Duration
}

// Driver implements storage.Driver over PostgREST.
type Driver struct {
	client   *resty.Client
	table    string
	extended bool
}

var _ storage.Driver = (*Driver)(nil)

// NewDriver validates c and builds the REST client.
func NewDriver(c Config) (*Driver, error) {
	if c.URL == "" {
		return nil, errors.New("supabase url is required")
	}
	if c.Key == "" {
		return nil, errors.New("supabase key is required")
	}
	if c.Table == "" {
		c.Table = storage.Table
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(c.URL, "/")+"/rest/v1").
		SetTimeout(c.Timeout).
		SetHeader("apikey", c.Key).
		SetAuthToken(c.Key).
		SetHeader("Content-Type", "application/json")

	return &Driver{client: client, table: c.Table, extended: c.Extended}, nil
}

type record struct {
	ID        int64      `json:"id,omitempty"`
	SessionID *string    `json:"session_id,omitempty"`
	Question  string     `json:"question"`
	Answer    string     `json:"answer"`
	Language  string     `json:"language"`
	Source    *string    `json:"source,omitempty"`
	Model     *string    `json:"model,omitempty"`
	Failed    *bool      `json:"failed,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

func (d *Driver) toRecord(ex *llm.Exchange) record {
	r := record{
		Question: ex.Question,
		Answer:   ex.Answer,
		Language: string(ex.Language),
	}
	if d.extended {
		source := string(ex.Source)
		r.SessionID = &ex.SessionID
		r.Source = &source
		r.Model = &ex.Model
		r.Failed = &ex.Failed
		r.CreatedAt = &ex.CreatedAt
	}
	return r
}

func (r record) exchange() *llm.Exchange {
	ex := &llm.Exchange{
		ID:       r.ID,
		Question: r.Question,
		Answer:   r.Answer,
		Language: language.Tag(r.Language),
	}
	if r.SessionID != nil {
		ex.SessionID = *r.SessionID
	}
	if r.Source != nil {
		ex.Source = llm.Source(*r.Source)
	}
	if r.Model != nil {
		ex.Model = *r.Model
	}
	if r.Failed != nil {
		ex.Failed = *r.Failed
	}
	if r.CreatedAt != nil {
		ex.CreatedAt = r.CreatedAt.UTC()
	}
	return ex
}

// Insert posts one row and reads back the generated id.
func (d *Driver) Insert(ctx context.Context, ex *llm.Exchange) error {
	if err := storage.Prepare(ex); err != nil {
		return err
	}

	var created []record
	resp, err := d.client.R().
		SetContext(ctx).
		SetHeader("Prefer", "return=representation").
		SetBody(d.toRecord(ex)).
		SetResult(&created).
		Post("/" + d.table)
	if err != nil {
		return fmt.Errorf("inserting exchange: %w", err)
	}
	if resp.IsError() {
		return statusError("inserting exchange", resp)
	}

	if len(created) > 0 {
		ex.ID = created[0].ID
	}
	return nil
}

// List reads the newest rows first.
func (d *Driver) List(ctx context.Context, opts storage.ListOptions) ([]*llm.Exchange, error) {
	req := d.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"select": "*",
			"order":  "created_at.desc,id.desc",
			"limit":  strconv.Itoa(opts.EffectiveLimit()),
		})
	if opts.SessionID != "" {
		req.SetQueryParam("session_id", "eq."+opts.SessionID)
	}

	resp, err := req.Get("/" + d.table)
	if err != nil {
		return nil, fmt.Errorf("listing exchanges: %w", err)
	}
	if resp.IsError() {
		return nil, statusError("listing exchanges", resp)
	}

	var records []record
	if err := json.Unmarshal(resp.Body(), &records); err != nil {
		return nil, fmt.Errorf("decoding exchanges: %w", err)
	}

	result := make([]*llm.Exchange, 0, len(records))
	for _, r := range records {
		result = append(result, r.exchange())
	}
	return result, nil
}

// Close is a no-op; the REST client holds no long-lived resources.
func (d *Driver) Close() error {
	return nil
}

func statusError(op string, resp *resty.Response) error {
	return fmt.Errorf("%s: supabase returned %d: %s",
		op, resp.StatusCode(), utils.Truncate(strings.TrimSpace(string(resp.Body())), 200))
}
