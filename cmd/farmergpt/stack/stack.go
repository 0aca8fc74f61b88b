// Package stack assembles the advisor and its dependencies from the layered
// viper configuration. It is shared by the serve, ask and chat commands.
package stack

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/viper"

	"github.com/farmergpt/farmergpt/advisor"
	"github.com/farmergpt/farmergpt/advisor/worker"
	"github.com/farmergpt/farmergpt/cmd/farmergpt/sqlitepath"
	"github.com/farmergpt/farmergpt/pkg/config"
	"github.com/farmergpt/farmergpt/pkg/dotdir"
	"github.com/farmergpt/farmergpt/pkg/eventstream"
	"github.com/farmergpt/farmergpt/pkg/eventstream/kafka"
	"github.com/farmergpt/farmergpt/pkg/eventstream/nop"
	"github.com/farmergpt/farmergpt/pkg/llm/provider"
	"github.com/farmergpt/farmergpt/pkg/memory"
	"github.com/farmergpt/farmergpt/pkg/memory/local"
	"github.com/farmergpt/farmergpt/pkg/memory/redis"
	"github.com/farmergpt/farmergpt/pkg/metrics"
	"github.com/farmergpt/farmergpt/pkg/storage"
	"github.com/farmergpt/farmergpt/pkg/storage/inmemory"
	"github.com/farmergpt/farmergpt/pkg/storage/postgres"
	"github.com/farmergpt/farmergpt/pkg/storage/sqlite"
	"github.com/farmergpt/farmergpt/pkg/storage/supabase"
	"github.com/farmergpt/farmergpt/pkg/transcribe"
	"github.com/farmergpt/farmergpt/pkg/transcribe/whisper"
)

// Stack holds a fully wired advisor and the resources it owns.
type Stack struct {
	Advisor   *advisor.Advisor
	Storage   storage.Driver
	Memory    memory.Driver
	Publisher eventstream.Publisher
	Pool      *worker.Pool
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
}

// Build constructs every component named by v. configDir overrides the
// .farmergpt/ directory used for the default sqlite database.
// On error, anything already opened is closed.
func Build(ctx context.Context, v *viper.Viper, configDir string, log *slog.Logger) (_ *Stack, err error) {
	s := &Stack{
		Metrics: metrics.New(),
		Logger:  log,
	}
	defer func() {
		if err != nil {
			s.closeResources()
		}
	}()

	model, err := NewProvider(v)
	if err != nil {
		return nil, err
	}

	s.Memory, err = NewMemory(ctx, v)
	if err != nil {
		return nil, err
	}

	s.Storage, err = NewStorage(ctx, v, configDir, log)
	if err != nil {
		return nil, err
	}

	s.Publisher, err = NewPublisher(v)
	if err != nil {
		return nil, err
	}

	s.Pool, err = worker.NewPool(&worker.Config{
		Driver:     s.Storage,
		Publisher:  s.Publisher,
		Metrics:    s.Metrics,
		NumWorkers: v.GetUint("worker.count"),
		QueueSize:  v.GetUint("worker.queue_size"),
		Logger:     log,
	})
	if err != nil {
		return nil, fmt.Errorf("creating worker pool: %w", err)
	}

	s.Advisor, err = advisor.New(advisor.Config{
		Provider:    model,
		Memory:      s.Memory,
		Transcriber: NewTranscriber(v),
		Persister:   s.Pool,
		Model:       v.GetString("provider.model"),
		Window:      v.GetInt("memory.window"),
		Metrics:     s.Metrics,
		Logger:      log,
	})
	if err != nil {
		return nil, err
	}

	log.Debug("advisor ready",
		"provider", model.Name(),
		"model", s.Advisor.Model(),
		"storage", v.GetString("storage.driver"),
		"memory", v.GetString("memory.provider"),
		"eventstream", v.GetString("eventstream.provider"),
	)

	return s, nil
}

// Shutdown drains pending persistence jobs until ctx is done, then closes
// the publisher, storage and memory.
func (s *Stack) Shutdown(ctx context.Context) error {
	var errs []error
	if s.Pool != nil {
		if err := s.Pool.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("draining persistence queue: %w", err))
		}
	}
	errs = append(errs, s.closeResources())
	return errors.Join(errs...)
}

func (s *Stack) closeResources() error {
	var errs []error
	if s.Publisher != nil {
		errs = append(errs, s.Publisher.Close())
	}
	if s.Storage != nil {
		errs = append(errs, s.Storage.Close())
	}
	if s.Memory != nil {
		errs = append(errs, s.Memory.Close())
	}
	return errors.Join(errs...)
}

// NewProvider builds the chat model client.
func NewProvider(v *viper.Viper) (provider.Provider, error) {
	return provider.New(v.GetString("provider.type"), provider.Config{
		Endpoint: v.GetString("provider.base_url"),
		APIKey:   v.GetString("provider.api_key"),
		Timeout:  v.GetDuration("provider.timeout"),
	})
}

// NewTranscriber returns the whisper client, or transcribe.Unavailable when
// no endpoint is configured.
func NewTranscriber(v *viper.Viper) transcribe.Transcriber {
	endpoint := v.GetString("transcriber.base_url")
	if endpoint == "" {
		return transcribe.Unavailable
	}

	apiKey := v.GetString("transcriber.api_key")
	if apiKey == "" {
		apiKey = v.GetString("provider.api_key")
	}

	return whisper.New(whisper.Config{
		Endpoint: endpoint,
		APIKey:   apiKey,
		Model:    v.GetString("transcriber.model"),
	})
}

// NewMemory builds the conversation memory driver.
func NewMemory(ctx context.Context, v *viper.Viper) (memory.Driver, error) {
	window := v.GetInt("memory.window")

	switch p := v.GetString("memory.provider"); p {
	case "", "local":
		d, err := local.NewDriver(local.Config{Window: window})
		if err != nil {
			return nil, fmt.Errorf("creating local memory: %w", err)
		}
		return d, nil

	case "redis":
		d, err := redis.NewDriver(ctx, redis.Config{
			URL:    v.GetString("memory.redis_url"),
			Window: window,
			TTL:    v.GetDuration("memory.ttl"),
		})
		if err != nil {
			return nil, fmt.Errorf("creating redis memory: %w", err)
		}
		return d, nil

	default:
		return nil, fmt.Errorf("unknown memory provider: %q", p)
	}
}

// NewStorage builds the exchange storage driver.
func NewStorage(ctx context.Context, v *viper.Viper, configDir string, log *slog.Logger) (storage.Driver, error) {
	switch name := v.GetString("storage.driver"); name {
	case "memory":
		log.Info("using in-memory storage")
		return inmemory.NewDriver(), nil

	case "", "sqlite":
		dir, err := dotdir.NewManager().Target(configDir)
		if err != nil {
			return nil, err
		}
		path := sqlitepath.ResolveSQLitePath(v.GetString("storage.sqlite_path"), dir)

		d, err := sqlite.NewDriver(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite storage: %w", err)
		}
		log.Info("using SQLite storage", "path", path)
		return d, nil

	case "postgres":
		d, err := postgres.NewDriver(ctx, v.GetString("storage.postgres_dsn"))
		if err != nil {
			return nil, fmt.Errorf("failed to create PostgreSQL storage: %w", err)
		}
		log.Info("using PostgreSQL storage")
		return d, nil

	case "supabase":
		d, err := supabase.NewDriver(supabase.Config{
			URL:      v.GetString("storage.supabase_url"),
			Key:      v.GetString("storage.supabase_key"),
			Extended: v.GetBool("storage.supabase_extended"),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create Supabase storage: %w", err)
		}
		log.Info("using Supabase storage", "url", v.GetString("storage.supabase_url"))
		return d, nil

	default:
		return nil, storage.UnknownDriverError{Name: name}
	}
}

// NewPublisher builds the exchange event publisher.
func NewPublisher(v *viper.Viper) (eventstream.Publisher, error) {
	switch p := v.GetString("eventstream.provider"); p {
	case "", "none":
		return nop.NewPublisher(), nil

	case "kafka":
		brokers := v.GetStringSlice("eventstream.brokers")
		if len(brokers) == 1 {
			brokers = config.SplitList(brokers[0])
		}
		pub, err := kafka.NewPublisher(kafka.Config{
			Brokers:      brokers,
			Topic:        v.GetString("eventstream.topic"),
			WriteTimeout: 5 * time.Second,
		})
		if err != nil {
			return nil, fmt.Errorf("creating kafka publisher: %w", err)
		}
		return pub, nil

	default:
		return nil, fmt.Errorf("unknown eventstream provider: %q (available: none, kafka)", p)
	}
}
