package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Config represents the persistent farmergpt configuration stored as
// config.toml in the .farmergpt/ directory. The TOML layout uses sections for
// logical grouping.
type Config struct {
	Version     int               `toml:"version"`
	Provider    ProviderConfig    `toml:"provider"`
	Transcriber TranscriberConfig `toml:"transcriber"`
	Storage     StorageConfig     `toml:"storage"`
	Memory      MemoryConfig      `toml:"memory"`
	API         APIConfig         `toml:"api"`
	EventStream EventStreamConfig `toml:"eventstream"`
	Worker      WorkerConfig      `toml:"worker"`
}

// ProviderConfig selects and authenticates the chat model endpoint.
type ProviderConfig struct {
	Type    string `toml:"type,omitempty"`
	BaseURL string `toml:"base_url,omitempty"`
	APIKey  string `toml:"api_key,omitempty"`
	Model   string `toml:"model,omitempty"`
	Timeout string `toml:"timeout,omitempty"`
}

// TranscriberConfig points at a Whisper-compatible speech endpoint. An empty
// BaseURL disables audio questions.
type TranscriberConfig struct {
	BaseURL string `toml:"base_url,omitempty"`
	APIKey  string `toml:"api_key,omitempty"`
	Model   string `toml:"model,omitempty"`
}

// StorageConfig selects where exchanges are persisted.
type StorageConfig struct {
	Driver           string `toml:"driver,omitempty"`
	SQLitePath       string `toml:"sqlite_path,omitempty"`
	PostgresDSN      string `toml:"postgres_dsn,omitempty"`
	SupabaseURL      string `toml:"supabase_url,omitempty"`
	SupabaseKey      string `toml:"supabase_key,omitempty"`
	SupabaseExtended bool   `toml:"supabase_extended,omitempty"`
}

// MemoryConfig holds conversation window settings.
type MemoryConfig struct {
	Provider string `toml:"provider,omitempty"`
	Window   int    `toml:"window,omitempty"`
	RedisURL string `toml:"redis_url,omitempty"`
	TTL      string `toml:"ttl,omitempty"`
}

// APIConfig holds HTTP server settings.
type APIConfig struct {
	Listen      string `toml:"listen,omitempty"`
	FrontendDir string `toml:"frontend_dir,omitempty"`
}

// EventStreamConfig holds exchange event publishing settings.
type EventStreamConfig struct {
	Provider string   `toml:"provider,omitempty"`
	Brokers  []string `toml:"brokers,omitempty"`
	Topic    string   `toml:"topic,omitempty"`
}

// WorkerConfig sizes the persistence worker pool.
type WorkerConfig struct {
	Count     uint `toml:"count,omitempty"`
	QueueSize uint `toml:"queue_size,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func stringKey(field func(c *Config) *string) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error { *field(c) = v; return nil },
	}
}

func durationKey(name string, field func(c *Config) *string) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error {
			if _, err := time.ParseDuration(v); err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			*field(c) = v
			return nil
		},
	}
}

func uintKey(name string, field func(c *Config) *uint) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string {
			if *field(c) == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(*field(c)), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 32)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			*field(c) = uint(n)
			return nil
		},
	}
}

func oneOfKey(name string, allowed []string, field func(c *Config) *string) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error {
			for _, a := range allowed {
				if v == a {
					*field(c) = v
					return nil
				}
			}
			return fmt.Errorf("invalid value for %s: %q (available: %s)", name, v, strings.Join(allowed, ", "))
		},
	}
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"provider.type":     oneOfKey("provider.type", []string{"openai", "openrouter", "ollama"}, func(c *Config) *string { return &c.Provider.Type }),
	"provider.base_url": stringKey(func(c *Config) *string { return &c.Provider.BaseURL }),
	"provider.api_key":  stringKey(func(c *Config) *string { return &c.Provider.APIKey }),
	"provider.model":    stringKey(func(c *Config) *string { return &c.Provider.Model }),
	"provider.timeout":  durationKey("provider.timeout", func(c *Config) *string { return &c.Provider.Timeout }),

	"transcriber.base_url": stringKey(func(c *Config) *string { return &c.Transcriber.BaseURL }),
	"transcriber.api_key":  stringKey(func(c *Config) *string { return &c.Transcriber.APIKey }),
	"transcriber.model":    stringKey(func(c *Config) *string { return &c.Transcriber.Model }),

	"storage.driver":       oneOfKey("storage.driver", StorageDrivers(), func(c *Config) *string { return &c.Storage.Driver }),
	"storage.sqlite_path":  stringKey(func(c *Config) *string { return &c.Storage.SQLitePath }),
	"storage.postgres_dsn": stringKey(func(c *Config) *string { return &c.Storage.PostgresDSN }),
	"storage.supabase_url": stringKey(func(c *Config) *string { return &c.Storage.SupabaseURL }),
	"storage.supabase_key": stringKey(func(c *Config) *string { return &c.Storage.SupabaseKey }),
	"storage.supabase_extended": {
		get: func(c *Config) string { return strconv.FormatBool(c.Storage.SupabaseExtended) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for storage.supabase_extended: %w", err)
			}
			c.Storage.SupabaseExtended = b
			return nil
		},
	},

	"memory.provider": oneOfKey("memory.provider", []string{"local", "redis"}, func(c *Config) *string { return &c.Memory.Provider }),
	"memory.window": {
		get: func(c *Config) string {
			if c.Memory.Window == 0 {
				return ""
			}
			return strconv.Itoa(c.Memory.Window)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				return fmt.Errorf("invalid value for memory.window: %q must be a positive integer", v)
			}
			c.Memory.Window = n
			return nil
		},
	},
	"memory.redis_url": stringKey(func(c *Config) *string { return &c.Memory.RedisURL }),
	"memory.ttl":       durationKey("memory.ttl", func(c *Config) *string { return &c.Memory.TTL }),

	"api.listen":       stringKey(func(c *Config) *string { return &c.API.Listen }),
	"api.frontend_dir": stringKey(func(c *Config) *string { return &c.API.FrontendDir }),

	"eventstream.provider": oneOfKey("eventstream.provider", []string{"none", "kafka"}, func(c *Config) *string { return &c.EventStream.Provider }),
	"eventstream.brokers": {
		get: func(c *Config) string { return strings.Join(c.EventStream.Brokers, ",") },
		set: func(c *Config, v string) error {
			c.EventStream.Brokers = SplitList(v)
			return nil
		},
	},
	"eventstream.topic": stringKey(func(c *Config) *string { return &c.EventStream.Topic }),

	"worker.count":      uintKey("worker.count", func(c *Config) *uint { return &c.Worker.Count }),
	"worker.queue_size": uintKey("worker.queue_size", func(c *Config) *uint { return &c.Worker.QueueSize }),
}

// secretKeys hold credentials and are masked when listed.
var secretKeys = map[string]bool{
	"provider.api_key":     true,
	"transcriber.api_key":  true,
	"storage.postgres_dsn": true,
	"storage.supabase_key": true,
}

// IsSecretKey reports whether key holds a credential.
func IsSecretKey(key string) bool {
	return secretKeys[key]
}

// StorageDrivers lists the accepted storage.driver values.
func StorageDrivers() []string {
	return []string{"memory", "sqlite", "postgres", "supabase"}
}

// SplitList splits a comma separated value, dropping blanks.
func SplitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
