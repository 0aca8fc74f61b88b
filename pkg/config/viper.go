package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/farmergpt/farmergpt/pkg/dotdir"
)

// EnvPrefix prefixes every environment variable bound by InitViper.
const EnvPrefix = "FARMERGPT"

// legacyEnv binds the variable names used by earlier deployments to their
// config keys. The FARMERGPT_ form takes precedence when both are set.
var legacyEnv = map[string]string{
	"provider.api_key":     "OPENROUTER_API_KEY",
	"provider.base_url":    "OPENROUTER_BASE_URL",
	"storage.supabase_url": "SUPABASE_URL",
	"storage.supabase_key": "SUPABASE_KEY",
}

// InitViper creates and returns a configured *viper.Viper.
// It loads a .env file from the working directory when present, sets
// defaults from NewDefaultConfig(), reads the config.toml file (if found via
// dotdir resolution), and binds environment variables with the FARMERGPT_
// prefix plus the legacy names in legacyEnv.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (FARMERGPT_API_LISTEN, OPENROUTER_API_KEY, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	// godotenv never overrides variables already set in the environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()

	// 1. Register all defaults from NewDefaultConfig().
	setViperDefaults(v)

	// 2. Config file discovery via dotdir resolution.
	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// 3. Environment variables: FARMERGPT_API_LISTEN, FARMERGPT_STORAGE_DRIVER, etc.
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, legacy := range legacyEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, legacy); err != nil {
			return nil, fmt.Errorf("binding %s: %w", legacy, err)
		}
	}

	return v, nil
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// Provider
	v.SetDefault("provider.type", d.Provider.Type)
	v.SetDefault("provider.base_url", d.Provider.BaseURL)
	v.SetDefault("provider.api_key", d.Provider.APIKey)
	v.SetDefault("provider.model", d.Provider.Model)
	v.SetDefault("provider.timeout", d.Provider.Timeout)

	// Transcriber
	v.SetDefault("transcriber.base_url", d.Transcriber.BaseURL)
	v.SetDefault("transcriber.api_key", d.Transcriber.APIKey)
	v.SetDefault("transcriber.model", d.Transcriber.Model)

	// Storage
	v.SetDefault("storage.driver", d.Storage.Driver)
	v.SetDefault("storage.sqlite_path", d.Storage.SQLitePath)
	v.SetDefault("storage.postgres_dsn", d.Storage.PostgresDSN)
	v.SetDefault("storage.supabase_url", d.Storage.SupabaseURL)
	v.SetDefault("storage.supabase_key", d.Storage.SupabaseKey)
	v.SetDefault("storage.supabase_extended", d.Storage.SupabaseExtended)

	// Memory
	v.SetDefault("memory.provider", d.Memory.Provider)
	v.SetDefault("memory.window", d.Memory.Window)
	v.SetDefault("memory.redis_url", d.Memory.RedisURL)
	v.SetDefault("memory.ttl", d.Memory.TTL)

	// API
	v.SetDefault("api.listen", d.API.Listen)
	v.SetDefault("api.frontend_dir", d.API.FrontendDir)

	// Event stream
	v.SetDefault("eventstream.provider", d.EventStream.Provider)
	v.SetDefault("eventstream.brokers", d.EventStream.Brokers)
	v.SetDefault("eventstream.topic", d.EventStream.Topic)

	// Worker pool
	v.SetDefault("worker.count", d.Worker.Count)
	v.SetDefault("worker.queue_size", d.Worker.QueueSize)
}
