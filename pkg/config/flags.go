package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline. This prevents flag drift
// when the same logical flag appears on multiple commands (e.g., --model
// on both "farmergpt serve" and "farmergpt ask").
type Flag struct {
	// Name is the long flag name (e.g. "model").
	Name string

	// Shorthand is the one-letter short flag (e.g. "m"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "provider.model").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling AddStringFlag, AddUintFlag,
// and BindRegisteredFlags to avoid typos or drift from one command to another.
const (
	FlagListen         = "listen"
	FlagProviderType   = "provider"
	FlagBaseURL        = "base-url"
	FlagModel          = "model"
	FlagTimeout        = "timeout"
	FlagTranscriberURL = "transcriber-url"
	FlagStorageDriver  = "storage"
	FlagSQLite         = "sqlite"
	FlagPostgresDSN    = "postgres-dsn"
	FlagMemoryProvider = "memory"
	FlagMemoryWindow   = "window"
	FlagRedisURL       = "redis-url"
	FlagFrontendDir    = "frontend-dir"
	FlagWorkers        = "workers"
	FlagKafkaBrokers   = "kafka-brokers"
)

// Flags is the registry shared by every command.
var Flags = FlagSet{
	FlagListen:         {Name: "listen", Shorthand: "l", ViperKey: "api.listen", Description: "Address for the API server to listen on"},
	FlagProviderType:   {Name: "provider", ViperKey: "provider.type", Description: "Model provider type (openrouter, openai, ollama)"},
	FlagBaseURL:        {Name: "base-url", Shorthand: "u", ViperKey: "provider.base_url", Description: "Chat completions endpoint URL"},
	FlagModel:          {Name: "model", Shorthand: "m", ViperKey: "provider.model", Description: "Model name sent with each request"},
	FlagTimeout:        {Name: "timeout", ViperKey: "provider.timeout", Description: "Model call timeout (e.g. 30s)"},
	FlagTranscriberURL: {Name: "transcriber-url", ViperKey: "transcriber.base_url", Description: "Speech to text endpoint URL (empty disables audio)"},
	FlagStorageDriver:  {Name: "storage", ViperKey: "storage.driver", Description: "Exchange storage driver (memory, sqlite, postgres, supabase)"},
	FlagSQLite:         {Name: "sqlite", Shorthand: "s", ViperKey: "storage.sqlite_path", Description: "Path to SQLite database (default: .farmergpt/farmergpt.db)"},
	FlagPostgresDSN:    {Name: "postgres-dsn", ViperKey: "storage.postgres_dsn", Description: "PostgreSQL connection string"},
	FlagMemoryProvider: {Name: "memory", ViperKey: "memory.provider", Description: "Conversation memory backend (local, redis)"},
	FlagMemoryWindow:   {Name: "window", ViperKey: "memory.window", Description: "Number of past exchanges replayed to the model"},
	FlagRedisURL:       {Name: "redis-url", ViperKey: "memory.redis_url", Description: "Redis URL for the redis memory backend"},
	FlagFrontendDir:    {Name: "frontend-dir", ViperKey: "api.frontend_dir", Description: "Directory of a built web frontend to serve at /"},
	FlagWorkers:        {Name: "workers", ViperKey: "worker.count", Description: "Number of persistence workers"},
	FlagKafkaBrokers:   {Name: "kafka-brokers", ViperKey: "eventstream.brokers", Description: "Comma separated Kafka brokers for exchange events"},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddUintFlag registers a uint flag on cmd from the given FlagSet.
func AddUintFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *uint) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultUint(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().UintVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().UintVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaultString returns the default string value for a viper key from NewDefaultConfig.
func defaultString(viperKey string) string {
	v := viper.New()
	setViperDefaults(v)
	return v.GetString(viperKey)
}

// AddIntFlag registers an int flag on cmd from the given FlagSet.
func AddIntFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *int) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	v := viper.New()
	setViperDefaults(v)
	defaultVal := v.GetInt(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().IntVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().IntVar(target, def.Name, defaultVal, def.Description)
	}
}

// defaultUint returns the default uint value for a viper key from NewDefaultConfig.
func defaultUint(viperKey string) uint {
	v := viper.New()
	setViperDefaults(v)
	return v.GetUint(viperKey)
}
