package stack

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/farmergpt/farmergpt/pkg/config"
)

// Flags are the advisor settings every running command accepts.
type Flags struct {
	ProviderType   string
	BaseURL        string
	Model          string
	Timeout        string
	TranscriberURL string
	StorageDriver  string
	SQLitePath     string
	PostgresDSN    string
	MemoryProvider string
	Window         int
	RedisURL       string
	Workers        uint
	KafkaBrokers   string
}

// FlagKeys lists the registry keys registered by AddFlags.
var FlagKeys = []string{
	config.FlagProviderType,
	config.FlagBaseURL,
	config.FlagModel,
	config.FlagTimeout,
	config.FlagTranscriberURL,
	config.FlagStorageDriver,
	config.FlagSQLite,
	config.FlagPostgresDSN,
	config.FlagMemoryProvider,
	config.FlagMemoryWindow,
	config.FlagRedisURL,
	config.FlagWorkers,
	config.FlagKafkaBrokers,
}

// AddFlags registers the advisor flags on cmd.
func (f *Flags) AddFlags(cmd *cobra.Command) {
	config.AddStringFlag(cmd, config.Flags, config.FlagProviderType, &f.ProviderType)
	config.AddStringFlag(cmd, config.Flags, config.FlagBaseURL, &f.BaseURL)
	config.AddStringFlag(cmd, config.Flags, config.FlagModel, &f.Model)
	config.AddStringFlag(cmd, config.Flags, config.FlagTimeout, &f.Timeout)
	config.AddStringFlag(cmd, config.Flags, config.FlagTranscriberURL, &f.TranscriberURL)
	config.AddStringFlag(cmd, config.Flags, config.FlagStorageDriver, &f.StorageDriver)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &f.SQLitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagPostgresDSN, &f.PostgresDSN)
	config.AddStringFlag(cmd, config.Flags, config.FlagMemoryProvider, &f.MemoryProvider)
	config.AddIntFlag(cmd, config.Flags, config.FlagMemoryWindow, &f.Window)
	config.AddStringFlag(cmd, config.Flags, config.FlagRedisURL, &f.RedisURL)
	config.AddUintFlag(cmd, config.Flags, config.FlagWorkers, &f.Workers)
	config.AddStringFlag(cmd, config.Flags, config.FlagKafkaBrokers, &f.KafkaBrokers)
}

// LoadViper initializes viper for cmd and binds the given registry keys so
// flags take precedence over env, config file and defaults.
func LoadViper(cmd *cobra.Command, registryKeys ...string) (*viper.Viper, error) {
	configDir, _ := cmd.Flags().GetString("config-dir")

	v, err := config.InitViper(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	config.BindRegisteredFlags(v, cmd, config.Flags, registryKeys)
	return v, nil
}
