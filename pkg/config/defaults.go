package config

const (
	defaultProviderType    = "openrouter"
	defaultProviderBaseURL = "https://openrouter.ai/api/v1/chat/completions"
	defaultProviderModel   = "z-ai/glm-4.5-air:free"
	defaultProviderTimeout = "30s"

	defaultTranscriberModel = "whisper-1"

	defaultStorageDriver = "sqlite"

	defaultMemoryProvider = "local"
	defaultMemoryWindow   = 5
	defaultMemoryTTL      = "24h"

	defaultAPIListen = ":8000"

	defaultEventStreamProvider = "none"
	defaultEventStreamTopic    = "farmergpt.exchanges"

	defaultWorkerCount     = 3
	defaultWorkerQueueSize = 256
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Provider: ProviderConfig{
			Type:    defaultProviderType,
			BaseURL: defaultProviderBaseURL,
			Model:   defaultProviderModel,
			Timeout: defaultProviderTimeout,
		},
		Transcriber: TranscriberConfig{
			Model: defaultTranscriberModel,
		},
		Storage: StorageConfig{
			Driver: defaultStorageDriver,
		},
		Memory: MemoryConfig{
			Provider: defaultMemoryProvider,
			Window:   defaultMemoryWindow,
			TTL:      defaultMemoryTTL,
		},
		API: APIConfig{
			Listen: defaultAPIListen,
		},
		EventStream: EventStreamConfig{
			Provider: defaultEventStreamProvider,
			Topic:    defaultEventStreamTopic,
		},
		Worker: WorkerConfig{
			Count:     defaultWorkerCount,
			QueueSize: defaultWorkerQueueSize,
		},
	}
}
