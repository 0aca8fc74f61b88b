package provider

import (
	"fmt"

	"github.com/farmergpt/farmergpt/pkg/llm/provider/ollama"
	"github.com/farmergpt/farmergpt/pkg/llm/provider/openai"
)

// Supported provider type constants
const (
	OpenAI = "openai"
	Ollama = "ollama"
)

// SupportedProviders returns the list of all supported provider type names.
func SupportedProviders() []string {
	return []string{OpenAI, Ollama}
}

// New creates the Provider for providerType.
// "openai" covers any OpenAI-compatible endpoint, OpenRouter included.
func New(providerType string, c Config) (Provider, error) {
	switch providerType {
	case OpenAI, "openrouter":
		return openai.New(c.Endpoint, c.APIKey, c.EffectiveTimeout()), nil
	case Ollama:
		return ollama.New(c.Endpoint, c.EffectiveTimeout()), nil
	default:
		return nil, fmt.Errorf("unknown provider type: %q (supported: %v)", providerType, SupportedProviders())
	}
}
