package llm

// ChatRequest is a provider-agnostic chat completion request.
type ChatRequest struct {
	// Model identifier sent to the provider (e.g. "z-ai/glm-4.5-air:free")
	Model string `json:"model"`

	// Messages in conversation order, persona instruction first
	Messages []Message `json:"messages"`
}
