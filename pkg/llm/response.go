package llm

// ChatResponse is the provider-agnostic view of a completed chat call.
type ChatResponse struct {
	// Model that generated the response
	Model string `json:"model"`

	// The assistant's response message
	Message Message `json:"message"`

	// Stop reason reported by the provider (e.g. "stop", "length")
	StopReason string `json:"stop_reason,omitempty"`

	// Token usage, when the provider reports it
	Usage *Usage `json:"usage,omitempty"`
}

// Usage contains token counts.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty"`
}

// ErrorResponse is the JSON body returned by the HTTP API on failures.
type ErrorResponse struct {
	Error string `json:"error"`
}
