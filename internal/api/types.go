package api

// MessageRequest is the body of POST /api/emojis.
type MessageRequest struct {
	Message           string `json:"message"`
	DisableModeration bool   `json:"disable_moderation"`
}

// EmojiResponse is the emoji translation of a message.
type EmojiResponse struct {
	Emojis           []string `json:"emojis"`
	Message          string   `json:"message"`
	ModerationPassed *bool    `json:"moderation_passed,omitempty"`
}

// SampleResponse carries one sample sentence.
type SampleResponse struct {
	Sample string `json:"sample"`
}

// HealthResponse is the document served by GET /health.
type HealthResponse struct {
	Status                   string `json:"status"`
	LLMURL                   string `json:"llm_url"`
	LLMModel                 string `json:"llm_model"`
	ContentModerationEnabled bool   `json:"content_moderation_enabled"`
	ModerationModel          string `json:"moderation_model,omitempty"`
}

// errorBody is the backend's error document.
type errorBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}
