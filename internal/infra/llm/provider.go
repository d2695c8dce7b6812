// Package llm is the model-agnostic chat completion layer used by the LLM
// translation backend. Adapters implement Provider so callers never depend
// on a specific vendor.
package llm

import "context"

// Provider performs non-streaming chat completions.
type Provider interface {
	ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error)
	ModelInfo() ModelMeta
	// HealthCheck returns nil if the provider is reachable.
	HealthCheck(ctx context.Context) error
}

// Message is a single conversation turn.
type Message struct {
	Role    string // "system" | "user" | "assistant"
	Content string
}

// ChatRequest is the input for a chat completion.
type ChatRequest struct {
	// Model overrides the provider default when non-empty.
	Model       string
	Messages    []Message
	Temperature float32
	MaxTokens   int
}

// ChatResponse is the assistant reply.
type ChatResponse struct {
	Content    string
	StopReason string // "stop" | "length" | "error"
}

// ModelMeta describes the provider/model identity.
type ModelMeta struct {
	ID       string // e.g. "llama3.2:3b"
	Provider string // e.g. "ollama"
}
