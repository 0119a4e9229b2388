package llm

import (
	"context"
	"errors"
)

// Transport failures surfaced to the caller; the core never retries these
var (
	ErrModelUnavailable = errors.New("language model unavailable")
	ErrModelTimeout     = errors.New("language model call timed out")
)

// Message is one conversation turn supplied as model context
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// CompletionRequest is one prompt-in/text-out call. History is the bounded
// trailing window of the conversation, never the full history.
type CompletionRequest struct {
	SystemPrompt string
	History      []Message
	Prompt       string
	ForceJSON    bool // constrain the response to the planner schema
}

// Client defines the interface for LLM interactions
type Client interface {
	GenerateResponse(ctx context.Context, req CompletionRequest) (string, error)
	GetModelInfo() ModelInfo
}

// ModelInfo contains information about the LLM model
type ModelInfo struct {
	Name                string
	Provider            string
	MaxCompletionTokens int
}

// Config holds configuration for LLM clients. PlannerSchema is the
// provider-specific structured-output schema used when ForceJSON is set:
// a JSON schema string for OpenAI, a *genai.Schema for Gemini.
type Config struct {
	Provider            string
	Model               string
	APIKey              string
	MaxCompletionTokens int
	Temperature         float64
	PlannerSchema       interface{}
}
