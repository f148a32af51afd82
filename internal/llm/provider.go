package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/joebot/nightslayer-bot/internal/config"
)

// ErrEmptyResponse is returned when the model produced no choices.
var ErrEmptyResponse = errors.New("no response from model")

// Message is a single chat turn.
type Message struct {
	Role    string // "system", "user" or "assistant"
	Content string
}

// ChatRequest holds parameters for an LLM chat request.
type ChatRequest struct {
	Messages    []Message
	Model       string
	MaxTokens   int
	Temperature float64
	Stop        []string
}

// Usage reports token accounting for one call.
type Usage struct {
	PromptTokens     int64
	CompletionTokens int64
}

// ChatResponse is the response from an LLM chat completion.
type ChatResponse struct {
	Content      string
	FinishReason string
	Usage        Usage
}

// Provider is the interface for LLM providers.
type Provider interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
	DefaultModel() string
}

// New builds the provider selected by cfg. It returns nil, nil when no
// model is configured.
func New(cfg config.LLMConfig) (Provider, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	switch cfg.Provider {
	case config.ProviderAnthropic:
		return NewAnthropicProvider(cfg.APIKey, cfg.APIURL, cfg.Model), nil
	case config.ProviderOpenAI, "":
		return NewOpenAIProvider(cfg.APIURL, cfg.APIKey, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
