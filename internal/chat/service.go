package chat

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joebot/nightslayer-bot/internal/llm"
	"github.com/joebot/nightslayer-bot/internal/store"
)

const (
	// DefaultHistoryLimit is how many stored turns are replayed to the model.
	DefaultHistoryLimit = 10
	// DefaultTemperature keeps replies close to the persona.
	DefaultTemperature = 0.4
)

// stopSequences cut off chat-template leakage from local models.
var stopSequences = []string{"<|im_end|>", "<|im_start|>", "</s>", "[INST]"}

// History is the persistence the conversation service needs.
type History interface {
	AppendMessage(ctx context.Context, contextKey, role, content string) error
	RecentMessages(ctx context.Context, contextKey string, limit int) ([]store.Message, error)
	SystemPrompt(ctx context.Context) (string, error)
	ResponseCap(ctx context.Context) int
}

// Service runs conversations against an LLM, replaying stored history.
type Service struct {
	provider     llm.Provider
	history      History
	historyLimit int
	temperature  float64
	maxTokens    int
}

// Options tunes a Service. Zero values select the defaults.
type Options struct {
	HistoryLimit int
	Temperature  float64
	MaxTokens    int
}

// NewService creates a conversation service.
func NewService(provider llm.Provider, history History, opts Options) *Service {
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = DefaultHistoryLimit
	}
	if opts.Temperature <= 0 {
		opts.Temperature = DefaultTemperature
	}
	return &Service{
		provider:     provider,
		history:      history,
		historyLimit: opts.HistoryLimit,
		temperature:  opts.Temperature,
		maxTokens:    opts.MaxTokens,
	}
}

// Ask records the user's message under contextKey, asks the model with the
// recent history, and records the reply.
func (s *Service) Ask(ctx context.Context, contextKey, text string) (string, error) {
	if err := s.history.AppendMessage(ctx, contextKey, "user", text); err != nil {
		return "", fmt.Errorf("store user message: %w", err)
	}

	messages, err := s.buildMessages(ctx, contextKey)
	if err != nil {
		return "", err
	}

	reply, err := s.complete(ctx, messages)
	if err != nil {
		return "", err
	}

	if err := s.history.AppendMessage(ctx, contextKey, "assistant", reply); err != nil {
		slog.Error("Failed to store assistant message", "context", contextKey, "err", err)
	}
	return reply, nil
}

// OneShot asks a single stateless question.
func (s *Service) OneShot(ctx context.Context, systemPrompt, text string) (string, error) {
	var messages []llm.Message
	if systemPrompt != "" {
		messages = append(messages, llm.Message{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, llm.Message{Role: "user", Content: text})
	return s.complete(ctx, messages)
}

func (s *Service) buildMessages(ctx context.Context, contextKey string) ([]llm.Message, error) {
	system, err := s.history.SystemPrompt(ctx)
	if err != nil {
		return nil, fmt.Errorf("load system prompt: %w", err)
	}
	turns, err := s.history.RecentMessages(ctx, contextKey, s.historyLimit)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	messages := make([]llm.Message, 0, len(turns)+1)
	if system != "" {
		messages = append(messages, llm.Message{Role: "system", Content: system})
	}
	for _, t := range turns {
		messages = append(messages, llm.Message{Role: t.Role, Content: t.Content})
	}

	if last := len(messages) - 1; last >= 0 && messages[last].Role == "user" {
		messages[last].Content += fmt.Sprintf("\n(Reply in %d words or less. Stay in character.)", s.history.ResponseCap(ctx))
	}
	return messages, nil
}

func (s *Service) complete(ctx context.Context, messages []llm.Message) (string, error) {
	resp, err := s.provider.Chat(ctx, llm.ChatRequest{
		Messages:    messages,
		Temperature: s.temperature,
		MaxTokens:   s.maxTokens,
		Stop:        stopSequences,
	})
	if err != nil {
		return "", err
	}
	if resp.Content == "" {
		return "", llm.ErrEmptyResponse
	}
	return resp.Content, nil
}
