package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joebot/nightslayer-bot/internal/config"
)

func TestOpenAIProviderChat(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		data, _ := io.ReadAll(r.Body)
		json.Unmarshal(data, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1,
			"model": "local",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "Hail, traveler."}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 12, "completion_tokens": 3, "total_tokens": 15}
		}`)
	}))
	defer srv.Close()

	p := NewOpenAIProvider(srv.URL, "", "")
	resp, err := p.Chat(context.Background(), ChatRequest{
		Messages: []Message{
			{Role: "system", Content: "be brief"},
			{Role: "user", Content: "hello"},
		},
		Temperature: 0.4,
		Stop:        []string{"</s>", "[INST]"},
	})
	require.NoError(t, err)

	assert.Equal(t, "/v1/chat/completions", gotPath)
	assert.Equal(t, "Hail, traveler.", resp.Content)
	assert.Equal(t, "stop", resp.FinishReason)
	assert.EqualValues(t, 12, resp.Usage.PromptTokens)

	assert.Equal(t, "local", gotBody["model"])
	assert.InDelta(t, 0.4, gotBody["temperature"], 1e-9)
	assert.Equal(t, []any{"</s>", "[INST]"}, gotBody["stop"])
	msgs, ok := gotBody["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
}

func TestOpenAIProviderNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"x","object":"chat.completion","created":1,"model":"m","choices":[]}`)
	}))
	defer srv.Close()

	p := NewOpenAIProvider(srv.URL+"/v1/", "", "")
	_, err := p.Chat(context.Background(), ChatRequest{Messages: []Message{{Role: "user", Content: "hi"}}})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestOpenAIProviderHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"bad"}}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	p := NewOpenAIProvider(srv.URL, "", "")
	_, err := p.Chat(context.Background(), ChatRequest{Messages: []Message{{Role: "user", Content: "hi"}}})
	assert.Error(t, err)
}

func TestAnthropicProviderChat(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		data, _ := io.ReadAll(r.Body)
		json.Unmarshal(data, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-haiku-4-5",
			"content": [{"type": "text", "text": "Greetings."}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 5, "output_tokens": 2}
		}`)
	}))
	defer srv.Close()

	p := NewAnthropicProvider("key", srv.URL, "")
	resp, err := p.Chat(context.Background(), ChatRequest{
		Messages: []Message{
			{Role: "system", Content: "be brief"},
			{Role: "user", Content: "hello"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "/v1/messages", gotPath)
	assert.Equal(t, "Greetings.", resp.Content)
	assert.Equal(t, "end_turn", resp.FinishReason)
	assert.EqualValues(t, 2, resp.Usage.CompletionTokens)
	assert.NotNil(t, gotBody["system"])
	msgs, ok := gotBody["messages"].([]any)
	require.True(t, ok)
	assert.Len(t, msgs, 1, "system turns are not sent inline")
}

func TestBuildAnthropicParamsDefaults(t *testing.T) {
	params := buildAnthropicParams(ChatRequest{
		Messages: []Message{{Role: "user", Content: "hi"}, {Role: "assistant", Content: "yo"}},
		Stop:     []string{"</s>"},
	}, "claude-x")

	assert.Equal(t, "claude-x", string(params.Model))
	assert.EqualValues(t, defaultAnthropicMaxTokens, params.MaxTokens)
	assert.Len(t, params.Messages, 2)
	assert.Empty(t, params.System)
	assert.Equal(t, []string{"</s>"}, params.StopSequences)
}

func TestNewSelectsProvider(t *testing.T) {
	p, err := New(config.LLMConfig{Provider: config.ProviderOpenAI})
	require.NoError(t, err)
	assert.Nil(t, p, "no url means no provider")

	p, err = New(config.LLMConfig{Provider: config.ProviderOpenAI, APIURL: "http://localhost:8080"})
	require.NoError(t, err)
	assert.IsType(t, &OpenAIProvider{}, p)

	p, err = New(config.LLMConfig{Provider: config.ProviderAnthropic, APIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &AnthropicProvider{}, p)
	assert.Equal(t, defaultAnthropicModel, p.DefaultModel())
}
