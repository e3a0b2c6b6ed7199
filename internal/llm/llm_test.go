package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saransh482003/healthassist/internal/resilience"
	"github.com/saransh482003/healthassist/pkg/anthropic"
	"github.com/saransh482003/healthassist/pkg/groq"
)

type fakeGroq struct {
	gotReq   groq.ChatCompletionRequest
	resp     *groq.ChatCompletionResponse
	err      error
	calls    int
	failures int
}

func (f *fakeGroq) ChatCompletion(_ context.Context, req groq.ChatCompletionRequest) (*groq.ChatCompletionResponse, error) {
	f.gotReq = req
	f.calls++
	if f.calls <= f.failures {
		return nil, f.err
	}
	return f.resp, nil
}

type fakeAnthropic struct {
	gotReq anthropic.MessageRequest
	resp   *anthropic.MessageResponse
	err    error
}

func (f *fakeAnthropic) CreateMessage(_ context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	f.gotReq = req
	return f.resp, f.err
}

func TestGroqModel_SystemPromptBecomesFirstMessage(t *testing.T) {
	client := &fakeGroq{resp: &groq.ChatCompletionResponse{
		Choices: []groq.Choice{{Message: groq.Message{Role: "assistant", Content: "hello"}}},
	}}
	m := NewGroqModel(client, "llama-3.3-70b-versatile")

	out, err := m.Complete(context.Background(), "be kind", []Message{
		{Role: "user", Content: "hi"},
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", out)

	require.Len(t, client.gotReq.Messages, 2)
	assert.Equal(t, "system", client.gotReq.Messages[0].Role)
	assert.Equal(t, "be kind", client.gotReq.Messages[0].Content)
	assert.Equal(t, "user", client.gotReq.Messages[1].Role)
	assert.Equal(t, "llama-3.3-70b-versatile", client.gotReq.Model)
}

func TestGroqModel_NoSystemPrompt(t *testing.T) {
	client := &fakeGroq{resp: &groq.ChatCompletionResponse{}}
	m := NewGroqModel(client, "")

	_, err := m.Complete(context.Background(), "", []Message{{Role: "user", Content: "hi"}})
	require.NoError(t, err)
	require.Len(t, client.gotReq.Messages, 1)
	assert.Equal(t, "user", client.gotReq.Messages[0].Role)
}

func TestGroqModel_RetriesRateLimit(t *testing.T) {
	client := &fakeGroq{
		failures: 2,
		err:      errors.New("groq: chat completion: unexpected status 429: rate limit reached"),
		resp: &groq.ChatCompletionResponse{
			Choices: []groq.Choice{{Message: groq.Message{Role: "assistant", Content: "hello"}}},
		},
	}
	m := NewGroqModel(client, "")
	m.retry.InitialBackoff = time.Millisecond
	m.retry.MaxBackoff = time.Millisecond

	out, err := m.Complete(context.Background(), "", []Message{{Role: "user", Content: "hi"}})
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
	assert.Equal(t, 3, client.calls)
}

func TestGroqModel_OpenBreakerFailsFast(t *testing.T) {
	client := &fakeGroq{
		failures: 100,
		err:      errors.New("groq: chat completion: unexpected status 503: provider down"),
	}
	m := NewGroqModel(client, "")
	m.retry.MaxAttempts = 1
	m.breaker = resilience.NewCircuitBreaker("groq", resilience.CircuitBreakerConfig{
		FailureThreshold: 2,
		ResetTimeout:     time.Minute,
	})

	for i := 0; i < 2; i++ {
		_, err := m.Complete(context.Background(), "", []Message{{Role: "user", Content: "hi"}})
		require.Error(t, err)
	}

	// The breaker is open now; the provider is no longer called.
	_, err := m.Complete(context.Background(), "", []Message{{Role: "user", Content: "hi"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, resilience.ErrCircuitOpen))
	assert.Equal(t, 2, client.calls)
}

func TestAnthropicModel_SystemPromptStaysSeparate(t *testing.T) {
	client := &fakeAnthropic{resp: &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: "hello"}},
	}}
	m := NewAnthropicModel(client, "claude-sonnet-4-5-20250929", 0)

	out, err := m.Complete(context.Background(), "be kind", []Message{
		{Role: "user", Content: "hi"},
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", out)

	assert.Equal(t, "be kind", client.gotReq.System)
	require.Len(t, client.gotReq.Messages, 1)
	assert.Equal(t, int64(4096), client.gotReq.MaxTokens)
}
