// Package llm abstracts the chat-completion providers behind one
// interface so the assistant and extractor can run on either.
package llm

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/saransh482003/healthassist/internal/resilience"
	"github.com/saransh482003/healthassist/pkg/anthropic"
	"github.com/saransh482003/healthassist/pkg/groq"
)

// Message is a single conversational turn.
type Message struct {
	Role    string // "user" or "assistant"
	Content string
}

// Model produces one text completion for a system prompt plus messages.
type Model interface {
	Complete(ctx context.Context, system string, messages []Message) (string, error)
}

// GroqModel adapts the Groq chat API to Model. Calls are retried on
// transient failures; sustained provider outages trip a circuit breaker
// so requests fail fast instead of burning the retry budget.
type GroqModel struct {
	client  groq.Client
	model   string
	retry   resilience.RetryConfig
	breaker *resilience.CircuitBreaker
}

// NewGroqModel creates a GroqModel. An empty model uses the client default.
func NewGroqModel(client groq.Client, model string) *GroqModel {
	return &GroqModel{
		client:  client,
		model:   model,
		retry:   resilience.DefaultRetryConfig(),
		breaker: resilience.NewCircuitBreaker("groq", resilience.DefaultCircuitBreakerConfig()),
	}
}

func (m *GroqModel) Complete(ctx context.Context, system string, messages []Message) (string, error) {
	msgs := make([]groq.Message, 0, len(messages)+1)
	if system != "" {
		msgs = append(msgs, groq.Message{Role: "system", Content: system})
	}
	for _, msg := range messages {
		msgs = append(msgs, groq.Message{Role: msg.Role, Content: msg.Content})
	}

	resp, err := resilience.ExecuteVal(ctx, m.breaker, func(ctx context.Context) (*groq.ChatCompletionResponse, error) {
		return resilience.DoVal(ctx, m.retry, func(ctx context.Context) (*groq.ChatCompletionResponse, error) {
			return m.client.ChatCompletion(ctx, groq.ChatCompletionRequest{
				Model:    m.model,
				Messages: msgs,
			})
		})
	})
	if err != nil {
		return "", eris.Wrap(err, "llm: groq completion")
	}
	return resp.Text(), nil
}

// AnthropicModel adapts the Anthropic message API to Model.
type AnthropicModel struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	retry     resilience.RetryConfig
	breaker   *resilience.CircuitBreaker
}

// NewAnthropicModel creates an AnthropicModel.
func NewAnthropicModel(client anthropic.Client, model string, maxTokens int64) *AnthropicModel {
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	return &AnthropicModel{
		client:    client,
		model:     model,
		maxTokens: maxTokens,
		retry:     resilience.DefaultRetryConfig(),
		breaker:   resilience.NewCircuitBreaker("anthropic", resilience.DefaultCircuitBreakerConfig()),
	}
}

func (m *AnthropicModel) Complete(ctx context.Context, system string, messages []Message) (string, error) {
	msgs := make([]anthropic.Message, len(messages))
	for i, msg := range messages {
		msgs[i] = anthropic.Message{Role: msg.Role, Content: msg.Content}
	}

	resp, err := resilience.ExecuteVal(ctx, m.breaker, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return resilience.DoVal(ctx, m.retry, func(ctx context.Context) (*anthropic.MessageResponse, error) {
			return m.client.CreateMessage(ctx, anthropic.MessageRequest{
				Model:     m.model,
				MaxTokens: m.maxTokens,
				System:    system,
				Messages:  msgs,
			})
		})
	})
	if err != nil {
		return "", eris.Wrap(err, "llm: anthropic completion")
	}
	return resp.Text(), nil
}
