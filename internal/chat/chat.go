// Package chat is the senior-care assistant: a system-prompted proxy to
// a chat model. Medical judgment stays with the model provider; this
// layer only shapes the conversation.
package chat

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/saransh482003/healthassist/internal/llm"
)

const systemPrompt = `You are a kind, patient, and knowledgeable virtual health companion for senior citizens and disabled individuals. Your goal is to offer clear, respectful, reassuring guidance in simple terms.

Guidelines:
- Be kind, non-judgmental, and encouraging in tone.
- Detect the user's language and respond in the same language.
- Provide basic, responsible health information: lifestyle tips, medication reminders, understanding symptoms, and when to seek help.
- Never diagnose conditions or prescribe treatments. Guidance that should come from a licensed professional must be deferred to one.
- When a query is beyond your scope, gently recommend consulting a doctor or healthcare provider.
- Prioritize safety, privacy, and empathy in every reply.

Format replies in markdown with clear structure and bullet points where helpful.`

// History is one prior exchange replayed for context.
type History struct {
	User      string `json:"user"`
	Assistant string `json:"assistant"`
}

// Assistant answers user questions through a chat model.
type Assistant struct {
	model llm.Model
}

// NewAssistant creates an Assistant on the given model.
func NewAssistant(m llm.Model) *Assistant {
	return &Assistant{model: m}
}

// Reply answers one question, replaying the previous exchange when the
// caller supplies it.
func (a *Assistant) Reply(ctx context.Context, question string, history History) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", eris.New("chat: empty question")
	}

	var msgs []llm.Message
	if history.User != "" || history.Assistant != "" {
		msgs = append(msgs,
			llm.Message{Role: "user", Content: history.User},
			llm.Message{Role: "assistant", Content: history.Assistant},
		)
	}
	msgs = append(msgs, llm.Message{Role: "user", Content: question})

	reply, err := a.model.Complete(ctx, systemPrompt, msgs)
	if err != nil {
		return "", eris.Wrap(err, "chat: completion")
	}
	return reply, nil
}
