// Package chat produces assistant replies through the chat completion API.
package chat

import (
	"context"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v3"

	"parley/internal/assistant"
	"parley/internal/convo"
)

// Options tune the completion request.
type Options struct {
	Model       string
	MaxTokens   int
	Temperature float64
	System      string
	Timeout     time.Duration
}

type Responder struct {
	client openai.Client
	opts   Options
}

func NewResponder(client openai.Client, opts Options) *Responder {
	return &Responder{client: client, opts: opts}
}

// Respond sends the system instruction, the history in order and the new
// utterance to the model and returns the reply text.
func (r *Responder) Respond(ctx context.Context, history []convo.Message, utterance string) (string, error) {
	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+2)
	msgs = append(msgs, openai.SystemMessage(r.opts.System))
	for _, m := range history {
		switch m.Role {
		case convo.RoleAssistant:
			msgs = append(msgs, openai.AssistantMessage(m.Content))
		default:
			msgs = append(msgs, openai.UserMessage(m.Content))
		}
	}
	msgs = append(msgs, openai.UserMessage(utterance))

	resp, err := r.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages:            msgs,
		Model:               openai.ChatModel(r.opts.Model),
		MaxCompletionTokens: openai.Int(int64(r.opts.MaxTokens)),
		Temperature:         openai.Float(r.opts.Temperature),
	})
	if err != nil {
		return "", assistant.NewError(assistant.KindServiceUnavailable, "chat completion", err)
	}

	if len(resp.Choices) == 0 {
		return "", assistant.NewError(assistant.KindInvalidResponse, "no choices in response", nil)
	}

	reply := strings.TrimSpace(resp.Choices[0].Message.Content)
	if reply == "" {
		return "", assistant.NewError(assistant.KindInvalidResponse, "empty message content", nil)
	}

	return reply, nil
}
