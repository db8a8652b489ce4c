package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/stretchr/testify/require"

	"parley/internal/assistant"
	"parley/internal/convo"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	MaxCompletionTokens int64   `json:"max_completion_tokens"`
	Temperature         float64 `json:"temperature"`
}

// newTestResponder points a responder at a stub completion endpoint and
// captures the request it sends.
func newTestResponder(t *testing.T, handler http.HandlerFunc) (*Responder, *chatRequest) {
	t.Helper()

	captured := &chatRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(captured))
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client := openai.NewClient(
		option.WithBaseURL(srv.URL),
		option.WithAPIKey("sk-test"),
		option.WithMaxRetries(0),
	)

	return NewResponder(client, Options{
		Model:       "gpt-4o-mini",
		MaxTokens:   500,
		Temperature: 0.7,
		System:      "You are a helpful voice assistant.",
	}), captured
}

func completionJSON(content string) string {
	return `{"id":"chatcmpl-1","object":"chat.completion","choices":[` +
		`{"index":0,"message":{"role":"assistant","content":` + mustMarshal(content) + `},"finish_reason":"stop"}]}`
}

func mustMarshal(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func TestRespondBuildsRequestInOrder(t *testing.T) {
	r, captured := newTestResponder(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(completionJSON("Hi there!")))
	})

	history := []convo.Message{
		{Role: convo.RoleUser, Content: "hello"},
		{Role: convo.RoleAssistant, Content: "Hi there!"},
	}

	reply, err := r.Respond(context.Background(), history, "how are you?")
	require.NoError(t, err)
	require.Equal(t, "Hi there!", reply)

	require.Equal(t, "gpt-4o-mini", captured.Model)
	require.Equal(t, int64(500), captured.MaxCompletionTokens)
	require.InDelta(t, 0.7, captured.Temperature, 1e-9)

	require.Len(t, captured.Messages, 4)
	require.Equal(t, "system", captured.Messages[0].Role)
	require.Equal(t, "You are a helpful voice assistant.", captured.Messages[0].Content)
	require.Equal(t, "user", captured.Messages[1].Role)
	require.Equal(t, "hello", captured.Messages[1].Content)
	require.Equal(t, "assistant", captured.Messages[2].Role)
	require.Equal(t, "user", captured.Messages[3].Role)
	require.Equal(t, "how are you?", captured.Messages[3].Content)
}

func TestRespondTrimsReply(t *testing.T) {
	r, _ := newTestResponder(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(completionJSON("  spaced out \n")))
	})

	reply, err := r.Respond(context.Background(), nil, "hello")
	require.NoError(t, err)
	require.Equal(t, "spaced out", reply)
}

func TestRespondServiceError(t *testing.T) {
	r, _ := newTestResponder(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":{"message":"overloaded"}}`, http.StatusInternalServerError)
	})

	_, err := r.Respond(context.Background(), nil, "hello")
	require.Error(t, err)
	require.Equal(t, assistant.KindServiceUnavailable, assistant.KindOf(err))
}

func TestRespondNoChoices(t *testing.T) {
	r, _ := newTestResponder(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"chatcmpl-1","object":"chat.completion","choices":[]}`))
	})

	_, err := r.Respond(context.Background(), nil, "hello")
	require.Error(t, err)
	require.Equal(t, assistant.KindInvalidResponse, assistant.KindOf(err))
}

func TestRespondBlankContent(t *testing.T) {
	r, _ := newTestResponder(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(completionJSON("   ")))
	})

	_, err := r.Respond(context.Background(), nil, "hello")
	require.Error(t, err)
	require.Equal(t, assistant.KindInvalidResponse, assistant.KindOf(err))
}
