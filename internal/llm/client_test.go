package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/f3rmion/hanzicam/internal/hanzi"
	"github.com/f3rmion/hanzicam/internal/prompt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func messageReply(text string) map[string]any {
	return map[string]any{
		"id":            "msg_test",
		"type":          "message",
		"role":          "assistant",
		"model":         DefaultModel,
		"content":       []map[string]any{{"type": "text", "text": text}},
		"stop_reason":   "end_turn",
		"stop_sequence": nil,
		"usage":         map[string]any{"input_tokens": 10, "output_tokens": 20},
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{
		APIKey:    "test-key",
		BaseURL:   srv.URL,
		MaxTokens: 256,
		Timeout:   2 * time.Second,
		Prompt:    prompt.DefaultOptions(),
	}, quiet)
	require.NoError(t, err)
	return c
}

var testImage = hanzi.Image{Data: []byte{0xff, 0xd8, 0xff}, MediaType: "image/jpeg"}

func TestClient_Recognize(t *testing.T) {
	t.Parallel()

	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(messageReply(
			`{"characters":[{"character":"你","pinyin":"nǐ"},{"character":"好","pinyin":"hǎo","meaning":"good"}],"translation":"Hello"}`))
	})

	result, err := c.Recognize(context.Background(), testImage)
	require.NoError(t, err)

	text, preview := hanzi.Previews(result.Characters)
	assert.Equal(t, "你好", text)
	assert.Equal(t, "nǐ hǎo", preview)
	assert.Equal(t, "Hello", result.TranslationOr(""))

	assert.Equal(t, DefaultModel, got["model"])
	msgs, ok := got["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 1)
	content := msgs[0].(map[string]any)["content"].([]any)
	require.Len(t, content, 2)
	assert.Equal(t, "image", content[0].(map[string]any)["type"])
	assert.Equal(t, "text", content[1].(map[string]any)["type"])
}

func TestClient_MalformedReply(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(messageReply(`{"characters":[{"character":"你"}]}`))
	})

	_, err := c.Recognize(context.Background(), testImage)
	require.Error(t, err)
	assert.ErrorIs(t, err, hanzi.ErrRecognitionFailed)
	assert.ErrorIs(t, err, hanzi.ErrMalformedResponse)

	var recErr *hanzi.RecognitionError
	require.True(t, errors.As(err, &recErr))
	assert.Equal(t, "unreadable reply", recErr.Cause)
}

func TestClient_ServiceError(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"type":"error","error":{"type":"api_error","message":"boom"}}`)
	})

	_, err := c.Recognize(context.Background(), testImage)
	assert.ErrorIs(t, err, hanzi.ErrRecognitionFailed)
	assert.NotErrorIs(t, err, hanzi.ErrMalformedResponse)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_EmptyPayload(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	_, err := c.Recognize(context.Background(), hanzi.Image{MediaType: "image/jpeg"})
	assert.ErrorIs(t, err, hanzi.ErrInvalidFrame)
}

func TestNewClient_Validation(t *testing.T) {
	t.Parallel()

	_, err := NewClient(Config{MaxTokens: 1, Timeout: time.Second}, quiet)
	assert.ErrorIs(t, err, hanzi.ErrInvalidConfiguration)

	_, err = NewClient(Config{APIKey: "k", Timeout: time.Second}, quiet)
	assert.ErrorIs(t, err, hanzi.ErrInvalidConfiguration)

	_, err = NewClient(Config{APIKey: "k", MaxTokens: 1}, quiet)
	assert.ErrorIs(t, err, hanzi.ErrInvalidConfiguration)
}
