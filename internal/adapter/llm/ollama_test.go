package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaComplete_SendsSystemAndUserMessages(t *testing.T) {
	var captured map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":{"content":"  a fine answer  "},"done":true}`))
	}))
	defer server.Close()

	client := NewOllamaClient(server.URL, "test-model", server.Client(), 100)
	text, err := client.Complete(context.Background(), "you are helpful", "hello", 0.7)

	require.NoError(t, err)
	assert.Equal(t, "a fine answer", text, "response is trimmed")

	assert.Equal(t, "test-model", captured["model"])
	assert.Equal(t, false, captured["stream"])

	messages, ok := captured["messages"].([]interface{})
	require.True(t, ok)
	require.Len(t, messages, 2)
	first := messages[0].(map[string]interface{})
	assert.Equal(t, "system", first["role"])
	assert.Equal(t, "you are helpful", first["content"])
	second := messages[1].(map[string]interface{})
	assert.Equal(t, "user", second["role"])

	options, ok := captured["options"].(map[string]interface{})
	require.True(t, ok)
	assert.InDelta(t, 0.7, options["temperature"], 1e-9)
}

func TestOllamaComplete_OmitsEmptySystemPrompt(t *testing.T) {
	var captured map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = w.Write([]byte(`{"message":{"content":"ok"},"done":true}`))
	}))
	defer server.Close()

	client := NewOllamaClient(server.URL, "test-model", server.Client(), 100)
	_, err := client.Complete(context.Background(), "", "hello", 0)

	require.NoError(t, err)
	messages := captured["messages"].([]interface{})
	require.Len(t, messages, 1)
	assert.Equal(t, "user", messages[0].(map[string]interface{})["role"])
}

func TestOllamaComplete_NonOKStatusIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	client := NewOllamaClient(server.URL, "missing-model", server.Client(), 100)
	_, err := client.Complete(context.Background(), "sys", "hello", 0)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestOllamaComplete_EmptyContentIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message":{"content":"   "},"done":true}`))
	}))
	defer server.Close()

	client := NewOllamaClient(server.URL, "test-model", server.Client(), 100)
	_, err := client.Complete(context.Background(), "sys", "hello", 0)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestOllamaComplete_CanceledContextIsError(t *testing.T) {
	client := NewOllamaClient("http://localhost:1", "test-model", http.DefaultClient, 100)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Complete(ctx, "sys", "hello", 0)
	require.Error(t, err)
}

func TestOllamaProvider(t *testing.T) {
	client := NewOllamaClient("http://localhost:11434", "qwen3-8b", http.DefaultClient, 100)
	assert.Equal(t, "ollama:qwen3-8b", client.Provider())
}
