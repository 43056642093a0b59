package generator

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/matchcast/internal/config"
)

func TestRemoteClientSendsChatRequest(t *testing.T) {
	var gotAuth string
	var gotBody chatRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices": [{"message": {"content": "ok"}}]}`))
	}))
	defer server.Close()

	client := NewRemoteClient(&config.RemoteGeneratorConfig{
		URL:    server.URL,
		APIKey: "test-key",
	}, 5*time.Second, logrus.New())

	payload, err := client.Generate(context.Background(), "predict this")
	require.NoError(t, err)

	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "gpt-4o-mini", gotBody.Model)
	require.Len(t, gotBody.Messages, 1)
	assert.Equal(t, "predict this", gotBody.Messages[0].Content)

	body, ok := payload.(map[string]any)
	require.True(t, ok)
	assert.Contains(t, body, "choices")
}

func TestRemoteClientNon200IsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewRemoteClient(&config.RemoteGeneratorConfig{URL: server.URL, APIKey: "k"}, 5*time.Second, logrus.New())

	_, err := client.Generate(context.Background(), "prompt")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGeneratorUnavailable)
}

func TestRemoteClientConnectionRefusedIsUnavailable(t *testing.T) {
	client := NewRemoteClient(&config.RemoteGeneratorConfig{
		URL:    "http://127.0.0.1:1",
		APIKey: "k",
	}, time.Second, logrus.New())

	_, err := client.Generate(context.Background(), "prompt")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGeneratorUnavailable)
}

func TestLocalClientSendsGenerateRequest(t *testing.T) {
	var gotBody localRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"response": "{\"prediction\": \"Draw\"}"}`))
	}))
	defer server.Close()

	client := NewLocalClient(&config.LocalGeneratorConfig{
		URL:   server.URL,
		Model: "llama3",
	}, 5*time.Second, logrus.New())

	payload, err := client.Generate(context.Background(), "predict this")
	require.NoError(t, err)

	assert.Equal(t, "llama3", gotBody.Model)
	assert.False(t, gotBody.Stream)

	body, ok := payload.(map[string]any)
	require.True(t, ok)
	assert.Contains(t, body, "response")
}

func TestLocalClientMissingModel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "model 'llama3' not found, try pulling it first"}`, http.StatusNotFound)
	}))
	defer server.Close()

	client := NewLocalClient(&config.LocalGeneratorConfig{URL: server.URL, Model: "llama3"}, 5*time.Second, logrus.New())

	_, err := client.Generate(context.Background(), "prompt")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrModelNotFound)
}

func TestLocalClientOther404IsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such route", http.StatusNotFound)
	}))
	defer server.Close()

	client := NewLocalClient(&config.LocalGeneratorConfig{URL: server.URL, Model: "llama3"}, 5*time.Second, logrus.New())

	_, err := client.Generate(context.Background(), "prompt")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGeneratorUnavailable)
	assert.NotErrorIs(t, err, ErrModelNotFound)
}

func TestLocalClientRespectsContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer server.Close()

	client := NewLocalClient(&config.LocalGeneratorConfig{URL: server.URL, Model: "llama3"}, 30*time.Second, logrus.New())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Generate(ctx, "prompt")
	require.Error(t, err)
}
