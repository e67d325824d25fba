package completion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unisphere/unisphere-api/pkg/config"
)

func TestCompleteReturnsFirstChoice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		var req request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		assert.Len(t, req.Messages, 1)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  1. Q?\nAnswer: A  "}}]}`))
	}))
	defer srv.Close()

	client := NewClient(config.CompletionConfig{URL: srv.URL, APIKey: "key", Model: "test-model"})
	out, err := client.Complete(context.Background(), []Message{{Role: "user", Content: "hi"}})
	require.NoError(t, err)
	assert.Equal(t, "1. Q?\nAnswer: A", out)
}

func TestCompleteSurfacesUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer srv.Close()

	client := NewClient(config.CompletionConfig{URL: srv.URL})
	_, err := client.Complete(context.Background(), []Message{{Role: "user", Content: "hi"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestCompleteWithoutEndpoint(t *testing.T) {
	client := NewClient(config.CompletionConfig{})
	_, err := client.Complete(context.Background(), nil)
	require.Error(t, err)
}
