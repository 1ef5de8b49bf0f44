package generation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/kotae/internal/models"
)

func TestOpenAICompatible_Generate(t *testing.T) {
	var got chatRequest
	var headers http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		headers = r.Header.Clone()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"gen-1","choices":[{"finish_reason":"stop","message":{"role":"assistant","content":"  Paris.  "}}]}`))
	}))
	defer srv.Close()

	g := NewOpenAICompatible(Config{
		BaseURL: srv.URL + "/v1/",
		APIKey:  "sk-test",
		Model:   "test/model",
		SiteURL: "https://kotae.example",
		AppName: "kotae",
	})

	reply, err := g.Generate(context.Background(), []models.ChatMessage{
		{Role: models.RoleSystem, Content: "be brief"},
		{Role: models.RoleUser, Content: "capital of France?"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Paris.", reply)

	assert.Equal(t, "test/model", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "capital of France?", got.Messages[1].Content)

	assert.Equal(t, "Bearer sk-test", headers.Get("Authorization"))
	assert.Equal(t, "https://kotae.example", headers.Get("HTTP-Referer"))
	assert.Equal(t, "kotae", headers.Get("X-Title"))
	assert.Equal(t, "application/json", headers.Get("Content-Type"))
}

func TestOpenAICompatible_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer srv.Close()

	g := NewOpenAICompatible(Config{BaseURL: srv.URL, APIKey: "k"})
	_, err := g.Generate(context.Background(), []models.ChatMessage{{Role: "user", Content: "hi"}})
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusTooManyRequests, se.StatusCode)
	assert.True(t, strings.Contains(se.Error(), "rate limited"))
}

func TestOpenAICompatible_EmptyResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no choices", `{"id":"x","choices":[]}`},
		{"blank content", `{"id":"x","choices":[{"message":{"role":"assistant","content":"   "}}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			g := NewOpenAICompatible(Config{BaseURL: srv.URL, APIKey: "k"})
			_, err := g.Generate(context.Background(), []models.ChatMessage{{Role: "user", Content: "hi"}})
			assert.ErrorIs(t, err, ErrEmptyResponse)
		})
	}
}

func TestOpenAICompatible_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	g := NewOpenAICompatible(Config{BaseURL: srv.URL, APIKey: "k"})
	_, err := g.Generate(context.Background(), []models.ChatMessage{{Role: "user", Content: "hi"}})
	assert.Error(t, err)
}

func TestOpenAICompatible_NotConfigured(t *testing.T) {
	g := NewOpenAICompatible(Config{})
	_, err := g.Generate(context.Background(), []models.ChatMessage{{Role: "user", Content: "hi"}})
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Equal(t, DefaultModel, g.Model())
}

func TestOpenAICompatible_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	g := NewOpenAICompatible(Config{BaseURL: srv.URL, APIKey: "k"})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := g.Generate(ctx, []models.ChatMessage{{Role: "user", Content: "hi"}})
	assert.Error(t, err)
}

func TestConfig_Timeout(t *testing.T) {
	assert.Equal(t, DefaultTimeout, Config{}.Timeout())
	assert.Equal(t, 5*time.Second, Config{TimeoutSec: 5}.Timeout())
}
