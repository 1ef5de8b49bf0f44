// Package generation calls a language model to answer questions the knowledge base cannot.
package generation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hyperjump/kotae/internal/models"
)

// Defaults target OpenRouter.
const (
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	DefaultModel   = "openai/gpt-4o-mini"
	DefaultTimeout = 60 * time.Second
)

var (
	// ErrNotConfigured is returned when no API key is set.
	ErrNotConfigured = errors.New("generation is not configured: missing API key")
	// ErrEmptyResponse is returned when the model returns no content.
	ErrEmptyResponse = errors.New("model returned an empty response")
)

// Generator produces a reply for a conversation. The first message is
// usually the system prompt.
type Generator interface {
	Generate(ctx context.Context, messages []models.ChatMessage) (string, error)
}

// Config holds the language model endpoint settings.
type Config struct {
	BaseURL     string  `yaml:"base_url"`
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	TimeoutSec  int     `yaml:"timeout_sec"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
	// SiteURL and AppName are sent as OpenRouter attribution headers.
	SiteURL string `yaml:"site_url"`
	AppName string `yaml:"app_name"`
}

// Timeout returns the request timeout.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSec <= 0 {
		return DefaultTimeout
	}
	return time.Duration(c.TimeoutSec) * time.Second
}

// StatusError is a non-200 response from the model endpoint.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("model endpoint returned %s", e.Message)
}
