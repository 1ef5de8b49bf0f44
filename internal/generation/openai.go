package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/hyperjump/kotae/internal/models"
)

// OpenAICompatible implements Generator for any OpenAI-compatible
// chat completions endpoint: OpenRouter, OpenAI, vLLM, LiteLLM and the like.
type OpenAICompatible struct {
	config Config
	http   *httpClient
}

// NewOpenAICompatible creates a generator. Missing base URL and model fall back to defaults.
func NewOpenAICompatible(cfg Config) *OpenAICompatible {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	headers := map[string]string{}
	if cfg.APIKey != "" {
		headers["Authorization"] = "Bearer " + cfg.APIKey
	}
	if cfg.SiteURL != "" {
		headers["HTTP-Referer"] = cfg.SiteURL
	}
	if cfg.AppName != "" {
		headers["X-Title"] = cfg.AppName
	}

	return &OpenAICompatible{
		config: cfg,
		http:   newHTTPClient(cfg.BaseURL, cfg.Timeout(), headers),
	}
}

// Model returns the configured model ID.
func (c *OpenAICompatible) Model() string { return c.config.Model }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		FinishReason string `json:"finish_reason"`
		Message      struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate sends messages to /chat/completions and returns the first choice's content.
func (c *OpenAICompatible) Generate(ctx context.Context, messages []models.ChatMessage) (string, error) {
	if c.config.APIKey == "" {
		return "", ErrNotConfigured
	}

	body := chatRequest{
		Model:       c.config.Model,
		Messages:    make([]chatMessage, 0, len(messages)),
		MaxTokens:   c.config.MaxTokens,
		Temperature: c.config.Temperature,
	}
	for _, m := range messages {
		body.Messages = append(body.Messages, chatMessage{Role: m.Role, Content: m.Content})
	}

	resp, err := c.http.post(ctx, "/chat/completions", body)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{StatusCode: resp.StatusCode, Message: readErrorBody(resp)}
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("chat completion decode: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	content := strings.TrimSpace(out.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyResponse
	}
	return content, nil
}
