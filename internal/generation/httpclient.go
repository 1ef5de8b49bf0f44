package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// httpClient posts JSON to a language model API.
type httpClient struct {
	client  *http.Client
	baseURL string
	headers map[string]string
}

func newHTTPClient(baseURL string, timeout time.Duration, headers map[string]string) *httpClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &httpClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		headers: headers,
	}
}

func (h *httpClient) post(ctx context.Context, path string, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range h.headers {
		req.Header.Set(k, v)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	return resp, nil
}

func drainAndClose(r io.ReadCloser) {
	_, _ = io.Copy(io.Discard, r)
	r.Close()
}

// readErrorBody extracts the provider's error message, falling back to the raw body.
func readErrorBody(resp *http.Response) string {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil || len(body) == 0 {
		return resp.Status
	}
	var apiErr struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
		return fmt.Sprintf("%s: %s", resp.Status, apiErr.Error.Message)
	}
	return fmt.Sprintf("%s: %s", resp.Status, string(body))
}
