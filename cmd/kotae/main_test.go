package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/source"
	"github.com/hyperjump/kotae/internal/storage"
)

func TestArgsReorder(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{
			name:     "flags after question are moved first",
			args:     []string{"refund policy", "-output", "json"},
			expected: []string{"-output", "json", "refund policy"},
		},
		{
			name:     "flags first returns unchanged",
			args:     []string{"-output", "json", "refund policy"},
			expected: []string{"-output", "json", "refund policy"},
		},
		{
			name:     "question only returns unchanged",
			args:     []string{"refund policy"},
			expected: []string{"refund policy"},
		},
		{
			name:     "empty args returns unchanged",
			args:     []string{},
			expected: []string{},
		},
		{
			name:     "multiple positionals then flags",
			args:     []string{"one", "two", "-limit", "5"},
			expected: []string{"-limit", "5", "one", "two"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := argsReorder(tt.args)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("argsReorder() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{"single word", []string{"refund"}, "refund"},
		{"multiple words", []string{"reset", "password"}, "reset password"},
		{"single quoted phrase", []string{"reset password"}, "reset password"},
		{"empty args", []string{}, ""},
		{"blank args", []string{"  ", "  "}, ""},
		{"one space", []string{" "}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildQuery(tt.args)
			if got != tt.expected {
				t.Errorf("buildQuery(%v) = %q, want %q", tt.args, got, tt.expected)
			}
		})
	}
}

func TestSourceForFile(t *testing.T) {
	base := config.SourceConfig{URL: "https://example.com/sheet.csv", Type: source.TypeCSV, Sheet: "FAQ"}

	got := sourceForFile(base, "/data/faq.xlsx", "")
	if got.Type != source.TypeXLSX || got.Path != "/data/faq.xlsx" || got.URL != "" {
		t.Errorf("xlsx: got %+v", got)
	}
	if got.Sheet != "FAQ" {
		t.Errorf("sheet should be kept when not overridden, got %q", got.Sheet)
	}

	got = sourceForFile(base, "/data/FAQ.CSV", "Other")
	if got.Type != source.TypeCSV || got.Sheet != "Other" {
		t.Errorf("csv: got %+v", got)
	}
}

func TestLoadConfig_prefersCwdConfigWhenDefaultPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
debug: true
server:
  host: "localhost"
  port: 8080
storage:
  database_path: "test.db"
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	origWd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(origWd) }()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatal(err)
	}
	// On macOS, cwd can be /private/var/... while configPath from t.TempDir() is /var/...; compare canonical paths.
	resolvedCanon, _ := filepath.EvalSymlinks(resolved)
	configPathCanon, _ := filepath.EvalSymlinks(configPath)
	if resolvedCanon != configPathCanon {
		t.Errorf("resolved path = %s (canon %s), want %s (canon %s)", resolved, resolvedCanon, configPath, configPathCanon)
	}
	if !cfg.Debug {
		t.Error("debug should be true from cwd config.yaml")
	}
}

func TestLoadConfig_usesExplicitPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "127.0.0.1"
  port: 9000
storage:
  database_path: "test.db"
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		t.Fatal(err)
	}
	if resolved != configPath {
		t.Errorf("resolved path = %s, want %s", resolved, configPath)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "faq.csv")
	csv := "Question,Answer\n" +
		"How do I reset my password?,Use the Forgot Password link on the sign-in page.\n" +
		"What is your refund policy?,Refunds are available within 30 days.\n"
	if err := os.WriteFile(csvPath, []byte(csv), 0600); err != nil {
		t.Fatal(err)
	}
	cfg := &config.Config{
		Storage: config.StorageConfig{
			DatabasePath:   filepath.Join(dir, "entries.db"),
			BleveIndexPath: filepath.Join(dir, "bleve"),
		},
		Source: config.SourceConfig{Path: csvPath},
	}
	config.ApplyDefaults(cfg)
	return cfg
}

func TestInitializeComponents_answersFromImportedSheet(t *testing.T) {
	cfg := testConfig(t)
	components, err := initializeComponents(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("initializeComponents: %v", err)
	}
	defer components.Close()

	ctx := context.Background()
	res, err := components.Store.Refresh(ctx)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if res.Entries != 2 {
		t.Errorf("imported %d entries, want 2", res.Entries)
	}

	answer, err := components.Router.Answer(ctx, []models.ChatMessage{
		{Role: models.RoleUser, Content: "How do I reset my password?"},
	})
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if answer.Source.Type != models.SourceKnowledgeBase {
		t.Errorf("source = %q, want knowledge base", answer.Source.Type)
	}
	if !strings.Contains(answer.Reply, "Forgot Password") {
		t.Errorf("reply = %q", answer.Reply)
	}
}

func TestLocalStatus(t *testing.T) {
	cfg := testConfig(t)
	loadedAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	status := localStatus(cfg, storage.SnapshotInfo{Version: "v1", Count: 2, LoadedAt: loadedAt})

	if status.Entries != 2 || status.Version != "v1" || status.Source != cfg.Source.Path {
		t.Errorf("status = %+v", status)
	}
	if status.LoadedAt == nil || !status.LoadedAt.Equal(loadedAt) {
		t.Errorf("loaded_at = %v", status.LoadedAt)
	}
	if status.Config == nil || status.Config.MatchThreshold != cfg.Matching.MatchThreshold {
		t.Errorf("config = %+v", status.Config)
	}

	var buf bytes.Buffer
	writeStatusText(&buf, &status)
	for _, want := range []string{"entries:            2", "version:            v1", "loaded_at:          2026-01-02T03:04:05Z", "# configuration"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("status text missing %q:\n%s", want, buf.String())
		}
	}
}

func TestWriteStatusText_neverLoaded(t *testing.T) {
	var buf bytes.Buffer
	writeStatusText(&buf, &statusResponse{})
	if !strings.Contains(buf.String(), "(never loaded)") {
		t.Errorf("expected never loaded marker:\n%s", buf.String())
	}
}

func TestDoJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/chat":
			var req models.ChatRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Messages) != 1 {
				http.Error(w, "bad request", http.StatusBadRequest)
				return
			}
			_ = json.NewEncoder(w).Encode(models.Answer{
				ID:     "a-1",
				Reply:  "echo: " + req.Messages[0].Content,
				Source: models.Provenance{Type: models.SourceGenerated},
			})
		default:
			http.Error(w, "boom", http.StatusBadGateway)
		}
	}))
	defer srv.Close()

	answer, err := askViaHTTP(srv.URL, []models.ChatMessage{{Role: models.RoleUser, Content: "hi"}})
	if err != nil {
		t.Fatalf("askViaHTTP: %v", err)
	}
	if answer.Reply != "echo: hi" {
		t.Errorf("reply = %q", answer.Reply)
	}

	var out map[string]interface{}
	err = doJSON(http.MethodPost, srv.URL+"/api/v1/entries/refresh", nil, &out)
	if err == nil || !strings.Contains(err.Error(), "502") || !strings.Contains(err.Error(), "boom") {
		t.Errorf("expected 502 error with body, got %v", err)
	}
}
