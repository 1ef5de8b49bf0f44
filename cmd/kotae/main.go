// Package main is the Kotae CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/cli"
	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/generation"
	"github.com/hyperjump/kotae/internal/keyword"
	"github.com/hyperjump/kotae/internal/knowledge"
	"github.com/hyperjump/kotae/internal/metrics"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/ranking"
	"github.com/hyperjump/kotae/internal/router"
	"github.com/hyperjump/kotae/internal/server"
	"github.com/hyperjump/kotae/internal/source"
	"github.com/hyperjump/kotae/internal/storage"
	"github.com/hyperjump/kotae/internal/watcher"
	"github.com/hyperjump/kotae/pkg/utils"
)

var version = "dev"

const (
	defaultConfigPath = "/usr/local/etc/kotae/config.yaml"
	defaultServerURL  = "http://localhost:8080"
)

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development); if that exists it is used,
// so that "kotae server" from the project dir uses the project's config (including debug).
// Returns the config and the path that was actually loaded (for saving, etc.).
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "ask":
		runAsk()
	case "import":
		runImport()
	case "entries":
		runEntries()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("kotae version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (matching decisions, source reloads, etc.)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
		zap.Float64("match_threshold", cfg.Matching.MatchThreshold),
	)

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := components.Store.Open(ctx); err != nil {
		// Keep serving: questions fall back to the language model until a refresh succeeds.
		logger.Warn("initial knowledge load failed", zap.Error(err))
	}

	var watchSvc *watcher.Watcher
	if cfg.Source.Configured() && !cfg.Source.Remote() && cfg.Source.WatchOrDefault() {
		watchOpts := []watcher.WatcherOption{}
		if debugMode {
			watchOpts = append(watchOpts, watcher.WithLogger(logger))
		}
		watchOpts = append(watchOpts, watcher.WithOnRemove(func(path string) {
			logger.Warn("knowledge source removed; keeping the last snapshot", zap.String("path", path))
		}))
		store := components.Store
		watchSvc = watcher.NewWatcher([]string{cfg.Source.Path}, func(path string) {
			logger.Info("knowledge source changed", zap.String("path", path))
			_, _ = store.Refresh(ctx)
		}, watchOpts...)
		if err := watchSvc.Start(ctx); err != nil {
			logger.Warn("Failed to start watcher", zap.Error(err))
			watchSvc = nil
		}
	}
	if interval := cfg.Source.RefreshInterval(); interval > 0 && cfg.Source.Configured() {
		go components.Store.RunPeriodic(ctx, interval)
	}

	srvOpts := []server.Option{}
	if cfg.Metrics.EnabledOrDefault() {
		srvOpts = append(srvOpts, server.WithMetrics(components.Metrics))
	}
	srv := server.NewServer(components.Router, components.Store, cfg, logger, srvOpts...)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	if watchSvc != nil {
		watchSvc.Stop()
	}
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
}

// buildQuery joins all positional args with spaces so multi-word questions
// work the same with or without shell quoting.
func buildQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// argsReorder moves any flags (and their values) that appear after the
// positional arguments to the front so that flag.Parse() sees them. Go's flag
// package stops at the first non-flag argument, so "kotae ask refund policy
// -output json" would otherwise leave -output unparsed.
func argsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func parseFormat(s string) cli.OutputFormat {
	format, err := cli.ParseOutputFormat(s)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return format
}

func runAsk() {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (for direct mode)")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = answer directly from local storage)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: kotae ask [flags] <question>\n\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(argsReorder(os.Args[2:]))

	question := buildQuery(fs.Args())
	if question == "" {
		fs.Usage()
		os.Exit(1)
	}
	format := parseFormat(*outputFormat)
	messages := []models.ChatMessage{{Role: models.RoleUser, Content: question}}

	var answer *models.Answer
	if *serverURL != "" {
		var err error
		answer, err = askViaHTTP(*serverURL, messages)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Ask failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		logger, err := utils.NewLogger(cfg.Debug)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()

		components, err := initializeComponents(cfg, logger)
		if err != nil {
			logger.Fatal("Failed to initialize", zap.Error(err))
		}
		defer components.Close()

		ctx := context.Background()
		if err := components.Store.Open(ctx); err != nil {
			logger.Warn("knowledge load failed", zap.Error(err))
		}
		req := models.ChatRequest{Messages: messages}
		if err := req.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid question: %v\n", err)
			os.Exit(1)
		}
		answer, err = components.Router.Answer(ctx, messages)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Ask failed: %v\n", err)
			os.Exit(1)
		}
	}

	if err := cli.WriteAnswer(os.Stdout, answer, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func askViaHTTP(serverURL string, messages []models.ChatMessage) (*models.Answer, error) {
	var answer models.Answer
	if err := doJSON(http.MethodPost, serverURL+"/api/chat", models.ChatRequest{Messages: messages}, &answer); err != nil {
		return nil, err
	}
	return &answer, nil
}

func runImport() {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL; when set, asks the running server to reload its source instead")
	sheet := fs.String("sheet", "", "sheet to read (default: first sheet)")
	save := fs.Bool("save", false, "remember the imported file as the source in the config file")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: kotae import [flags] [file.xlsx|file.csv]\n\n")
		fmt.Fprintf(fs.Output(), "Without a file, reloads the source configured in the config file.\n\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(argsReorder(os.Args[2:]))

	if *serverURL != "" {
		if fs.NArg() > 0 {
			fmt.Fprintln(os.Stderr, "A file cannot be given with --server; the server reloads its configured source.")
			os.Exit(1)
		}
		var res knowledge.RefreshResult
		if err := doJSON(http.MethodPost, *serverURL+"/api/v1/entries/refresh", nil, &res); err != nil {
			fmt.Fprintf(os.Stderr, "Import failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Imported %d entries from %s (version %s)\n", res.Entries, res.Source, res.Version)
		return
	}

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if fs.NArg() > 0 {
		abs, err := filepath.Abs(fs.Arg(0))
		if err != nil {
			fmt.Printf("Invalid path: %v\n", err)
			os.Exit(1)
		}
		cfg.Source = sourceForFile(cfg.Source, abs, *sheet)
	} else if *sheet != "" {
		cfg.Source.Sheet = *sheet
	}
	if !cfg.Source.Configured() {
		fmt.Println("No source configured; pass a file or set source.path / source.url in the config.")
		os.Exit(1)
	}

	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer components.Close()

	res, err := components.Store.Refresh(context.Background())
	if err != nil {
		fmt.Printf("Import failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Imported %d entries from %s (version %s)\n", res.Entries, res.Source, res.Version)

	if *save && fs.NArg() > 0 {
		saved, err := config.Load(resolvedConfigPath)
		if err != nil {
			fmt.Printf("Failed to reload config for saving: %v\n", err)
			os.Exit(1)
		}
		// Keep environment secrets out of the file.
		if os.Getenv(config.EnvAPIKey) != "" || os.Getenv(config.EnvOpenRouterAPIKey) != "" {
			saved.Generation.APIKey = ""
		}
		saved.Source = cfg.Source
		if err := config.Save(resolvedConfigPath, saved); err != nil {
			fmt.Printf("Failed to save config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Source saved to %s\n", resolvedConfigPath)
	}
}

// sourceForFile points src at a local file, inferring its type from the extension.
func sourceForFile(src config.SourceConfig, path, sheet string) config.SourceConfig {
	src.Path = path
	src.URL = ""
	src.Type = source.TypeXLSX
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		src.Type = source.TypeCSV
	}
	if sheet != "" {
		src.Sheet = sheet
	}
	return src
}

func runEntries() {
	fs := flag.NewFlagSet("entries", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (for direct mode)")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = read local storage)")
	limit := fs.Int("limit", 20, "number of entries")
	offset := fs.Int("offset", 0, "entries to skip when listing")
	outputFormat := fs.String("output", "text", "output format: text or json")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: kotae entries [flags] [query]\n\n")
		fmt.Fprintf(fs.Output(), "Without a query, lists entries in sheet order; with one, searches questions and answers.\n\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(argsReorder(os.Args[2:]))

	query := buildQuery(fs.Args())
	format := parseFormat(*outputFormat)

	var list *models.EntryList
	if *serverURL != "" {
		params := url.Values{}
		params.Set("limit", strconv.Itoa(*limit))
		params.Set("offset", strconv.Itoa(*offset))
		if query != "" {
			params.Set("q", query)
		}
		list = &models.EntryList{}
		if err := doJSON(http.MethodGet, *serverURL+"/api/v1/entries?"+params.Encode(), nil, list); err != nil {
			fmt.Fprintf(os.Stderr, "Entries failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		logger, err := utils.NewLogger(cfg.Debug)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		components, err := initializeComponents(cfg, logger)
		if err != nil {
			logger.Fatal("Failed to initialize", zap.Error(err))
		}
		defer components.Close()

		ctx := context.Background()
		if query != "" {
			list, err = components.Store.Search(ctx, query, *limit)
		} else {
			list, err = components.Store.List(ctx, *offset, *limit)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Entries failed: %v\n", err)
			os.Exit(1)
		}
	}

	if err := cli.WriteEntries(os.Stdout, list, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

// statusConfigResponse holds configuration info returned by status.
type statusConfigResponse struct {
	MatchThreshold float64 `json:"match_threshold"`
	ContextSize    int     `json:"context_size"`
	MaxEntries     int     `json:"max_entries,omitempty"`
	Model          string  `json:"model,omitempty"`
	DatabasePath   string  `json:"database_path,omitempty"`
	BleveIndexPath string  `json:"bleve_index_path,omitempty"`
}

// statusResponse is the shape of GET /api/v1/status response.
type statusResponse struct {
	Entries        int64                 `json:"entries"`
	Version        string                `json:"version"`
	Source         string                `json:"source"`
	LoadedAt       *time.Time            `json:"loaded_at,omitempty"`
	DiskUsageBytes *int64                `json:"disk_usage_bytes,omitempty"`
	Config         *statusConfigResponse `json:"config,omitempty"`
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = use direct storage)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])
	format := parseFormat(*outputFormat)

	var status statusResponse
	if *serverURL != "" {
		if err := doJSON(http.MethodGet, *serverURL+"/api/v1/status", nil, &status); err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open storage: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()
		info, err := store.Info(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		status = localStatus(cfg, info)
	}

	if format == cli.OutputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		return
	}
	writeStatusText(os.Stdout, &status)
}

func localStatus(cfg *config.Config, info storage.SnapshotInfo) statusResponse {
	status := statusResponse{
		Entries: info.Count,
		Version: info.Version,
		Source:  cfg.Source.Path,
		Config: &statusConfigResponse{
			MatchThreshold: cfg.Matching.MatchThreshold,
			ContextSize:    cfg.Matching.ContextSize,
			MaxEntries:     cfg.Matching.MaxEntries,
			Model:          cfg.Generation.Model,
			DatabasePath:   cfg.Storage.DatabasePath,
			BleveIndexPath: cfg.Storage.BleveIndexPath,
		},
	}
	if cfg.Source.Remote() {
		status.Source = cfg.Source.URL
	}
	if !info.LoadedAt.IsZero() {
		loadedAt := info.LoadedAt
		status.LoadedAt = &loadedAt
	}
	paths := append(storage.DatabaseFiles(cfg.Storage.DatabasePath), cfg.Storage.BleveIndexPath)
	if diskBytes, err := storage.DiskUsageBytes(paths...); err == nil {
		status.DiskUsageBytes = &diskBytes
	}
	return status
}

func writeStatusText(w io.Writer, status *statusResponse) {
	fmt.Fprintf(w, "entries:            %d   # entries in the current snapshot\n", status.Entries)
	version := status.Version
	if version == "" {
		version = "(never loaded)"
	}
	fmt.Fprintf(w, "version:            %s\n", version)
	if status.Source != "" {
		fmt.Fprintf(w, "source:             %s\n", status.Source)
	}
	if status.LoadedAt != nil {
		fmt.Fprintf(w, "loaded_at:          %s\n", status.LoadedAt.Format(time.RFC3339))
	}
	if status.DiskUsageBytes != nil {
		fmt.Fprintf(w, "disk_usage_bytes:   %d   # storage + index on disk\n", *status.DiskUsageBytes)
	}
	if status.Config != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "# configuration")
		fmt.Fprintf(w, "match_threshold:    %.2f\n", status.Config.MatchThreshold)
		fmt.Fprintf(w, "context_size:       %d\n", status.Config.ContextSize)
		if status.Config.MaxEntries > 0 {
			fmt.Fprintf(w, "max_entries:        %d\n", status.Config.MaxEntries)
		}
		if status.Config.Model != "" {
			fmt.Fprintf(w, "model:              %s\n", status.Config.Model)
		}
		if status.Config.DatabasePath != "" {
			fmt.Fprintf(w, "database_path:      %s\n", status.Config.DatabasePath)
		}
		if status.Config.BleveIndexPath != "" {
			fmt.Fprintf(w, "bleve_index_path:   %s\n", status.Config.BleveIndexPath)
		}
	}
}

// doJSON sends body (when non-nil) as JSON and decodes a 200 response into out.
func doJSON(method, target string, body, out interface{}) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, target, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Components holds initialized services.
type Components struct {
	Storage      storage.Storage
	KeywordIndex keyword.EntryIndex
	Metrics      *metrics.Manager
	Store        *knowledge.Store
	Router       *router.Router
}

func (c *Components) Close() {
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
	if c.KeywordIndex != nil {
		_ = c.KeywordIndex.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	keywordIndex, err := keyword.NewBleveIndex(cfg.Storage.BleveIndexPath)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize keyword index: %w", err)
	}

	m := metrics.NewManager(metrics.WithNamespace(cfg.Metrics.Namespace))

	var src source.Source
	if cfg.Source.Configured() {
		src, err = source.New(cfg.Source.Options())
		if err != nil {
			_ = store.Close()
			_ = keywordIndex.Close()
			return nil, fmt.Errorf("failed to initialize source: %w", err)
		}
	}

	entries := knowledge.NewStore(src, store,
		knowledge.WithIndex(keywordIndex),
		knowledge.WithMetrics(m),
		knowledge.WithLogger(logger),
	)

	ranker := ranking.NewRanker(&cfg.Matching)
	matcher := ranking.NewSnapshotMatcher(ranker, ranking.NewResultCache(cfg.Matching.CacheSize))
	generator := generation.NewOpenAICompatible(cfg.Generation)
	if cfg.Generation.APIKey == "" {
		logger.Warn("no generation API key configured; questions without a knowledge base match will fail",
			zap.String("env", config.EnvAPIKey))
	}
	rt := router.New(entries, matcher, generator, &cfg.Matching,
		router.WithMetrics(m),
		router.WithLogger(logger),
	)

	return &Components{
		Storage:      store,
		KeywordIndex: keywordIndex,
		Metrics:      m,
		Store:        entries,
		Router:       rt,
	}, nil
}

func printUsage() {
	fmt.Println(`kotae - FAQ answers from a spreadsheet, with a language model fallback

Usage:
  kotae server [flags]             Start the HTTP server
  kotae ask [flags] <question>     Ask a question
  kotae import [flags] [file]      Load entries from the source (or the given workbook/CSV)
  kotae entries [flags] [query]    List or search knowledge entries
  kotae status [flags]             Show snapshot/storage status
  kotae version                    Show version
  kotae help                       Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/kotae/config.yaml)
  --debug            Enable debug logging

Ask Flags:
  --config string    Config file path (for direct mode)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") to answer from local storage.
  --output string    Output format: text or json (default: text)

Import Flags:
  --config string    Config file path
  --server string    Ask a running server to reload its source instead of importing locally
  --sheet string     Sheet to read (default: first sheet)
  --save             Remember the imported file as the source in the config file

Entries Flags:
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") for local storage.
  --limit int        Number of entries (default: 20)
  --offset int       Entries to skip when listing (default: 0)
  --output string    Output format: text or json (default: text)

Status Flags:
  --config string    Config file path (for direct storage mode)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") for direct storage.
  --output string    Output format: text or json (default: text)

Environment:
  KOTAE_GENERATION_API_KEY   Language model API key (OPENROUTER_API_KEY also accepted)
  KOTAE_SOURCE_URL           Published sheet CSV URL, overrides source.path

Examples:
  kotae server
  kotae import --save ./faq.xlsx
  kotae ask how do I reset my password
  kotae ask --output json "what is your refund policy?"
  kotae entries refund
  kotae status --output json`)
}
