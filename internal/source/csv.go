package source

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hyperjump/kotae/internal/models"
)

const defaultFetchTimeout = 30 * time.Second

// CSVSource reads entries from a CSV export: either a URL, such as a
// published Google Sheet (".../export?format=csv"), or a local file.
type CSVSource struct {
	location string
	opts     Options
	client   *http.Client
}

// NewCSVSource creates a source for location.
func NewCSVSource(location string, opts Options) *CSVSource {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	return &CSVSource{
		location: location,
		opts:     opts,
		client:   &http.Client{Timeout: timeout},
	}
}

// WithHTTPClient replaces the HTTP client used for remote exports.
func (s *CSVSource) WithHTTPClient(c *http.Client) *CSVSource {
	s.client = c
	return s
}

// Name returns the location.
func (s *CSVSource) Name() string {
	return s.location
}

// Location returns the URL or path.
func (s *CSVSource) Location() string {
	return s.location
}

func (s *CSVSource) remote() bool {
	return strings.HasPrefix(s.location, "http://") || strings.HasPrefix(s.location, "https://")
}

// Load fetches or opens the CSV and returns one entry per row with a question.
func (s *CSVSource) Load(ctx context.Context) ([]models.KnowledgeEntry, error) {
	body, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	r := csv.NewReader(body)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	sheet := s.opts.Sheet
	if sheet == "" {
		sheet = "csv"
		if !s.remote() {
			sheet = strings.TrimSuffix(filepath.Base(s.location), filepath.Ext(s.location))
		}
	}

	entries := detectColumns(rows, s.opts).entries(sheet, rows)
	if len(entries) == 0 {
		return nil, fmt.Errorf("%s: %w", s.Name(), ErrNoEntries)
	}
	return entries, nil
}

func (s *CSVSource) open(ctx context.Context) (io.ReadCloser, error) {
	if !s.remote() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		f, err := os.Open(s.location)
		if err != nil {
			return nil, fmt.Errorf("open csv: %w", err)
		}
		return f, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.location, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "text/csv")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch csv: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, fmt.Errorf("fetch csv: status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return resp.Body, nil
}
