// Package knowledge keeps the current snapshot of knowledge entries: it reloads
// them from a source into storage and the browse index, and hands immutable
// snapshots to the answer router.
package knowledge

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/fileid"
	"github.com/hyperjump/kotae/internal/keyword"
	"github.com/hyperjump/kotae/internal/metrics"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/source"
	"github.com/hyperjump/kotae/internal/storage"
)

// ErrNoSource is returned by Refresh when the store was built without a source.
var ErrNoSource = errors.New("no knowledge source configured")

// RefreshResult summarizes one reload.
type RefreshResult struct {
	Version  string        `json:"version"`
	Entries  int           `json:"entries"`
	Source   string        `json:"source"`
	Duration time.Duration `json:"duration_ns"`
}

// Store serves snapshots from memory and reloads them from the source on demand.
// The current snapshot is swapped atomically, so a reader always sees one
// consistent version.
type Store struct {
	src     source.Source
	storage storage.Storage
	index   keyword.EntryIndex
	metrics *metrics.Manager
	logger  *zap.Logger

	mu     sync.RWMutex
	snap   models.Snapshot
	loaded bool

	refreshMu sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithIndex sets the keyword index kept in sync with storage.
func WithIndex(idx keyword.EntryIndex) Option {
	return func(s *Store) { s.index = idx }
}

// WithMetrics sets the metrics manager.
func WithMetrics(m *metrics.Manager) Option {
	return func(s *Store) { s.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewStore creates a store. src may be nil, in which case only the persisted
// snapshot is served.
func NewStore(src source.Source, st storage.Storage, opts ...Option) *Store {
	s := &Store{
		src:     src,
		storage: st,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open loads the persisted snapshot. When nothing has been persisted yet and a
// source is configured, it refreshes from the source.
func (s *Store) Open(ctx context.Context) error {
	snap, err := s.storage.LoadSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("load persisted snapshot: %w", err)
	}
	if snap.Version == "" && s.src != nil {
		_, err := s.Refresh(ctx)
		return err
	}
	s.swap(snap)
	s.logger.Info("knowledge snapshot loaded",
		zap.String("version", snap.Version),
		zap.Int("entries", snap.Len()))
	return nil
}

// Refresh reloads every entry from the source, persists them under a new
// version, re-indexes them and makes them the current snapshot. A failed
// refresh leaves the current snapshot in place.
func (s *Store) Refresh(ctx context.Context) (RefreshResult, error) {
	if s.src == nil {
		return RefreshResult{}, ErrNoSource
	}
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	start := time.Now()
	res, err := s.refresh(ctx)
	res.Duration = time.Since(start)
	s.metrics.RecordRefresh(err)
	if err != nil {
		s.logger.Warn("knowledge refresh failed", zap.String("source", s.src.Name()), zap.Error(err))
		return res, err
	}
	s.logger.Info("knowledge refreshed",
		zap.String("source", res.Source),
		zap.String("version", res.Version),
		zap.Int("entries", res.Entries),
		zap.Duration("duration", res.Duration))
	return res, nil
}

func (s *Store) refresh(ctx context.Context) (RefreshResult, error) {
	res := RefreshResult{Source: s.src.Name()}

	entries, err := s.src.Load(ctx)
	if err != nil {
		return res, fmt.Errorf("load source: %w", err)
	}
	if _, err := s.storage.ReplaceEntries(ctx, fileid.SourceID(s.src.Location()), entries); err != nil {
		return res, fmt.Errorf("persist entries: %w", err)
	}
	if s.index != nil {
		if err := s.index.ReplaceAll(ctx, entries); err != nil {
			// Browsing degrades; answering does not depend on the index.
			s.logger.Warn("keyword index update failed", zap.Error(err))
		}
	}

	snap, err := s.storage.LoadSnapshot(ctx)
	if err != nil {
		return res, fmt.Errorf("reload snapshot: %w", err)
	}
	s.swap(snap)

	res.Version = snap.Version
	res.Entries = snap.Len()
	return res, nil
}

func (s *Store) swap(snap models.Snapshot) {
	s.mu.Lock()
	s.snap = snap
	s.loaded = true
	s.mu.Unlock()
	s.metrics.SetEntries(snap.Len())
}

// LoadSnapshot returns the current snapshot. Callers must not modify its entries.
func (s *Store) LoadSnapshot(ctx context.Context) (models.Snapshot, error) {
	s.mu.RLock()
	snap, loaded := s.snap, s.loaded
	s.mu.RUnlock()
	if loaded {
		return snap, nil
	}

	snap, err := s.storage.LoadSnapshot(ctx)
	if err != nil {
		return models.Snapshot{}, err
	}
	s.swap(snap)
	return snap, nil
}

// Get returns one entry by ID.
func (s *Store) Get(ctx context.Context, id string) (*models.KnowledgeEntry, error) {
	return s.storage.GetEntry(ctx, id)
}

// List returns a page of entries in sheet order.
func (s *Store) List(ctx context.Context, offset, limit int) (*models.EntryList, error) {
	entries, err := s.storage.ListEntries(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	total, err := s.storage.CountEntries(ctx)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []*models.KnowledgeEntry{}
	}
	return &models.EntryList{Entries: entries, Total: total}, nil
}

// Search returns entries matching query using the keyword index, best first.
// Without an index it falls back to a case-insensitive substring scan of the snapshot.
func (s *Store) Search(ctx context.Context, query string, limit int) (*models.EntryList, error) {
	out := &models.EntryList{Entries: []*models.KnowledgeEntry{}, Query: query}

	if s.index == nil {
		snap, err := s.LoadSnapshot(ctx)
		if err != nil {
			return nil, err
		}
		for i := range snap.Entries {
			if len(out.Entries) >= limit {
				break
			}
			if containsFold(snap.Entries[i].Question, query) || containsFold(snap.Entries[i].Answer, query) {
				e := snap.Entries[i]
				out.Entries = append(out.Entries, &e)
			}
		}
		out.Total = int64(len(out.Entries))
		return out, nil
	}

	hits, err := s.index.Search(ctx, query, limit, &keyword.SearchOptions{FuzzyEnabled: true, PhraseBoost: 1.5})
	if err != nil {
		return nil, fmt.Errorf("search entries: %w", err)
	}
	for _, hit := range hits {
		e, err := s.storage.GetEntry(ctx, hit.ID)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out.Entries = append(out.Entries, e)
	}
	out.Total = int64(len(out.Entries))
	return out, nil
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(strings.TrimSpace(sub)))
}

// Info returns the stored snapshot description.
func (s *Store) Info(ctx context.Context) (storage.SnapshotInfo, error) {
	return s.storage.Info(ctx)
}

// SourceName returns the configured source name, or "" when there is none.
func (s *Store) SourceName() string {
	if s.src == nil {
		return ""
	}
	return s.src.Name()
}

// RunPeriodic refreshes every interval until ctx is done. Errors are logged and
// the previous snapshot is kept.
func (s *Store) RunPeriodic(ctx context.Context, interval time.Duration) {
	if interval <= 0 || s.src == nil {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = s.Refresh(ctx)
		}
	}
}
