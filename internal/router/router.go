// Package router answers a conversation from the knowledge base when an entry
// matches well enough, and otherwise asks the language model with the closest
// entries as context.
package router

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/generation"
	"github.com/hyperjump/kotae/internal/metrics"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/ranking"
)

// ErrGenerationFailure is returned when the language model could not produce a reply.
var ErrGenerationFailure = errors.New("generation failure")

// SnapshotLoader provides the entries to match against.
type SnapshotLoader interface {
	LoadSnapshot(ctx context.Context) (models.Snapshot, error)
}

// Matcher scores a snapshot against a query.
type Matcher interface {
	FindBestMatch(query string, snap models.Snapshot) (models.BestMatch, error)
	RankMatches(query string, snap models.Snapshot, limit int) ([]models.ScoredEntry, error)
}

// Router picks the answer source for each question.
type Router struct {
	loader    SnapshotLoader
	matcher   Matcher
	generator generation.Generator
	config    *ranking.Config
	metrics   *metrics.Manager
	logger    *zap.Logger
	newID     func() string
}

// Option configures a Router.
type Option func(*Router)

// WithMetrics sets the metrics manager.
func WithMetrics(m *metrics.Manager) Option {
	return func(r *Router) { r.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Router) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithIDGenerator replaces the answer ID generator.
func WithIDGenerator(fn func() string) Option {
	return func(r *Router) {
		if fn != nil {
			r.newID = fn
		}
	}
}

// New creates a router. A nil config uses ranking.DefaultConfig.
func New(loader SnapshotLoader, matcher Matcher, gen generation.Generator, config *ranking.Config, opts ...Option) *Router {
	if config == nil {
		config = ranking.DefaultConfig()
	}
	r := &Router{
		loader:    loader,
		matcher:   matcher,
		generator: gen,
		config:    config,
		logger:    zap.NewNop(),
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Config returns the matching configuration in use.
func (r *Router) Config() *ranking.Config {
	return r.config
}

// Answer replies to the latest user message of messages.
func (r *Router) Answer(ctx context.Context, messages []models.ChatMessage) (*models.Answer, error) {
	latest, ok := models.LatestUserMessage(messages)
	if !ok {
		return nil, fmt.Errorf("%w: a user message is required", ranking.ErrInvalidArgument)
	}
	query := latest.Content

	snap := r.loadSnapshot(ctx)
	start := time.Now()
	m, err := r.match(query, snap)
	if err != nil {
		return nil, err
	}
	r.metrics.ObserveRanking(time.Since(start), bestScoreForMetrics(m.best))

	if entry, ok := r.direct(m.best); ok {
		r.logger.Debug("answered from knowledge base",
			zap.String("entry_id", entry.Entry.ID),
			zap.Float64("score", entry.Score))
		r.metrics.RecordAnswer(string(models.SourceKnowledgeBase))
		question := entry.Entry.Question
		return &models.Answer{
			ID:    r.newID(),
			Reply: entry.Entry.Answer,
			Source: models.Provenance{
				Type:       models.SourceKnowledgeBase,
				MatchScore: entry.Score,
				Question:   &question,
			},
		}, nil
	}

	prompt := SystemPrompt(BuildContext(m.context))
	conversation := make([]models.ChatMessage, 0, len(messages)+1)
	conversation = append(conversation, models.ChatMessage{Role: models.RoleSystem, Content: prompt})
	conversation = append(conversation, messages...)

	genStart := time.Now()
	reply, err := r.generator.Generate(ctx, conversation)
	r.metrics.ObserveGeneration(time.Since(genStart), err)
	if err != nil {
		r.logger.Error("generation failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailure, err)
	}

	r.metrics.RecordAnswer(string(models.SourceGenerated))
	source := models.Provenance{Type: models.SourceGenerated}
	if entry, found := m.best.Entry(); found {
		question := entry.Entry.Question
		source.MatchScore = entry.Score
		source.Question = &question
	}
	r.logger.Debug("answered by language model",
		zap.Float64("best_score", source.MatchScore),
		zap.Int("context_entries", len(m.context)))

	return &models.Answer{
		ID:     r.newID(),
		Reply:  reply,
		Source: source,
	}, nil
}

// direct reports whether best is good enough to answer from verbatim.
func (r *Router) direct(best models.BestMatch) (models.ScoredEntry, bool) {
	entry, found := best.Entry()
	if !found || entry.Score < r.config.MatchThreshold || strings.TrimSpace(entry.Entry.Answer) == "" {
		return models.ScoredEntry{}, false
	}
	return entry, true
}

func (r *Router) loadSnapshot(ctx context.Context) models.Snapshot {
	snap, err := r.loader.LoadSnapshot(ctx)
	if err != nil {
		r.logger.Warn("loading entries failed, answering without the knowledge base", zap.Error(err))
		r.metrics.RecordDegraded(metrics.ReasonSnapshotLoad)
		return models.Snapshot{}
	}
	return snap
}

type matchResult struct {
	best    models.BestMatch
	context []models.ScoredEntry
}

// match finds the best entry and, when it is not good enough, the context
// entries. An entry that cannot be scored is dropped and matching is retried;
// after MaxScoringRetries drops, or when the snapshot is too large, matching
// continues against an empty snapshot.
func (r *Router) match(query string, snap models.Snapshot) (matchResult, error) {
	retries := 0
	for {
		res, err := r.matchOnce(query, snap)
		if err == nil {
			return res, nil
		}

		var se *ranking.ScoringError
		switch {
		case errors.As(err, &se):
			r.metrics.RecordScoringFailure()
			r.logger.Warn("dropping entry that could not be scored",
				zap.String("entry_id", se.EntryID),
				zap.Int("index", se.Index),
				zap.Error(se.Err))
			retries++
			if retries > r.config.MaxScoringRetries || se.Index < 0 || se.Index >= len(snap.Entries) {
				r.logger.Warn("too many entries failed scoring, answering without the knowledge base",
					zap.Int("failures", retries))
				r.metrics.RecordDegraded(metrics.ReasonScoringFailure)
				snap = models.Snapshot{}
				continue
			}
			snap = withoutEntry(snap, se.Index)
		case errors.Is(err, ranking.ErrResourceExceeded):
			r.logger.Warn("knowledge base too large to rank, answering without it", zap.Error(err))
			r.metrics.RecordDegraded(metrics.ReasonResourceExceeded)
			snap = models.Snapshot{}
		default:
			return matchResult{}, err
		}
	}
}

func (r *Router) matchOnce(query string, snap models.Snapshot) (matchResult, error) {
	best, err := r.matcher.FindBestMatch(query, snap)
	if err != nil {
		return matchResult{}, err
	}
	res := matchResult{best: best}
	if _, ok := r.direct(best); ok {
		return res, nil
	}
	if snap.Len() == 0 || r.config.ContextSize <= 0 {
		return res, nil
	}
	res.context, err = r.matcher.RankMatches(query, snap, r.config.ContextSize)
	if err != nil {
		return matchResult{}, err
	}
	return res, nil
}

// withoutEntry returns a copy of snap without the entry at i. The copy has no
// version so cached rankings of the full snapshot are not reused for it.
func withoutEntry(snap models.Snapshot, i int) models.Snapshot {
	entries := make([]models.KnowledgeEntry, 0, len(snap.Entries)-1)
	entries = append(entries, snap.Entries[:i]...)
	entries = append(entries, snap.Entries[i+1:]...)
	return models.Snapshot{Entries: entries, LoadedAt: snap.LoadedAt}
}

func bestScoreForMetrics(best models.BestMatch) float64 {
	if !best.IsFound() {
		return -1
	}
	return best.Score()
}
