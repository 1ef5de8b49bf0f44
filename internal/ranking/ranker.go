package ranking

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/hyperjump/kotae/internal/models"
)

// Ranker scores knowledge entries against a query and orders them.
// It holds no per-request state and is safe for concurrent use.
type Ranker struct {
	scorer     Scorer
	maxEntries int
}

// NewRanker creates a Ranker with a HybridScorer built from config.
func NewRanker(config *Config) *Ranker {
	if config == nil {
		config = DefaultConfig()
	}
	config.ApplyDefaults()

	return &Ranker{
		scorer:     NewHybridScorer(config),
		maxEntries: config.MaxEntries,
	}
}

// WithScorer replaces the scorer.
func (r *Ranker) WithScorer(s Scorer) *Ranker {
	r.scorer = s
	return r
}

// Scorer returns the scorer in use.
func (r *Ranker) Scorer() Scorer {
	return r.scorer
}

// RankMatches scores every entry's question against query and returns the
// top limit entries, highest score first. Ties keep their order in entries.
// An empty entries slice yields an empty result, not an error.
func (r *Ranker) RankMatches(query string, entries []models.KnowledgeEntry, limit int) ([]models.ScoredEntry, error) {
	if limit <= 0 {
		return nil, invalidArgument("limit must be positive, got %d", limit)
	}
	ranked, err := r.RankAll(query, entries)
	if err != nil {
		return nil, err
	}
	if limit < len(ranked) {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// RankAll scores and orders every entry without truncation.
func (r *Ranker) RankAll(query string, entries []models.KnowledgeEntry) ([]models.ScoredEntry, error) {
	if err := r.checkInput(query, entries); err != nil {
		return nil, err
	}

	results := make([]models.ScoredEntry, len(entries))
	for i := range entries {
		score, err := r.score(query, entries, i)
		if err != nil {
			return nil, err
		}
		results[i] = models.ScoredEntry{Entry: entries[i], Score: score}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	return results, nil
}

// FindBestMatch returns the highest scoring entry, or Absent when entries is empty.
// It is a single linear scan and agrees with the head of RankMatches(query, entries, 1):
// only a strictly greater score replaces the current best, so the earliest entry wins ties.
func (r *Ranker) FindBestMatch(query string, entries []models.KnowledgeEntry) (models.BestMatch, error) {
	if err := r.checkInput(query, entries); err != nil {
		return models.Absent(), err
	}
	if len(entries) == 0 {
		return models.Absent(), nil
	}

	bestIdx := -1
	bestScore := 0.0
	for i := range entries {
		score, err := r.score(query, entries, i)
		if err != nil {
			return models.Absent(), err
		}
		if bestIdx < 0 || score > bestScore {
			bestIdx = i
			bestScore = score
		}
	}

	return models.Found(models.ScoredEntry{Entry: entries[bestIdx], Score: bestScore}), nil
}

func (r *Ranker) checkInput(query string, entries []models.KnowledgeEntry) error {
	if strings.TrimSpace(query) == "" {
		return invalidArgument("query must not be blank")
	}
	if !utf8.ValidString(query) {
		return invalidArgument("query is not valid UTF-8")
	}
	if r.maxEntries > 0 && len(entries) > r.maxEntries {
		return &ResourceError{Count: len(entries), Limit: r.maxEntries}
	}
	return nil
}

func (r *Ranker) score(query string, entries []models.KnowledgeEntry, i int) (float64, error) {
	score, err := r.scorer.Score(query, entries[i].Question)
	if err != nil {
		return 0, &ScoringError{Index: i, EntryID: entries[i].ID, Err: err}
	}
	if math.IsNaN(score) {
		return 0, &ScoringError{Index: i, EntryID: entries[i].ID, Err: errNaNScore}
	}
	return clamp01(score), nil
}

// TopN returns the first n results.
func TopN(results []models.ScoredEntry, n int) []models.ScoredEntry {
	if n >= len(results) {
		return results
	}
	if n <= 0 {
		return nil
	}
	return results[:n]
}
