// Package ranking scores knowledge entries against a query and picks the best ones.
package ranking

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Scorer computes the relevance of a candidate question to a query, in [0,1].
type Scorer interface {
	// Score returns the similarity of candidate to query.
	Score(query, candidate string) (float64, error)
	// Name returns the name of the scorer for debugging/logging.
	Name() string
}

var errInvalidEncoding = errors.New("candidate is not valid UTF-8")

// HybridScorer blends token overlap with fuzzy string similarity.
//
// The overlap term is the Sorensen-Dice coefficient over significant tokens,
// 2*|Q n C| / (|Q| + |C|). Normalizing by query plus candidate token count
// keeps a one-word entry from matching every query that mentions that word
// and keeps long entries from being penalized for their extra words. The
// fuzzy term is EditSimilarity over the token streams and rewards typos and
// close paraphrases. Edit distance runs over the tokens re-joined with single
// spaces, so punctuation does not count as an edit; a side with no tokens
// falls back to its normalized string. Scores are not symmetric in general.
type HybridScorer struct {
	overlapWeight float64
	fuzzyWeight   float64
}

// NewHybridScorer creates a scorer with the configured term weights.
func NewHybridScorer(config *Config) *HybridScorer {
	if config == nil {
		config = DefaultConfig()
	}
	overlap, fuzzy := config.OverlapWeight, config.FuzzyWeight
	if overlap <= 0 && fuzzy <= 0 {
		overlap, fuzzy = DefaultOverlapWeight, DefaultFuzzyWeight
	}
	return &HybridScorer{overlapWeight: overlap, fuzzyWeight: fuzzy}
}

// Name returns the scorer name.
func (s *HybridScorer) Name() string {
	return "hybrid"
}

// Score returns the weighted blend of overlap and fuzzy similarity.
// An empty candidate scores 0 and identical normalized strings score 1.
func (s *HybridScorer) Score(query, candidate string) (float64, error) {
	if !utf8.ValidString(candidate) {
		return 0, errInvalidEncoding
	}
	q := Normalize(query)
	c := Normalize(candidate)
	if c == "" || q == "" {
		return 0, nil
	}
	if q == c {
		return 1, nil
	}

	qTokens := Tokenize(q)
	cTokens := Tokenize(c)

	overlap := tokenOverlap(qTokens, cTokens)
	fuzzy := EditSimilarity(joinOr(qTokens, q), joinOr(cTokens, c))

	total := s.overlapWeight + s.fuzzyWeight
	score := (s.overlapWeight*overlap + s.fuzzyWeight*fuzzy) / total
	return clamp01(score), nil
}

// Normalize lower-cases s, trims it, and collapses runs of whitespace to one space.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Tokenize splits normalized text into runs of letters and digits.
func Tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// SignificantTokens returns the distinct tokens that are not stopwords.
func SignificantTokens(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		if !IsStopword(t) {
			set[t] = struct{}{}
		}
	}
	return set
}

// tokenOverlap returns the Dice coefficient of the significant token sets.
// All tokens are compared only when both sides are made of stopwords; when just
// one side is, the overlap is 0.
func tokenOverlap(qTokens, cTokens []string) float64 {
	qSet := SignificantTokens(qTokens)
	cSet := SignificantTokens(cTokens)
	switch {
	case len(qSet) == 0 && len(cSet) == 0:
		qSet = toSet(qTokens...)
		cSet = toSet(cTokens...)
	case len(qSet) == 0 || len(cSet) == 0:
		return 0
	}
	if len(qSet) == 0 || len(cSet) == 0 {
		return 0
	}
	shared := 0
	for t := range qSet {
		if _, ok := cSet[t]; ok {
			shared++
		}
	}
	return 2 * float64(shared) / float64(len(qSet)+len(cSet))
}

// joinOr joins tokens with spaces, or returns fallback when there are none.
func joinOr(tokens []string, fallback string) string {
	if len(tokens) == 0 {
		return fallback
	}
	return strings.Join(tokens, " ")
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
