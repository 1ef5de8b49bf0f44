// Package keyword provides full-text (BM25) search over knowledge entries for browsing.
// It is independent of answer routing, which always scores the whole snapshot.
package keyword

import (
	"context"

	"github.com/hyperjump/kotae/internal/models"
)

// SearchOptions optional parameters for keyword search. Nil means use defaults.
type SearchOptions struct {
	// QuestionBoost multiplies the score contribution from matches in the question field.
	// Values > 1 make question matches rank above answer-only matches (default 2.0).
	QuestionBoost float64
	// PhraseBoost multiplies the score when the query appears as a phrase in the question.
	PhraseBoost float64
	// FuzzyEnabled enables fuzzy matching for typo tolerance.
	FuzzyEnabled bool
	// Fuzziness is the maximum edit distance for fuzzy matching (1 or 2). Default 1.
	Fuzziness int
}

// EntryIndex defines keyword search operations over knowledge entries.
type EntryIndex interface {
	// ReplaceAll makes the index hold exactly entries.
	ReplaceAll(ctx context.Context, entries []models.KnowledgeEntry) error
	Search(ctx context.Context, query string, limit int, opts *SearchOptions) ([]*Hit, error)
	Close() error
	// DocCount returns the total number of entries in the index.
	DocCount() (uint64, error)
}

// Hit is a single keyword search hit.
type Hit struct {
	ID    string
	Score float64
}
