// Package models defines core data structures for knowledge entries, rankings, and answers.
package models

import "time"

// KnowledgeEntry is one question/answer pair from the curated knowledge base.
type KnowledgeEntry struct {
	ID       string                 `json:"id" db:"id"`
	Question string                 `json:"question" db:"question"`
	Answer   string                 `json:"answer" db:"answer"`
	Metadata map[string]interface{} `json:"metadata,omitempty" db:"metadata"`
}

// ScoredEntry is a knowledge entry with its relevance to a query, in [0,1].
type ScoredEntry struct {
	Entry KnowledgeEntry `json:"entry"`
	Score float64        `json:"score"`
}

// BestMatch is either Found (holding the top ScoredEntry) or Absent.
// The zero value is Absent.
type BestMatch struct {
	entry ScoredEntry
	found bool
}

// Found returns a BestMatch holding se.
func Found(se ScoredEntry) BestMatch {
	return BestMatch{entry: se, found: true}
}

// Absent returns a BestMatch that holds no entry.
func Absent() BestMatch {
	return BestMatch{}
}

// IsFound reports whether the match holds an entry.
func (m BestMatch) IsFound() bool {
	return m.found
}

// Entry returns the matched entry and true, or the zero value and false when Absent.
func (m BestMatch) Entry() (ScoredEntry, bool) {
	return m.entry, m.found
}

// Score returns the matched score, or 0 when Absent.
func (m BestMatch) Score() float64 {
	if !m.found {
		return 0
	}
	return m.entry.Score
}

// Snapshot is an immutable view of the entry store used to answer one query.
// Version changes whenever the store content is replaced.
type Snapshot struct {
	Version  string           `json:"version"`
	Entries  []KnowledgeEntry `json:"entries"`
	LoadedAt time.Time        `json:"loaded_at"`
}

// Len returns the number of entries in the snapshot.
func (s Snapshot) Len() int {
	return len(s.Entries)
}
