package models

// AnswerSource identifies where an answer came from.
type AnswerSource string

const (
	// SourceKnowledgeBase means the reply is an entry's answer, verbatim.
	SourceKnowledgeBase AnswerSource = "knowledge-base"
	// SourceGenerated means the reply came from the language model fallback.
	SourceGenerated AnswerSource = "generated"
)

// Provenance describes which source produced an answer and the closest entry found.
// Score and Question are reported even when the score fell below the threshold.
type Provenance struct {
	Type       AnswerSource `json:"type"`
	MatchScore float64      `json:"match_score"`
	Question   *string      `json:"question"`
}

// Answer is the router's reply to a conversation.
type Answer struct {
	ID     string     `json:"id"`
	Reply  string     `json:"reply"`
	Source Provenance `json:"source"`
}

// EntryList is a page of knowledge entries.
type EntryList struct {
	Entries []*KnowledgeEntry `json:"entries"`
	Total   int64             `json:"total"`
	Query   string            `json:"query,omitempty"`
}
