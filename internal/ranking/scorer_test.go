package ranking

import (
	"math"
	"testing"
)

func TestHybridScorer_Identity(t *testing.T) {
	scorer := NewHybridScorer(nil)

	queries := []string{
		"How do I reset my password?",
		"refund policy",
		"how do i",  // stopwords only
		"???",       // no tokens at all
		"Café Menü", // non-ASCII
		"  spaced    out   question ",
	}
	for _, q := range queries {
		got, err := scorer.Score(q, q)
		if err != nil {
			t.Fatalf("Score(%q, %q) error: %v", q, q, err)
		}
		if got != 1 {
			t.Errorf("Score(%q, %q) = %v, want 1", q, q, got)
		}
	}
}

func TestHybridScorer_CaseAndWhitespaceInsensitive(t *testing.T) {
	scorer := NewHybridScorer(nil)
	got, err := scorer.Score("  HOW do   I reset  ", "how do i reset")
	if err != nil {
		t.Fatal(err)
	}
	if got != 1 {
		t.Errorf("got %v, want 1", got)
	}
}

func TestHybridScorer_Score(t *testing.T) {
	scorer := NewHybridScorer(nil)

	tests := []struct {
		name      string
		query     string
		candidate string
		wantMin   float64
		wantMax   float64
	}{
		{
			name:      "paraphrase clears threshold",
			query:     "how can I reset my password",
			candidate: "How do I reset my password?",
			wantMin:   DefaultMatchThreshold,
			wantMax:   1,
		},
		{
			name:      "typo clears threshold",
			query:     "how do i reset my pasword",
			candidate: "How do I reset my password?",
			wantMin:   DefaultMatchThreshold,
			wantMax:   1,
		},
		{
			name:      "unrelated stays below threshold",
			query:     "what is the weather today",
			candidate: "Refund policy",
			wantMin:   0,
			wantMax:   DefaultMatchThreshold - 0.01,
		},
		{
			name:      "no shared tokens and maximal distance",
			query:     "abc",
			candidate: "xyz",
			wantMin:   0,
			wantMax:   0,
		},
		{
			name:      "empty candidate",
			query:     "anything",
			candidate: "   ",
			wantMin:   0,
			wantMax:   0,
		},
		{
			name:      "partial overlap is positive",
			query:     "reset password",
			candidate: "How do I reset my password or username?",
			wantMin:   0.3,
			wantMax:   0.99,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := scorer.Score(tt.query, tt.candidate)
			if err != nil {
				t.Fatalf("Score error: %v", err)
			}
			if got < tt.wantMin || got > tt.wantMax {
				t.Errorf("Score(%q, %q) = %v, want between %v and %v", tt.query, tt.candidate, got, tt.wantMin, tt.wantMax)
			}
		})
	}
}

func TestHybridScorer_StopwordOnlyQuery(t *testing.T) {
	scorer := NewHybridScorer(nil)

	tests := []struct {
		query     string
		candidate string
	}{
		{"what is it?", "What is the refund policy?"},
		{"how do I", "How do I reset my password?"},
		{"can you", "Can you ship internationally?"},
	}
	for _, tt := range tests {
		got, err := scorer.Score(tt.query, tt.candidate)
		if err != nil {
			t.Fatalf("Score(%q, %q): %v", tt.query, tt.candidate, err)
		}
		if got >= DefaultMatchThreshold {
			t.Errorf("Score(%q, %q) = %v, want below %v", tt.query, tt.candidate, got, DefaultMatchThreshold)
		}
	}

	// Both sides without content words still compare on all tokens.
	overlapOnly := NewHybridScorer(&Config{OverlapWeight: 1, FuzzyWeight: 0})
	got, err := overlapOnly.Score("how do i", "how can i")
	if err != nil {
		t.Fatal(err)
	}
	// Dice: 2*2 / (3+3)
	if math.Abs(got-2.0/3.0) > 1e-9 {
		t.Errorf("got %v, want 2/3", got)
	}
	if got, _ := overlapOnly.Score("what is it", "what is the refund policy"); got != 0 {
		t.Errorf("one-sided stopword overlap = %v, want 0", got)
	}
}

func TestHybridScorer_MoreOverlapScoresHigher(t *testing.T) {
	scorer := NewHybridScorer(nil)
	query := "reset my password"

	near, _ := scorer.Score(query, "How do I reset my password?")
	far, _ := scorer.Score(query, "How do I change my email address?")
	if near <= far {
		t.Errorf("expected overlapping question to score higher: %v <= %v", near, far)
	}
}

func TestHybridScorer_OverlapOnlyWeights(t *testing.T) {
	scorer := NewHybridScorer(&Config{OverlapWeight: 1, FuzzyWeight: 0})
	got, err := scorer.Score("abc def", "abc xyz")
	if err != nil {
		t.Fatal(err)
	}
	// Dice: 2*1 / (2+2)
	if math.Abs(got-0.5) > 1e-9 {
		t.Errorf("got %v, want 0.5", got)
	}
}

func TestHybridScorer_InvalidCandidateEncoding(t *testing.T) {
	scorer := NewHybridScorer(nil)
	if _, err := scorer.Score("hello", "bad\xffbytes"); err == nil {
		t.Error("expected error for invalid UTF-8 candidate")
	}
}

func TestHybridScorer_Range(t *testing.T) {
	scorer := NewHybridScorer(nil)
	texts := []string{
		"How do I reset my password?",
		"Refund policy",
		"What are your opening hours",
		"x",
		"the the the",
		"Where can I download my invoice (PDF)?",
		"日本語の質問",
	}
	for _, q := range texts {
		for _, c := range texts {
			got, err := scorer.Score(q, c)
			if err != nil {
				t.Fatalf("Score(%q, %q): %v", q, c, err)
			}
			if got < 0 || got > 1 {
				t.Errorf("Score(%q, %q) = %v out of [0,1]", q, c, got)
			}
		}
	}
}

func TestTokenize(t *testing.T) {
	got := Tokenize(Normalize("What's the refund-policy, for 2024?"))
	want := []string{"what", "s", "the", "refund", "policy", "for", "2024"}
	if len(got) != len(want) {
		t.Fatalf("Tokenize = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSignificantTokens(t *testing.T) {
	set := SignificantTokens([]string{"how", "do", "i", "reset", "my", "password", "password"})
	if len(set) != 2 {
		t.Errorf("expected 2 significant tokens, got %v", set)
	}
	if _, ok := set["reset"]; !ok {
		t.Error("expected reset to be significant")
	}
}

func TestHybridScorer_Name(t *testing.T) {
	if NewHybridScorer(nil).Name() != "hybrid" {
		t.Error("unexpected scorer name")
	}
}
