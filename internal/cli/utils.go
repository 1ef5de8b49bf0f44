// Package cli provides CLI output helpers for Kotae.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat validates a --output flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case OutputText, OutputJSON:
		return OutputFormat(s), nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text or json", s)
	}
}

// WriteAnswer writes a chat answer to w in the given format.
func WriteAnswer(w io.Writer, answer *models.Answer, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, answer)
	}

	fmt.Fprintf(w, "\n%s\n\n", strings.TrimSpace(answer.Reply))
	fmt.Fprintln(w, "─────────────────────────────────────────────────────────")
	src := answer.Source
	if src.Type == models.SourceKnowledgeBase {
		fmt.Fprintf(w, "Source: knowledge base (match %s)\n", utils.Percent(src.MatchScore))
		if src.Question != nil {
			fmt.Fprintf(w, "Matched: %q\n", *src.Question)
		}
		return nil
	}
	fmt.Fprintln(w, "Source: language model")
	if src.Question != nil {
		fmt.Fprintf(w, "Closest entry: %q (%s)\n", *src.Question, utils.Percent(src.MatchScore))
	}
	return nil
}

// WriteEntries writes a page of entries to w in the given format.
func WriteEntries(w io.Writer, list *models.EntryList, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, list)
	}

	if list.Query != "" {
		fmt.Fprintf(w, "\n%d entries matching %q\n\n", len(list.Entries), list.Query)
	} else {
		fmt.Fprintf(w, "\nShowing %d of %d entries\n\n", len(list.Entries), list.Total)
	}
	for _, e := range list.Entries {
		fmt.Fprintln(w, "─────────────────────────────────────────────────────────")
		fmt.Fprintf(w, "ID: %s\n", e.ID)
		fmt.Fprintf(w, "Q:  %s\n", e.Question)
		fmt.Fprintf(w, "A:  %s\n", utils.Truncate(strings.Join(strings.Fields(e.Answer), " "), 200))
	}
	if len(list.Entries) > 0 {
		fmt.Fprintln(w)
	}
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
