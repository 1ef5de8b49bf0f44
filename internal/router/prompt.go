package router

import (
	"fmt"
	"strings"

	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/pkg/utils"
)

const (
	contextPrompt = "You are a helpful support assistant. Base your answer on the most relevant " +
		"entries from the knowledge base below. If the knowledge base does not contain the answer, " +
		"respond with your best effort but be transparent that you used the language model."

	noContextPrompt = "You are a helpful support assistant. No relevant entries were found in the " +
		"knowledge base, so answer the question using general knowledge. " +
		"Make it clear to the user that the answer comes from the language model."
)

// BuildContext formats ranked entries for the system prompt, one block per
// entry separated by a blank line. Relevance is a whole percentage.
func BuildContext(ranked []models.ScoredEntry) string {
	blocks := make([]string, 0, len(ranked))
	for i, se := range ranked {
		blocks = append(blocks, fmt.Sprintf("Entry %d - Relevance: %s\nQuestion: %s\nAnswer: %s",
			i+1, utils.Percent(se.Score), se.Entry.Question, se.Entry.Answer))
	}
	return strings.Join(blocks, "\n\n")
}

// SystemPrompt returns the prompt for a formatted context. An empty context
// selects the general-knowledge prompt.
func SystemPrompt(context string) string {
	if strings.TrimSpace(context) == "" {
		return noContextPrompt
	}
	return contextPrompt + "\n\nKnowledge Base:\n" + context
}
