package session

import (
	"fmt"
	"strings"

	"github.com/LuckyCoder5/Robby-chatbot/internal/domain"
)

// buildPrompt composes the model prompt: retrieved document context first,
// then the prior conversation so follow-up questions can resolve references,
// then the new question.
func buildPrompt(question string, results []domain.SearchResult, history []domain.Turn) string {
	var b strings.Builder

	b.WriteString("<document_context>\n")
	for _, r := range results {
		fmt.Fprintf(&b, "[page %d] %s\n", r.Segment.Page, r.Segment.Text)
	}
	b.WriteString("</document_context>\n\n")

	if len(history) > 0 {
		b.WriteString("<conversation>\n")
		for _, t := range history {
			b.WriteString("User: " + t.Question + "\n")
			b.WriteString("Assistant: " + t.Answer + "\n")
		}
		b.WriteString("</conversation>\n\n")
	}

	b.WriteString("Question: " + question + "\n")
	return b.String()
}
