package chunker

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/LuckyCoder5/Robby-chatbot/internal/domain"
)

// PageChunker turns extracted pages into retrieval segments. A page that fits
// within maxChars becomes a single segment; longer pages are split on sentence
// boundaries with overlap so retrieval never crosses a page boundary.
type PageChunker struct {
	maxChars         int
	overlapSentences int
	splitter         *regexp.Regexp
}

func NewPageChunker(maxChars, overlapSentences int) *PageChunker {
	if maxChars <= 0 {
		maxChars = 2000
	}
	if overlapSentences < 0 {
		overlapSentences = 0
	}
	return &PageChunker{
		maxChars:         maxChars,
		overlapSentences: overlapSentences,
		splitter:         regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`),
	}
}

// Split returns segments in document reading order: all of page 1 before any
// of page 2, and within a page in text order.
func (c *PageChunker) Split(documentID string, pages []domain.Page) []domain.Segment {
	var segments []domain.Segment
	idx := 0
	for _, page := range pages {
		for _, text := range c.splitPage(page.Text) {
			segments = append(segments, domain.Segment{
				DocumentID: documentID,
				ID:         documentID + ":" + strconv.Itoa(idx),
				Page:       page.Number,
				Index:      idx,
				Text:       text,
			})
			idx++
		}
	}
	return segments
}

func (c *PageChunker) splitPage(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= c.maxChars {
		return []string{text}
	}
	sentences := c.splitter.FindAllString(text, -1)
	if len(sentences) == 0 {
		sentences = []string{text}
	}
	for i := range sentences {
		sentences[i] = strings.TrimSpace(sentences[i])
	}
	var parts []string
	i := 0
	for i < len(sentences) {
		end := i
		size := 0
		for end < len(sentences) && (size == 0 || size+len(sentences[end])+1 <= c.maxChars) {
			size += len(sentences[end]) + 1
			end++
		}
		parts = append(parts, strings.Join(sentences[i:end], " "))
		if end == len(sentences) {
			break
		}
		next := end - c.overlapSentences
		if next <= i {
			next = end // overlap must not stall the walk
		}
		i = next
	}
	return parts
}
