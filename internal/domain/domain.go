package domain

import (
	"context"
	"errors"
	"time"
)

// Page is one page of text extracted from a source document, in reading order.
type Page struct {
	Number int // 1-based page number
	Text   string
}

// Segment is the unit of retrieval: a chunk of document text with its origin.
// Immutable once produced.
type Segment struct {
	DocumentID string
	ID         string
	Page       int // 1-based page the text came from
	Index      int // position in reading order across the whole document
	Text       string
}

// SearchResult is a segment matched against a query, with a similarity score.
type SearchResult struct {
	Segment Segment
	Score   float64
}

// Turn is one question/answer exchange. Append-only within a session.
type Turn struct {
	Question string
	Answer   string
	AskedAt  time.Time
}

// Error taxonomy surfaced to the caller. Wrapped causes are attached with %w;
// callers classify with errors.Is.
var (
	ErrUnreadableDocument    = errors.New("document is empty or not a readable PDF")
	ErrEmptyDocument         = errors.New("document produced no indexable segments")
	ErrEmbeddingUnavailable  = errors.New("embedding provider unavailable")
	ErrCacheCorrupt          = errors.New("cache entry corrupt")
	ErrGenerationFailed      = errors.New("answer generation failed")
	ErrAuthenticationMissing = errors.New("no API credential supplied")
)

// Loader extracts ordered pages of text from raw document bytes.
type Loader interface {
	Load(ctx context.Context, data []byte, name string) ([]Page, error)
}

// Segmenter splits extracted pages into segments suitable for indexing.
type Segmenter interface {
	Split(documentID string, pages []Page) []Segment
}

// Embedder converts free text into a numeric vector representation.
// The same embedder must be used at index build time and query time.
type Embedder interface {
	Name() string
	Dimension() int
	Embed(ctx context.Context, text string) ([]float64, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)
}

// Completer produces a chat answer for a fully composed prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Summarizer produces a brief summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}
