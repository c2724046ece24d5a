package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/LuckyCoder5/Robby-chatbot/internal/domain"
	"github.com/LuckyCoder5/Robby-chatbot/internal/index"
)

// Session is a conversational session over exactly one document index. It
// owns the turn history; history is append-only and only Reset replaces it.
// A session exists only once an index has been obtained, so holding a
// *Session is the Ready state.
type Session struct {
	id           string
	documentName string
	greeting     string
	index        *index.Index
	embedder     domain.Embedder
	completer    domain.Completer
	topK         int
	log          *zap.Logger

	mu      sync.Mutex // serializes Ask and guards history
	history []domain.Turn
}

// New creates a session for a built index. The greeting is reissued on every
// Reset; summary may be empty.
func New(idx *index.Index, embedder domain.Embedder, completer domain.Completer, documentName, summary string, topK int, log *zap.Logger) *Session {
	if topK <= 0 {
		topK = 4
	}
	if log == nil {
		log = zap.NewNop()
	}
	greeting := fmt.Sprintf("Hello! Ask me anything about %s.", documentName)
	if summary != "" {
		greeting += "\n\nIn short: " + summary
	}
	return &Session{
		id:           uuid.New().String(),
		documentName: documentName,
		greeting:     greeting,
		index:        idx,
		embedder:     embedder,
		completer:    completer,
		topK:         topK,
		log:          log.With(zap.String("session", documentName)),
	}
}

// ID returns the unique identifier of this session.
func (s *Session) ID() string { return s.id }

// DocumentName returns the display name of the active document.
func (s *Session) DocumentName() string { return s.documentName }

// Greeting returns the message shown when the session starts or is reset.
func (s *Session) Greeting() string { return s.greeting }

// History returns a copy of the turn history in ask order.
func (s *Session) History() []domain.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Turn, len(s.history))
	copy(out, s.history)
	return out
}

// Ask retrieves the most relevant segments for the question, composes a
// prompt with the retrieved context and the full prior history, and calls the
// language model. On success the turn is appended and the answer returned; on
// any failure the history is left untouched. Overlapping calls are serialized.
func (s *Session) Ask(ctx context.Context, question string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	results, err := s.index.Query(ctx, s.embedder, question, s.topK)
	if err != nil {
		return "", err
	}

	prompt := buildPrompt(question, results, s.history)
	start := time.Now()
	answer, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		s.log.Warn("generation failed", zap.Error(err))
		return "", err
	}

	s.history = append(s.history, domain.Turn{
		Question: question,
		Answer:   answer,
		AskedAt:  time.Now(),
	})
	s.log.Debug("turn completed",
		zap.Int("retrieved", len(results)),
		zap.Int("turns", len(s.history)),
		zap.Duration("took", time.Since(start)),
	)
	return answer, nil
}

// Reset atomically clears the history. The next render starts again from the
// greeting; no partially cleared state is observable.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
	s.log.Debug("history reset")
}
