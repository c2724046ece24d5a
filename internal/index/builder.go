package index

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/LuckyCoder5/Robby-chatbot/internal/domain"
)

// Builder embeds segments and assembles an Index. Embedding calls overlap up
// to the worker limit; segment-to-vector pairing is positional in the batch
// request, never dependent on completion order.
type Builder struct {
	embedder  domain.Embedder
	batchSize int
	workers   int
	log       *zap.Logger
}

func NewBuilder(embedder domain.Embedder, batchSize, workers int, log *zap.Logger) *Builder {
	if batchSize <= 0 {
		batchSize = 32
	}
	if workers <= 0 {
		workers = 4
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{embedder: embedder, batchSize: batchSize, workers: workers, log: log}
}

// Build embeds every segment and returns the finished index. Zero segments is
// ErrEmptyDocument. Any embedding failure aborts the whole build; no partial
// index is ever returned.
func (b *Builder) Build(ctx context.Context, documentKey string, segments []domain.Segment) (*Index, error) {
	if len(segments) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrEmptyDocument, documentKey)
	}
	start := time.Now()

	vectors := make([][]float64, len(segments))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for lo := 0; lo < len(segments); lo += b.batchSize {
		lo := lo
		hi := lo + b.batchSize
		if hi > len(segments) {
			hi = len(segments)
		}
		g.Go(func() error {
			texts := make([]string, hi-lo)
			for i := lo; i < hi; i++ {
				texts[i-lo] = segments[i].Text
			}
			vecs, err := b.embedder.EmbedBatch(gctx, texts)
			if err != nil {
				return err
			}
			if len(vecs) != hi-lo {
				return fmt.Errorf("%w: got %d vectors for %d segments", domain.ErrEmbeddingUnavailable, len(vecs), hi-lo)
			}
			for i := lo; i < hi; i++ {
				vectors[i] = normalize(vecs[i-lo])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	dim := len(vectors[0])
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("%w: vector %d has dimension %d, want %d", domain.ErrEmbeddingUnavailable, i, len(v), dim)
		}
	}

	b.log.Info("index built",
		zap.String("document", documentKey),
		zap.Int("segments", len(segments)),
		zap.Int("dimension", dim),
		zap.String("embedder", b.embedder.Name()),
		zap.Duration("took", time.Since(start)),
	)
	return &Index{
		documentKey: documentKey,
		embedder:    b.embedder.Name(),
		dimension:   dim,
		createdAt:   time.Now(),
		segments:    segments,
		vectors:     vectors,
	}, nil
}
