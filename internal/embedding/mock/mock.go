package mock

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync/atomic"
)

// Embedder is a deterministic local embedder for tests and offline runs.
// The vector for a text depends only on the text, so retrieval results are
// stable across processes and cache round-trips.
type Embedder struct {
	dimension int
	calls     atomic.Int64
}

func NewEmbedder(dimension int) *Embedder {
	if dimension <= 0 {
		dimension = 64
	}
	return &Embedder{dimension: dimension}
}

func (e *Embedder) Name() string   { return "mock" }
func (e *Embedder) Dimension() int { return e.dimension }

// Calls reports how many embedding requests were made. Tests use it to assert
// that a cached index never re-invokes the provider.
func (e *Embedder) Calls() int64 { return e.calls.Load() }

func (e *Embedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if text == "" {
		return nil, fmt.Errorf("empty text")
	}
	e.calls.Add(1)
	return e.vector(text), nil
}

func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, t := range texts {
		v, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// vector hashes each token into a bucket and normalizes the counts, so texts
// sharing words come out close under cosine similarity.
func (e *Embedder) vector(text string) []float64 {
	v := make([]float64, e.dimension)
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		tok = strings.Trim(tok, ".,;:!?\"'()")
		if tok == "" {
			continue
		}
		seed := uint64(14695981039346656037)
		for _, c := range tok {
			seed ^= uint64(c)
			seed *= 1099511628211
		}
		v[seed%uint64(e.dimension)]++
	}
	var norm float64
	for _, x := range v {
		norm += x * x
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range v {
			v[i] /= norm
		}
	}
	return v
}
