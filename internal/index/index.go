package index

import (
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"time"

	"github.com/LuckyCoder5/Robby-chatbot/internal/domain"
)

// Index is the searchable embedding index for one document: every segment
// paired with its vector, plus the identity of the embedder that produced
// them. Built once; never updated in place.
type Index struct {
	documentKey string
	embedder    string
	dimension   int
	createdAt   time.Time
	segments    []domain.Segment
	vectors     [][]float64
}

// DocumentKey returns the identity key of the indexed document.
func (x *Index) DocumentKey() string { return x.documentKey }

// EmbedderName returns the pinned embedder identifier recorded at build time.
func (x *Index) EmbedderName() string { return x.embedder }

// Dimension returns the vector dimension of the index.
func (x *Index) Dimension() int { return x.dimension }

// CreatedAt returns when the index was built.
func (x *Index) CreatedAt() time.Time { return x.createdAt }

// Len returns the number of indexed segments.
func (x *Index) Len() int { return len(x.segments) }

// Search returns the topK segments most similar to the query vector.
// Vectors are L2-normalized at build and query time, so scoring is a plain
// dot product (cosine similarity).
func (x *Index) Search(query []float64, topK int) []domain.SearchResult {
	if topK <= 0 {
		topK = 4
	}
	q := normalize(query)
	scored := make([]domain.SearchResult, len(x.vectors))
	for i := range x.vectors {
		scored[i] = domain.SearchResult{Segment: x.segments[i], Score: dot(x.vectors[i], q)}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if topK > len(scored) {
		topK = len(scored)
	}
	return scored[:topK]
}

// Query embeds the question with the given embedder and searches the index.
// An embedder other than the one the index was built with is refused: mixing
// embedding models silently degrades relevance.
func (x *Index) Query(ctx context.Context, embedder domain.Embedder, question string, topK int) ([]domain.SearchResult, error) {
	if embedder.Name() != x.embedder {
		return nil, fmt.Errorf("index built with embedder %q, queried with %q", x.embedder, embedder.Name())
	}
	vec, err := embedder.Embed(ctx, question)
	if err != nil {
		return nil, err
	}
	return x.Search(vec, topK), nil
}

// payload is the gob wire form of an Index.
type payload struct {
	DocumentKey string
	Embedder    string
	Dimension   int
	CreatedAt   time.Time
	Segments    []domain.Segment
	Vectors     [][]float64
}

// Encode writes the full index to w. Decode(Encode(x)) answers every query
// identically to x.
func (x *Index) Encode(w io.Writer) error {
	return gob.NewEncoder(w).Encode(payload{
		DocumentKey: x.documentKey,
		Embedder:    x.embedder,
		Dimension:   x.dimension,
		CreatedAt:   x.createdAt,
		Segments:    x.segments,
		Vectors:     x.vectors,
	})
}

// Decode reads an index previously written by Encode.
func Decode(r io.Reader) (*Index, error) {
	var p payload
	if err := gob.NewDecoder(r).Decode(&p); err != nil {
		return nil, err
	}
	if len(p.Segments) != len(p.Vectors) || len(p.Segments) == 0 {
		return nil, errors.New("decoded index is inconsistent")
	}
	return &Index{
		documentKey: p.DocumentKey,
		embedder:    p.Embedder,
		dimension:   p.Dimension,
		createdAt:   p.CreatedAt,
		segments:    p.Segments,
		vectors:     p.Vectors,
	}, nil
}

func dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

func normalize(v []float64) []float64 {
	var norm float64
	for _, x := range v {
		norm += x * x
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return v
	}
	out := make([]float64, len(v))
	for i := range v {
		out[i] = v[i] / norm
	}
	return out
}
