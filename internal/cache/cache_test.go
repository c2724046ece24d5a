package cache_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LuckyCoder5/Robby-chatbot/internal/cache"
	"github.com/LuckyCoder5/Robby-chatbot/internal/cachestore"
	cachefile "github.com/LuckyCoder5/Robby-chatbot/internal/cachestore/file"
	"github.com/LuckyCoder5/Robby-chatbot/internal/chunker"
	"github.com/LuckyCoder5/Robby-chatbot/internal/domain"
	"github.com/LuckyCoder5/Robby-chatbot/internal/embedding/mock"
	"github.com/LuckyCoder5/Robby-chatbot/internal/index"
)

func newFileStore(t *testing.T) cachestore.Store {
	t.Helper()
	s, err := cachefile.NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func buildFunc(embedder domain.Embedder, texts ...string) cache.BuildFunc {
	pages := make([]domain.Page, len(texts))
	for i, text := range texts {
		pages[i] = domain.Page{Number: i + 1, Text: text}
	}
	return func(ctx context.Context) (*index.Index, error) {
		segments := chunker.NewPageChunker(2000, 1).Split("doc", pages)
		return index.NewBuilder(embedder, 32, 4, nil).Build(ctx, "doc", segments)
	}
}

func TestDocumentKeyTracksContent(t *testing.T) {
	a := cache.DocumentKey([]byte("content A"))
	b := cache.DocumentKey([]byte("content B"))
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, cache.DocumentKey([]byte("content A")))
	assert.Len(t, a, 64)
}

func TestGetOrBuildBuildsOnce(t *testing.T) {
	embedder := mock.NewEmbedder(32)
	c := cache.New(newFileStore(t), nil)
	build := buildFunc(embedder, "First page.", "Second page.")
	ctx := context.Background()

	idx1, err := c.GetOrBuild(ctx, "key", build)
	require.NoError(t, err)
	callsAfterFirst := embedder.Calls()
	require.Greater(t, callsAfterFirst, int64(0))

	idx2, err := c.GetOrBuild(ctx, "key", build)
	require.NoError(t, err)
	assert.Same(t, idx1, idx2, "second lookup is the in-process copy")
	assert.Equal(t, callsAfterFirst, embedder.Calls(), "cached lookup must not re-embed")
}

func TestGetOrBuildReadsPersistedIndex(t *testing.T) {
	embedder := mock.NewEmbedder(32)
	store := newFileStore(t)
	build := buildFunc(embedder, "Some page content here.")
	ctx := context.Background()

	_, err := cache.New(store, nil).GetOrBuild(ctx, "key", build)
	require.NoError(t, err)
	callsAfterBuild := embedder.Calls()

	// A fresh cache over the same store simulates a process restart.
	idx, err := cache.New(store, nil).GetOrBuild(ctx, "key", func(context.Context) (*index.Index, error) {
		t.Fatal("build must not run when the store already holds the index")
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, idx.Len())
	assert.Equal(t, callsAfterBuild, embedder.Calls())
}

func TestGetOrBuildRebuildsCorruptEntry(t *testing.T) {
	embedder := mock.NewEmbedder(32)
	store := newFileStore(t)
	require.NoError(t, store.Put("key", []byte("not a gob index")))

	idx, err := cache.New(store, nil).GetOrBuild(context.Background(), "key", buildFunc(embedder, "Page content."))
	require.NoError(t, err)
	assert.Equal(t, 1, idx.Len())
	assert.Greater(t, embedder.Calls(), int64(0), "corrupt entry must trigger a rebuild")

	// The rebuilt index replaced the corrupt blob.
	blob, _, err := store.Get("key")
	require.NoError(t, err)
	assert.NotEqual(t, []byte("not a gob index"), blob)
}

func TestGetOrBuildSharesConcurrentBuilds(t *testing.T) {
	embedder := mock.NewEmbedder(32)
	c := cache.New(newFileStore(t), nil)

	var builds atomic.Int32
	inner := buildFunc(embedder, "Shared page content.")
	build := func(ctx context.Context) (*index.Index, error) {
		builds.Add(1)
		return inner(ctx)
	}

	const callers = 16
	results := make([]*index.Index, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			idx, err := c.GetOrBuild(context.Background(), "key", build)
			assert.NoError(t, err)
			results[i] = idx
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), builds.Load(), "concurrent callers must share one build")
	for i := 1; i < callers; i++ {
		assert.Same(t, results[0], results[i])
	}
}

func TestGetOrBuildFailureIsNotCached(t *testing.T) {
	embedder := mock.NewEmbedder(32)
	store := newFileStore(t)
	c := cache.New(store, nil)
	ctx := context.Background()

	boom := errors.New("provider down")
	_, err := c.GetOrBuild(ctx, "key", func(context.Context) (*index.Index, error) {
		return nil, boom
	})
	require.ErrorIs(t, err, boom)

	_, _, err = store.Get("key")
	assert.ErrorIs(t, err, cachestore.ErrNotFound, "a failed build must publish nothing")

	// The next call retries the build.
	idx, err := c.GetOrBuild(ctx, "key", buildFunc(embedder, "Page content."))
	require.NoError(t, err)
	assert.Equal(t, 1, idx.Len())
}

func TestInvalidateForcesRebuild(t *testing.T) {
	store := newFileStore(t)
	c := cache.New(store, nil)
	ctx := context.Background()

	oldEmbedder := namedEmbedder{mock.NewEmbedder(32), "openai/old-model"}
	idx, err := c.GetOrBuild(ctx, "key", buildFunc(oldEmbedder, "Some page content here."))
	require.NoError(t, err)
	require.Equal(t, "openai/old-model", idx.EmbedderName())

	// Dropping the store entry alone must not bypass the in-process copy;
	// switching embedders goes through Invalidate.
	require.NoError(t, c.Invalidate("key"))

	var builds atomic.Int32
	newEmbedder := mock.NewEmbedder(32)
	inner := buildFunc(newEmbedder, "Some page content here.")
	rebuilt, err := c.GetOrBuild(ctx, "key", func(ctx context.Context) (*index.Index, error) {
		builds.Add(1)
		return inner(ctx)
	})
	require.NoError(t, err)
	assert.Equal(t, int32(1), builds.Load(), "invalidation must force a fresh build")
	assert.Equal(t, "mock", rebuilt.EmbedderName())

	// The rebuilt index is what later lookups see, in process and on disk.
	again, err := c.GetOrBuild(ctx, "key", inner)
	require.NoError(t, err)
	assert.Same(t, rebuilt, again)
	blob, _, err := store.Get("key")
	require.NoError(t, err)
	assert.NotEmpty(t, blob)
}

func TestGetOrBuildEmptyDocument(t *testing.T) {
	c := cache.New(newFileStore(t), nil)
	_, err := c.GetOrBuild(context.Background(), "key", buildFunc(mock.NewEmbedder(32)))
	assert.ErrorIs(t, err, domain.ErrEmptyDocument)
}

// namedEmbedder overrides the reported embedder identity.
type namedEmbedder struct {
	domain.Embedder
	name string
}

func (e namedEmbedder) Name() string { return e.name }
