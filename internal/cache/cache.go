package cache

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/LuckyCoder5/Robby-chatbot/internal/cachestore"
	"github.com/LuckyCoder5/Robby-chatbot/internal/domain"
	"github.com/LuckyCoder5/Robby-chatbot/internal/index"
)

// BuildFunc builds a fresh index for a document when the cache has none.
type BuildFunc func(ctx context.Context) (*index.Index, error)

// Cache returns the index for a document key, building it at most once per
// key. Built indexes are published atomically to the backing store and kept
// decoded in process for repeat lookups.
type Cache struct {
	store cachestore.Store
	hot   *gocache.Cache
	group singleflight.Group
	log   *zap.Logger
}

func New(store cachestore.Store, log *zap.Logger) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{
		store: store,
		hot:   gocache.New(gocache.NoExpiration, 0),
		log:   log,
	}
}

// DocumentKey derives the cache key for a document from its content bytes.
// Keying by content, not filename, means re-uploading a same-named file with
// different content gets a fresh index.
func DocumentKey(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// GetOrBuild returns the cached index for key, or invokes build, persists the
// result, and returns it. Concurrent callers for the same uncached key share
// one build. A corrupt cache entry is deleted and rebuilt exactly once.
func (c *Cache) GetOrBuild(ctx context.Context, key string, build BuildFunc) (*index.Index, error) {
	if v, ok := c.hot.Get(key); ok {
		return v.(*index.Index), nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		// Re-check under the flight: another caller may have just filled it.
		if v, ok := c.hot.Get(key); ok {
			return v, nil
		}

		idx, err := c.load(key)
		switch {
		case err == nil:
			c.log.Debug("index cache hit", zap.String("key", key))
		case errors.Is(err, cachestore.ErrNotFound):
			idx, err = c.buildAndPut(ctx, key, build)
			if err != nil {
				return nil, err
			}
		case errors.Is(err, domain.ErrCacheCorrupt):
			c.log.Warn("corrupt index cache entry, rebuilding", zap.String("key", key), zap.Error(err))
			if err := c.store.Delete(key); err != nil {
				return nil, err
			}
			idx, err = c.buildAndPut(ctx, key, build)
			if err != nil {
				return nil, err
			}
		default:
			return nil, err
		}

		c.hot.Set(key, idx, gocache.NoExpiration)
		return idx, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*index.Index), nil
}

// Invalidate drops the entry for key from both the in-process layer and the
// backing store, so the next GetOrBuild runs a fresh build. Deleting from the
// store alone is not enough: the decoded index would survive in the hot layer
// and keep being served.
func (c *Cache) Invalidate(key string) error {
	c.hot.Delete(key)
	return c.store.Delete(key)
}

func (c *Cache) load(key string) (*index.Index, error) {
	blob, _, err := c.store.Get(key)
	if err != nil {
		return nil, err
	}
	idx, err := index.Decode(bytes.NewReader(blob))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrCacheCorrupt, key, err)
	}
	return idx, nil
}

func (c *Cache) buildAndPut(ctx context.Context, key string, build BuildFunc) (*index.Index, error) {
	idx, err := build(ctx)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		// Cancelled mid-build: publish nothing.
		return nil, err
	}
	var buf bytes.Buffer
	if err := idx.Encode(&buf); err != nil {
		return nil, err
	}
	if err := c.store.Put(key, buf.Bytes()); err != nil {
		return nil, err
	}
	c.log.Info("index cached", zap.String("key", key), zap.Int("segments", idx.Len()), zap.Int("bytes", buf.Len()))
	return idx, nil
}
