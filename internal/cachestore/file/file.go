package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/LuckyCoder5/Robby-chatbot/internal/cachestore"
)

// Store keeps one blob file per key under a cache directory. Writes go to a
// temp file in the same directory and are published with os.Rename, so a
// reader either sees the previous complete entry or the new complete entry.
type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("cache dir is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".idx")
}

func (s *Store) Get(key string) ([]byte, time.Time, error) {
	p := s.path(key)
	info, err := os.Stat(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, time.Time{}, cachestore.ErrNotFound
		}
		return nil, time.Time{}, err
	}
	blob, err := os.ReadFile(p)
	if err != nil {
		return nil, time.Time{}, err
	}
	return blob, info.ModTime(), nil
}

func (s *Store) Put(key string, blob []byte) error {
	tmp, err := os.CreateTemp(s.dir, key+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(blob); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path(key))
}

func (s *Store) Delete(key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (s *Store) Close() error { return nil }
