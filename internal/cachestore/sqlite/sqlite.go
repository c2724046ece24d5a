package sqlite

import (
	"database/sql"
	"errors"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/LuckyCoder5/Robby-chatbot/internal/cachestore"
)

const schema = `
CREATE TABLE IF NOT EXISTS entries (
	key        TEXT PRIMARY KEY,
	blob       BLOB NOT NULL,
	created_at INTEGER NOT NULL
);`

// Store keeps index blobs in a local SQLite database. Each Put runs in a
// single statement, so readers never observe a half-written entry.
type Store struct {
	db *sql.DB
}

func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Get(key string) ([]byte, time.Time, error) {
	var blob []byte
	var createdAt int64
	err := s.db.QueryRow(`SELECT blob, created_at FROM entries WHERE key = ?`, key).Scan(&blob, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, time.Time{}, cachestore.ErrNotFound
		}
		return nil, time.Time{}, err
	}
	return blob, time.Unix(createdAt, 0), nil
}

func (s *Store) Put(key string, blob []byte) error {
	_, err := s.db.Exec(`
		INSERT INTO entries (key, blob, created_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET blob = excluded.blob, created_at = excluded.created_at
	`, key, blob, time.Now().Unix())
	return err
}

func (s *Store) Delete(key string) error {
	_, err := s.db.Exec(`DELETE FROM entries WHERE key = ?`, key)
	return err
}

func (s *Store) Close() error { return s.db.Close() }
