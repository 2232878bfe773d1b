package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

var ErrBadName = fmt.Errorf("bad name for store")

// SQLite keeps sessions in a key/value table. Rows carry an expiry in unix
// nanoseconds, 0 meaning never; expired rows read as missing and are
// deleted on the next write.
type SQLite struct {
	mu   sync.Mutex
	name string
	db   *sql.DB
	ttl  time.Duration
	now  func() time.Time
}

func isLetter(c rune) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

func isLetters(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if !isLetter(c) {
			return false
		}
	}
	return true
}

// Creates a new [SQLite] store backed by table name. name may only contain
// upper- or lowercase Latin letters, since it is spliced into the queries.
func NewSQLite(db *sql.DB, name string, ttl time.Duration) (*SQLite, error) {
	if !isLetters(name) {
		return nil, ErrBadName
	}

	_, err := db.Exec(`
CREATE TABLE IF NOT EXISTS ` + name + ` (
	key			TEXT PRIMARY KEY,
	value		BLOB,
	expires_at	INTEGER NOT NULL DEFAULT 0
);`)
	if err != nil {
		return nil, err
	}
	s := &SQLite{name: name, db: db, ttl: ttl, now: time.Now}
	return s, nil
}

func (s *SQLite) Get(ctx context.Context, id string) ([]byte, error) {
	var v []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM `+s.name+`
		WHERE key = ? AND (expires_at = 0 OR expires_at > ?);`,
		id, s.now().UnixNano(),
	).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (s *SQLite) Set(ctx context.Context, id string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM `+s.name+` WHERE expires_at != 0 AND expires_at <= ?;`,
		now.UnixNano(),
	)
	if err != nil {
		return err
	}

	var expiresAt int64
	if s.ttl > 0 {
		expiresAt = now.Add(s.ttl).UnixNano()
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO `+s.name+` (key, value, expires_at)
VALUES(?, ?, ?) 
ON CONFLICT(key) 
DO UPDATE SET value=excluded.value, expires_at=excluded.expires_at;`,
		id, value, expiresAt)
	return err
}

func (s *SQLite) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `DELETE FROM `+s.name+` WHERE key = ?;`, id)
	return err
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
