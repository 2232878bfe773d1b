// Package store keeps serialized game sessions between requests.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/vancomm/mastermind-server/internal/config"
)

var ErrNotFound = fmt.Errorf("value not found")

type Store interface {
	// Get returns [ErrNotFound] if id is not present.
	Get(ctx context.Context, id string) ([]byte, error)
	// Set inserts a new value or replaces an existing one.
	Set(ctx context.Context, id string, value []byte) error
	// Delete removes id without checking that it existed.
	Delete(ctx context.Context, id string) error
	Close() error
}

func NewID() string {
	return uuid.NewString()
}

func Open(cfg config.Game) (Store, error) {
	switch cfg.Store {
	case config.StoreMemory, "":
		return NewMemory(cfg.SessionTTL.Duration), nil
	case config.StoreSQLite:
		db, err := sql.Open("sqlite3", cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("unable to open sqlite db: %w", err)
		}
		s, err := NewSQLite(db, "sessions", cfg.SessionTTL.Duration)
		if err != nil {
			db.Close()
			return nil, err
		}
		return s, nil
	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		return NewRedis(client, cfg.SessionTTL.Duration), nil
	}
	return nil, fmt.Errorf("unknown store %q", cfg.Store)
}
