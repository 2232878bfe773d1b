package handlers

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"sync"
	"time"

	"github.com/vancomm/mastermind-server/internal/mastermind"
)

// gameSession is what the store holds for every session id.
type gameSession struct {
	ID        string
	PlayerID  *int64
	Requested mastermind.RuleKind
	StartedAt time.Time
	EndedAt   *time.Time
	State     []byte
}

func (gs gameSession) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(gs); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeGameSession(b []byte) (*gameSession, error) {
	var gs gameSession
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&gs); err != nil {
		return nil, fmt.Errorf("unable to decode game session: %w", err)
	}
	return &gs, nil
}

type refLock struct {
	mu   sync.Mutex
	refs int
}

// keyedMutex serializes access per session id. Entries are dropped once
// nobody holds or waits for them.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refLock
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*refLock)}
}

func (k *keyedMutex) Lock(key string) (unlock func()) {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &refLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
