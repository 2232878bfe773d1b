package database

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMigrator struct {
	err    error
	closed bool
}

func (m *fakeMigrator) Up() error { return m.err }

func (m *fakeMigrator) Close() (error, error) {
	m.closed = true
	return nil, nil
}

func TestUp(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		fails  bool
		closed bool
	}{
		{"applied", nil, false, false},
		{"no change", migrate.ErrNoChange, false, false},
		{"failed", errors.New("syntax error"), true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &fakeMigrator{err: tt.err}
			err := up(m)
			if tt.fails {
				assert.ErrorIs(t, err, tt.err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.closed, m.closed)
		})
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	names, err := fs.Glob(migrations, "migrations/*.sql")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"migrations/000001_init.up.sql",
		"migrations/000001_init.down.sql",
	}, names)

	source, err := iofs.New(migrations, "migrations")
	require.NoError(t, err)
	defer source.Close()
	version, err := source.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
}
