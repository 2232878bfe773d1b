package repository

import (
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T { return &v }

func TestLeaderboardFilterWhereClause(t *testing.T) {
	tests := []struct {
		name   string
		filter LeaderboardFilter
		clause string
		args   pgx.NamedArgs
	}{
		{"empty", LeaderboardFilter{}, "", pgx.NamedArgs{}},
		{
			"username",
			LeaderboardFilter{Username: ptr("alice")},
			"username = @username",
			pgx.NamedArgs{"username": "alice"},
		},
		{
			"both",
			LeaderboardFilter{Username: ptr("bob"), Rules: ptr("cheater"), Limit: 5},
			"username = @username AND rules = @rules",
			pgx.NamedArgs{"username": "bob", "rules": "cheater"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clause, args := tt.filter.WhereClause()
			assert.Equal(t, tt.clause, clause)
			assert.Equal(t, tt.args, args)
		})
	}
}
