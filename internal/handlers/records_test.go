package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/mastermind-server/internal/repository"
)

type fakeLeaderboard struct {
	filter repository.LeaderboardFilter
}

func (f *fakeLeaderboard) GetLeaderboard(
	_ context.Context, filter repository.LeaderboardFilter,
) ([]repository.LeaderboardEntry, error) {
	f.filter = filter
	return nil, nil
}

func TestParseLeaderboardDTO(t *testing.T) {
	alice, enhanced := "alice", "enhanced"
	tests := []struct {
		name   string
		query  url.Values
		filter repository.LeaderboardFilter
		err    error
	}{
		{"empty", url.Values{}, repository.LeaderboardFilter{Limit: 100}, nil},
		{
			"all",
			url.Values{"username": {"alice"}, "rules": {"enhanced"}, "limit": {"10"}},
			repository.LeaderboardFilter{Username: &alice, Rules: &enhanced, Limit: 10},
			nil,
		},
		{"limit capped", url.Values{"limit": {"1000"}}, repository.LeaderboardFilter{Limit: 100}, nil},
		{"random rules", url.Values{"rules": {"random"}}, repository.LeaderboardFilter{}, ErrBadRulesFilter},
		{"unknown rules", url.Values{"rules": {"easy"}}, repository.LeaderboardFilter{}, ErrBadRulesFilter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, err := ParseLeaderboardDTO(tt.query)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.filter, filter)
		})
	}
}

func TestLeaderboard(t *testing.T) {
	repo := &fakeLeaderboard{}
	h := NewRecords(testLogger(), repo)

	w := httptest.NewRecorder()
	h.Leaderboard(w, httptest.NewRequest(http.MethodGet, "/records?rules=standard", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var entries []repository.LeaderboardEntry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	assert.Empty(t, entries)
	require.NotNil(t, repo.filter.Rules)
	assert.Equal(t, "standard", *repo.filter.Rules)

	w = httptest.NewRecorder()
	h.Leaderboard(w, httptest.NewRequest(http.MethodGet, "/records?limit=x", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
