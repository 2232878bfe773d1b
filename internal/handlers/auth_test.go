package handlers

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/mastermind-server/internal/config"
	"github.com/vancomm/mastermind-server/internal/middleware"
	"github.com/vancomm/mastermind-server/internal/repository"
)

type fakePlayers struct {
	players map[string]*repository.Player
}

func (f *fakePlayers) CreatePlayer(
	_ context.Context, params repository.CreatePlayerParams,
) (*repository.Player, error) {
	if _, ok := f.players[params.Username]; ok {
		return nil, &pgconn.PgError{Code: pgerrcode.UniqueViolation}
	}
	p := &repository.Player{
		PlayerId:     int64(len(f.players) + 1),
		Username:     params.Username,
		PasswordHash: params.PasswordHash,
	}
	f.players[p.Username] = p
	return p, nil
}

func (f *fakePlayers) FetchPlayer(_ context.Context, username string) (*repository.Player, error) {
	p, ok := f.players[username]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return p, nil
}

func newTestAuth(t *testing.T) (http.Handler, *config.Cookies) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	j := config.NewJWTFromKeys(key, &key.PublicKey, time.Hour)
	cookies := config.Cookies{}.Bind(j, true)
	a := NewAuth(testLogger(), &fakePlayers{players: map[string]*repository.Player{}}, cookies, j)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/register", a.Register)
	mux.HandleFunc("POST /auth/login", a.Login)
	mux.HandleFunc("POST /auth/logout", a.Logout)
	mux.HandleFunc("GET /auth/status", a.Status)
	return middleware.Wrap(mux, middleware.Auth(cookies)), cookies
}

func postForm(h http.Handler, target, username, password string) *httptest.ResponseRecorder {
	form := url.Values{"username": {username}, "password": {password}}
	r := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func TestRegisterLoginStatus(t *testing.T) {
	h, _ := newTestAuth(t)

	w := postForm(h, "/auth/register", "alice", "secret")
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	assert.Len(t, cookies, 2)

	w = postForm(h, "/auth/register", "alice", "other")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), ErrUsernameTaken.Error())

	w = postForm(h, "/auth/login", "alice", "wrong")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = postForm(h, "/auth/login", "bob", "secret")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = postForm(h, "/auth/login", "alice", "secret")
	require.Equal(t, http.StatusOK, w.Code)
	var info PlayerInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, PlayerInfo{1, "alice"}, info)

	r := httptest.NewRequest(http.MethodGet, "/auth/status", nil)
	for _, c := range w.Result().Cookies() {
		r.AddCookie(c)
	}
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	var status Status
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.True(t, status.LoggedIn)
	require.NotNil(t, status.Player)
	assert.Equal(t, "alice", status.Player.Username)
}

func TestRegisterBadBody(t *testing.T) {
	h, _ := newTestAuth(t)

	tests := []struct {
		name     string
		username string
		password string
		err      error
	}{
		{"no username", "", "secret", ErrBadAuthBody},
		{"no password", "alice", "", ErrBadAuthBody},
		{"long password", "alice", strings.Repeat("x", 73), ErrBadPasswordTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postForm(h, "/auth/register", tt.username, tt.password)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), tt.err.Error())
		})
	}
}

func TestStatusAnonymous(t *testing.T) {
	h, _ := newTestAuth(t)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/status", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"logged_in":false}`, w.Body.String())

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}
