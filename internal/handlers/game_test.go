package handlers

import (
	"context"
	"encoding/json"
	"io"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/mastermind-server/internal/config"
	"github.com/vancomm/mastermind-server/internal/mastermind"
	"github.com/vancomm/mastermind-server/internal/repository"
	"github.com/vancomm/mastermind-server/internal/store"
)

type fakeRecorder struct {
	mu      sync.Mutex
	records []repository.CreateGameRecordParams
}

func (f *fakeRecorder) CreateGameRecord(
	_ context.Context, params repository.CreateGameRecordParams,
) (*repository.GameRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, params)
	return &repository.GameRecord{SessionId: params.SessionId, Outcome: params.Outcome}, nil
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type testServer struct {
	handler  *GameHandler
	recorder *fakeRecorder
	mux      *http.ServeMux
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	rec := &fakeRecorder{}
	h := NewGameHandler(
		testLogger(),
		store.NewMemory(0),
		rec,
		config.NewWebSocket(),
		mastermind.RandomRules,
		func() *rand.Rand { return rand.New(rand.NewPCG(1, 2)) },
	)
	mux := http.NewServeMux()
	mux.HandleFunc("POST /game", h.NewGame)
	mux.HandleFunc("GET /game/{id}", h.Fetch)
	mux.HandleFunc("POST /game/{id}/move", h.Move)
	mux.HandleFunc("POST /game/{id}/reset", h.Reset)
	mux.HandleFunc("DELETE /game/{id}", h.Delete)
	mux.HandleFunc("GET /game/{id}/connect", h.ConnectWS)
	return &testServer{handler: h, recorder: rec, mux: mux}
}

func (ts *testServer) do(t *testing.T, method, target string) (int, *GameDTO, map[string]string) {
	t.Helper()
	w := httptest.NewRecorder()
	ts.mux.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	res := w.Result()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	if res.StatusCode != http.StatusOK {
		var e map[string]string
		if len(body) > 0 {
			require.NoError(t, json.Unmarshal(body, &e))
		}
		return res.StatusCode, nil, e
	}
	var dto GameDTO
	require.NoError(t, json.Unmarshal(body, &dto))
	return res.StatusCode, &dto, nil
}

func (ts *testServer) newGame(t *testing.T, rules string) *GameDTO {
	t.Helper()
	code, dto, _ := ts.do(t, http.MethodPost, "/game?rules="+rules)
	require.Equal(t, http.StatusOK, code)
	return dto
}

func (ts *testServer) move(t *testing.T, id, cmd string) (int, *GameDTO) {
	t.Helper()
	code, dto, _ := ts.do(t, http.MethodPost, "/game/"+id+"/move?cmd="+url.QueryEscape(cmd))
	return code, dto
}

func (ts *testServer) combination(t *testing.T, id string) mastermind.Code {
	t.Helper()
	gm, err := ts.handler.load(context.Background(), id)
	require.NoError(t, err)
	return gm.session.Combination()
}

func eventKinds(dto *GameDTO) []string {
	kinds := make([]string, len(dto.Events))
	for i, e := range dto.Events {
		kinds[i] = e.Kind
	}
	return kinds
}

func TestNewGame(t *testing.T) {
	ts := newTestServer(t)
	dto := ts.newGame(t, "standard")

	assert.NotEmpty(t, dto.SessionId)
	assert.Equal(t, "active", dto.Status)
	assert.Nil(t, dto.Rules)
	assert.Nil(t, dto.Combination)
	assert.Nil(t, dto.EndedAt)
	assert.True(t, dto.InputEnabled)
	assert.Equal(t, mastermind.RowCount-1, dto.CurrentRow)
	assert.Len(t, dto.Rows, mastermind.RowCount)
	require.Len(t, dto.Events, 1)
	assert.Equal(t, EventDTO{Kind: "after_reset"}, dto.Events[0])
}

func TestNewGameBadRules(t *testing.T) {
	ts := newTestServer(t)
	code, _, e := ts.do(t, http.MethodPost, "/game?rules=easy")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, e["error"], "unknown rules")
}

func TestFetch(t *testing.T) {
	ts := newTestServer(t)
	created := ts.newGame(t, "enhanced")

	code, dto, _ := ts.do(t, http.MethodGet, "/game/"+created.SessionId)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, created.SessionId, dto.SessionId)
	assert.Empty(t, dto.Events)
	assert.Nil(t, dto.Candidates)

	code, _, _ = ts.do(t, http.MethodGet, "/game/missing")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestDelete(t *testing.T) {
	ts := newTestServer(t)
	id := ts.newGame(t, "standard").SessionId

	code, _, _ := ts.do(t, http.MethodDelete, "/game/"+id)
	assert.Equal(t, http.StatusNoContent, code)
	code, _, _ = ts.do(t, http.MethodGet, "/game/"+id)
	assert.Equal(t, http.StatusNotFound, code)
	code, _, _ = ts.do(t, http.MethodDelete, "/game/"+id)
	assert.Equal(t, http.StatusNoContent, code)
}

func TestMoveWin(t *testing.T) {
	ts := newTestServer(t)
	id := ts.newGame(t, "standard").SessionId
	combination := ts.combination(t, id)

	for _, d := range combination {
		code, _ := ts.move(t, id, "d "+strconv.Itoa(d))
		require.Equal(t, http.StatusOK, code)
		code, _ = ts.move(t, id, "n")
		require.Equal(t, http.StatusOK, code)
	}
	code, dto := ts.move(t, id, "c")
	require.Equal(t, http.StatusOK, code)

	assert.Equal(t, "won", dto.Status)
	assert.False(t, dto.InputEnabled)
	require.NotNil(t, dto.Rules)
	assert.Equal(t, "standard", *dto.Rules)
	require.NotNil(t, dto.Combination)
	assert.Equal(t, combination.String(), *dto.Combination)
	assert.NotNil(t, dto.EndedAt)
	assert.Equal(t, []string{"game_won"}, eventKinds(dto))
	// a winning row is not scored under standard rules
	assert.Empty(t, dto.Rows[mastermind.RowCount-1].Feedback)
	assert.Equal(t, combination[:], dto.Rows[mastermind.RowCount-1].Answer)

	require.Len(t, ts.recorder.records, 1)
	record := ts.recorder.records[0]
	assert.Equal(t, id, record.SessionId)
	assert.Equal(t, repository.OutcomeWon, record.Outcome)
	assert.Equal(t, 1, record.RowsUsed)
	assert.Equal(t, combination.String(), record.Combination)
	assert.Nil(t, record.PlayerId)

	// finished games ignore further input and are not recorded twice
	code, dto = ts.move(t, id, "d 1")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "won", dto.Status)
	_, _ = ts.move(t, id, "o")
	assert.Len(t, ts.recorder.records, 1)
}

func TestMoveIncompleteRow(t *testing.T) {
	ts := newTestServer(t)
	id := ts.newGame(t, "standard").SessionId

	code, dto := ts.move(t, id, "c")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "active", dto.Status)
	require.Len(t, dto.Events, 1)
	assert.Equal(t, EventDTO{Kind: "validation_error", Message: mastermind.MessageRowIncomplete}, dto.Events[0])
}

func TestMoveErrors(t *testing.T) {
	ts := newTestServer(t)
	id := ts.newGame(t, "standard").SessionId

	tests := []struct {
		name string
		cmd  string
		code int
	}{
		{"unknown", "x", http.StatusBadRequest},
		{"missing arg", "d", http.StatusBadRequest},
		{"extra arg", "c 1", http.StatusBadRequest},
		{"digit too big", "d 7", http.StatusBadRequest},
		{"digit zero", "d 0", http.StatusBadRequest},
		{"not a digit", "d one", http.StatusBadRequest},
		{"get", "g", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _ := ts.move(t, id, tt.cmd)
			assert.Equal(t, tt.code, code)
		})
	}

	code, _, _ := ts.do(t, http.MethodPost, "/game/"+id+"/move")
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = ts.move(t, "missing", "g")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestCheaterCheckAndReset(t *testing.T) {
	ts := newTestServer(t)
	id := ts.newGame(t, "cheater").SessionId

	code, dto := ts.move(t, id, "o")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "revealed", dto.Status)
	require.Len(t, dto.Events, 1)
	require.NotNil(t, dto.Events[0].Cheated)
	assert.True(t, *dto.Events[0].Cheated)
	require.NotNil(t, dto.Rules)
	assert.Equal(t, "cheater", *dto.Rules)

	require.Len(t, ts.recorder.records, 1)
	assert.Equal(t, repository.OutcomeRevealed, ts.recorder.records[0].Outcome)
	assert.Equal(t, 0, ts.recorder.records[0].RowsUsed)

	code, dto, _ = ts.do(t, http.MethodPost, "/game/"+id+"/reset")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "active", dto.Status)
	assert.Nil(t, dto.EndedAt)
	assert.Nil(t, dto.Rules)
	assert.Equal(t, []string{"after_reset"}, eventKinds(dto))
}

func TestConnectWS(t *testing.T) {
	ts := newTestServer(t)
	id := ts.newGame(t, "standard").SessionId

	server := httptest.NewServer(ts.mux)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/game/" + id + "/connect"
	c, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.WriteMessage(websocket.TextMessage, []byte("d 3\nn\n\nd 5\n")))
	var dto GameDTO
	require.NoError(t, c.ReadJSON(&dto))
	assert.Equal(t, []int{3, 5, 0, 0}, dto.Rows[mastermind.RowCount-1].Answer)
	assert.Equal(t, 1, dto.ActiveCell)

	require.NoError(t, c.WriteMessage(websocket.TextMessage, []byte("n\nx")))
	var e map[string]any
	require.NoError(t, c.ReadJSON(&e))
	assert.Contains(t, e["error"], ErrUnknownCommand.Error())

	// commands before the bad one were kept
	code, fetched, _ := ts.do(t, http.MethodGet, "/game/"+id)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 2, fetched.ActiveCell)
}

func TestConnectWSNotFound(t *testing.T) {
	ts := newTestServer(t)
	w := httptest.NewRecorder()
	ts.mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/game/missing/connect", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
