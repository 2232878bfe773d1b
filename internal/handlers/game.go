package handlers

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/vancomm/mastermind-server/internal/config"
	"github.com/vancomm/mastermind-server/internal/mastermind"
	"github.com/vancomm/mastermind-server/internal/middleware"
	"github.com/vancomm/mastermind-server/internal/repository"
	"github.com/vancomm/mastermind-server/internal/store"
)

type GameRecorder interface {
	CreateGameRecord(ctx context.Context, params repository.CreateGameRecordParams) (*repository.GameRecord, error)
}

type GameHandler struct {
	log     *logrus.Logger
	store   store.Store
	records GameRecorder
	ws      *config.WebSocket
	rules   mastermind.RuleKind
	newRand func() *rand.Rand
	locks   *keyedMutex
	now     func() time.Time
}

// NewGameHandler returns a handler that keeps sessions in st. records may
// be nil, in which case finished games are not recorded.
func NewGameHandler(
	log *logrus.Logger,
	st store.Store,
	records GameRecorder,
	ws *config.WebSocket,
	rules mastermind.RuleKind,
	newRand func() *rand.Rand,
) *GameHandler {
	return &GameHandler{
		log:     log,
		store:   st,
		records: records,
		ws:      ws,
		rules:   rules,
		newRand: newRand,
		locks:   newKeyedMutex(),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

var ErrCorruptSession = errors.New("stored session is corrupt")

// game is a session loaded for the duration of one request.
type game struct {
	meta    *gameSession
	session *mastermind.Session
	events  []mastermind.Event
}

func (gm *game) listen(e mastermind.Event) {
	gm.events = append(gm.events, e)
}

func (g *GameHandler) load(ctx context.Context, id string) (*game, error) {
	b, err := g.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	meta, err := decodeGameSession(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptSession, err)
	}
	snap, err := mastermind.DecodeSnapshot(meta.State)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptSession, err)
	}
	gm := &game{meta: meta}
	gm.session, err = mastermind.Restore(*snap, mastermind.Options{
		Rand:     g.newRand(),
		Rules:    meta.Requested,
		Listener: gm.listen,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptSession, err)
	}
	return gm, nil
}

func (g *GameHandler) save(ctx context.Context, gm *game) error {
	state, err := gm.session.Snapshot().Bytes()
	if err != nil {
		return fmt.Errorf("unable to serialize game state: %w", err)
	}
	gm.meta.State = state
	b, err := gm.meta.Bytes()
	if err != nil {
		return fmt.Errorf("unable to serialize game session: %w", err)
	}
	return g.store.Set(ctx, gm.meta.ID, b)
}

// apply runs cmds in order and stops at the first invalid one. A game that ends gets its end time set and is
// recorded; a reset restarts the clock.
func (g *GameHandler) apply(ctx context.Context, gm *game, cmds []string) error {
	for _, c := range cmds {
		before := gm.session.Status()
		seen := len(gm.events)
		if err := executeCommand(gm.session, c); err != nil {
			return fmt.Errorf("%q: %w", c, err)
		}
		after := gm.session.Status()

		restarted := false
		for _, e := range gm.events[seen:] {
			if e.Kind() == mastermind.EventAfterReset {
				restarted = true
			}
		}
		switch {
		case restarted:
			gm.meta.StartedAt = g.now()
			gm.meta.EndedAt = nil
		case before == mastermind.Active && after != mastermind.Active:
			ended := g.now()
			gm.meta.EndedAt = &ended
			g.record(ctx, gm)
		}
	}
	return nil
}

func rowsUsed(s *mastermind.Session) int {
	n := mastermind.RowCount - s.Board().CurrentRow()
	if s.Status() == mastermind.Revealed {
		n--
	}
	return n
}

func outcome(s mastermind.Status) string {
	switch s {
	case mastermind.Won:
		return repository.OutcomeWon
	case mastermind.Lost:
		return repository.OutcomeLost
	}
	return repository.OutcomeRevealed
}

func (g *GameHandler) record(ctx context.Context, gm *game) {
	s := gm.session
	fields := logrus.Fields{
		"sessionId": gm.meta.ID,
		"status":    s.Status().String(),
		"rules":     s.Rules().String(),
	}
	if g.records == nil {
		g.log.WithFields(fields).Debug("game finished")
		return
	}
	_, err := g.records.CreateGameRecord(ctx, repository.CreateGameRecordParams{
		PlayerId:    gm.meta.PlayerID,
		SessionId:   gm.meta.ID,
		Rules:       s.Rules().String(),
		Combination: s.Combination().String(),
		Outcome:     outcome(s.Status()),
		RowsUsed:    rowsUsed(s),
		StartedAt:   gm.meta.StartedAt,
		EndedAt:     *gm.meta.EndedAt,
	})
	if err != nil {
		g.log.WithFields(fields).WithError(err).Error("unable to create game record")
		return
	}
	g.log.WithFields(fields).Info("game recorded")
}

func (g *GameHandler) sendLoadError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusInternalServerError)
	g.log.WithError(err).Error("unable to load game session")
}

func (g *GameHandler) NewGame(w http.ResponseWriter, r *http.Request) {
	dto, err := ParseCreateGameDTO(r.URL.Query())
	if err != nil {
		sendErrorOrLog(w, g.log, http.StatusBadRequest, err)
		return
	}

	kind := g.rules
	if dto.Rules != "" {
		if kind, err = mastermind.ParseRuleKind(dto.Rules); err != nil {
			sendErrorOrLog(w, g.log, http.StatusBadRequest, err)
			return
		}
	}

	gm := &game{meta: &gameSession{
		ID:        store.NewID(),
		Requested: kind,
		StartedAt: g.now(),
	}}
	if claims, ok := middleware.PlayerClaims(r); ok {
		gm.meta.PlayerID = &claims.PlayerId
	}
	gm.session = mastermind.NewSession(mastermind.Options{
		Rand:     g.newRand(),
		Rules:    kind,
		Listener: gm.listen,
	})

	if err := g.save(r.Context(), gm); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		g.log.WithError(err).Error("unable to store new game session")
		return
	}

	g.log.WithFields(logrus.Fields{
		"sessionId": gm.meta.ID,
		"player":    gm.meta.PlayerID != nil,
	}).Debug("created game session")

	sendJSONOrLog(w, g.log, NewGameDTO(gm.meta, gm.session, gm.events))
}

func (g *GameHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	unlock := g.locks.Lock(id)
	defer unlock()

	gm, err := g.load(r.Context(), id)
	if err != nil {
		g.sendLoadError(w, err)
		return
	}
	sendJSONOrLog(w, g.log, NewGameDTO(gm.meta, gm.session, nil))
}

// Delete drops the session. Deleting an unknown id is not an error.
func (g *GameHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	unlock := g.locks.Lock(id)
	defer unlock()

	if err := g.store.Delete(r.Context(), id); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		g.log.WithError(err).Error("unable to delete game session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (g *GameHandler) Move(w http.ResponseWriter, r *http.Request) {
	dto, err := ParseMoveDTO(r.URL.Query())
	if err != nil {
		sendErrorOrLog(w, g.log, http.StatusBadRequest, err)
		return
	}
	g.play(w, r, []string{dto.Cmd})
}

func (g *GameHandler) Reset(w http.ResponseWriter, r *http.Request) {
	g.play(w, r, []string{"r"})
}

func (g *GameHandler) play(w http.ResponseWriter, r *http.Request, cmds []string) {
	id := r.PathValue("id")
	unlock := g.locks.Lock(id)
	defer unlock()

	gm, err := g.load(r.Context(), id)
	if err != nil {
		g.sendLoadError(w, err)
		return
	}

	applyErr := g.apply(r.Context(), gm, cmds)

	if err := g.save(r.Context(), gm); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		g.log.WithError(err).Error("unable to store game session")
		return
	}
	if applyErr != nil {
		sendErrorOrLog(w, g.log, http.StatusBadRequest, applyErr)
		return
	}

	sendJSONOrLog(w, g.log, NewGameDTO(gm.meta, gm.session, gm.events))
}

// handleMessage applies one websocket message and returns the reply.
func (g *GameHandler) handleMessage(ctx context.Context, id string, text string) any {
	unlock := g.locks.Lock(id)
	defer unlock()

	gm, err := g.load(ctx, id)
	if err != nil {
		g.log.WithError(err).WithField("sessionId", id).Error("unable to load game session")
		return wrapError(err)
	}
	applyErr := g.apply(ctx, gm, splitCommands(text))
	if err := g.save(ctx, gm); err != nil {
		g.log.WithError(err).WithField("sessionId", id).Error("unable to store game session")
		return wrapError(err)
	}
	if applyErr != nil {
		return wrapError(applyErr)
	}
	return NewGameDTO(gm.meta, gm.session, gm.events)
}

func (g *GameHandler) ConnectWS(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := g.store.Get(r.Context(), id); err != nil {
		g.sendLoadError(w, err)
		return
	}

	c, err := g.ws.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.WithError(err).Error("unable to upgrade connection")
		return
	}
	defer c.Close()

	for {
		mt, message, err := c.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				g.log.WithError(err).Warn("unable to read message")
			}
			break
		}
		if mt != websocket.TextMessage {
			break
		}
		if err := c.WriteJSON(g.handleMessage(r.Context(), id, string(message))); err != nil {
			g.log.WithError(err).Error("unable to write message")
			break
		}
	}
}
