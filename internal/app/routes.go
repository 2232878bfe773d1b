package app

import (
	"hash/maphash"
	"math/rand/v2"

	"github.com/vancomm/mastermind-server/internal/handlers"
	"github.com/vancomm/mastermind-server/internal/repository"
)

func createRand() *rand.Rand {
	return rand.New(rand.NewPCG(
		new(maphash.Hash).Sum64(), new(maphash.Hash).Sum64(),
	))
}

func (a *App) loadRoutes() {
	var records handlers.GameRecorder
	var repo *repository.Queries
	if a.db != nil {
		repo = repository.New(a.db)
		records = repo
	}

	game := handlers.NewGameHandler(
		a.log, a.store, records, a.ws, a.cfg.Game.RuleKind(), createRand,
	)

	a.router.HandleFunc("POST /game", game.NewGame)
	a.router.HandleFunc("GET /game/{id}", game.Fetch)
	a.router.HandleFunc("POST /game/{id}/move", game.Move)
	a.router.HandleFunc("POST /game/{id}/reset", game.Reset)
	a.router.HandleFunc("DELETE /game/{id}", game.Delete)
	a.router.HandleFunc("GET /game/{id}/connect", game.ConnectWS)

	if repo == nil {
		return
	}

	leaderboard := handlers.NewRecords(a.log, repo)
	a.router.HandleFunc("GET /records", leaderboard.Leaderboard)

	if a.jwt == nil {
		return
	}

	auth := handlers.NewAuth(a.log, repo, a.cookies, a.jwt)
	a.router.HandleFunc("POST /auth/register", auth.Register)
	a.router.HandleFunc("POST /auth/login", auth.Login)
	a.router.HandleFunc("POST /auth/logout", auth.Logout)
	a.router.HandleFunc("GET /auth/status", auth.Status)
}
