package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/vancomm/mastermind-server/internal/config"
	"github.com/vancomm/mastermind-server/internal/database"
	"github.com/vancomm/mastermind-server/internal/middleware"
	"github.com/vancomm/mastermind-server/internal/store"
)

type App struct {
	log     *logrus.Logger
	cfg     *config.Config
	router  *http.ServeMux
	store   store.Store
	db      *pgxpool.Pool
	jwt     *config.JWT
	cookies *config.Cookies
	ws      *config.WebSocket
}

func New(log *logrus.Logger, cfg *config.Config) *App {
	return &App{
		log:    log,
		cfg:    cfg,
		router: http.NewServeMux(),
		ws:     config.NewWebSocket(),
	}
}

// setup opens the session store and, when configured, the records
// database and JWT keys. Missing optional parts are logged and skipped.
func (a *App) setup(ctx context.Context) error {
	st, err := store.Open(a.cfg.Game)
	if err != nil {
		return fmt.Errorf("unable to open session store: %w", err)
	}
	a.store = st
	a.log.WithField("store", a.cfg.Game.Store).Info("session store ready")

	if !a.cfg.Postgres.Enabled() {
		a.log.Warn("no database configured, auth and records are disabled")
		return nil
	}

	db, migrator, err := database.ConnectAndMigrate(ctx, a.cfg.Postgres)
	if err != nil {
		return fmt.Errorf("unable to connect to db: %w", err)
	}
	a.db = db
	if version, dirty, err := migrator.Version(); err == nil {
		a.log.WithFields(logrus.Fields{
			"version": version,
			"dirty":   dirty,
		}).Info("database migrated")
	}
	migrator.Close()

	j, err := config.NewJWT(a.cfg.Jwt)
	if errors.Is(err, config.ErrNoJWTKeys) {
		a.log.Warn("no jwt keys configured, auth is disabled")
		return nil
	}
	if err != nil {
		return err
	}
	a.jwt = j
	a.cookies = a.cfg.Cookies.Bind(j, a.cfg.Development())
	return nil
}

func (a *App) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.WithError(err).Error("unable to close session store")
		}
	}
	if a.db != nil {
		a.db.Close()
	}
}

func (a *App) handler() http.Handler {
	a.loadRoutes()
	mws := []middleware.Middleware{}
	if a.cookies != nil {
		mws = append(mws, middleware.Auth(a.cookies))
	}
	mws = append(mws, middleware.Cors(), middleware.Logging(a.log))
	return middleware.Wrap(a.router, mws...)
}

func (a *App) Start(ctx context.Context) error {
	if err := a.setup(ctx); err != nil {
		return err
	}
	defer a.close()

	server := &http.Server{
		Addr:    a.cfg.Addr,
		Handler: a.handler(),
		BaseContext: func(l net.Listener) context.Context {
			return ctx
		},
	}

	a.log.Infof("ready to serve @ %s", a.cfg.Addr)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
