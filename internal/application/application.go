package application

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/WolfLycanorcant/Starwars-Bridge-Simulator-for-EotE-sub000/internal/config"
	"github.com/WolfLycanorcant/Starwars-Bridge-Simulator-for-EotE-sub000/internal/database"
	"github.com/WolfLycanorcant/Starwars-Bridge-Simulator-for-EotE-sub000/internal/handler"
	"github.com/WolfLycanorcant/Starwars-Bridge-Simulator-for-EotE-sub000/internal/router"
	"github.com/WolfLycanorcant/Starwars-Bridge-Simulator-for-EotE-sub000/internal/service"
	"github.com/WolfLycanorcant/Starwars-Bridge-Simulator-for-EotE-sub000/internal/store"
	"github.com/WolfLycanorcant/Starwars-Bridge-Simulator-for-EotE-sub000/pkg/constants"
)

// API is the HTTP + WebSocket bridge-server application.
type API struct {
	cfg    *config.Config
	srv    *http.Server
	gormKV *store.GormKV // nil when running on the memory store
	sweep  time.Duration
}

// NewAPI creates the application: validates config, prepares the store
// backend, wires stores, hub, service and router.
func NewAPI(cfg *config.Config) (*API, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	logger, _ := zap.NewProduction()
	if cfg.AppEnv == "development" {
		logger, _ = zap.NewDevelopment()
	}

	var kv store.KV
	var gormKV *store.GormKV
	switch cfg.StoreDriver {
	case "memory":
		kv = store.NewMemoryKV()
		logger.Warn("running on the in-memory store, sessions will not survive a restart")
	default:
		if err := database.MigrateUp(cfg.DatabaseURL()); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		db, err := database.Open(cfg.DSN())
		if err != nil {
			return nil, fmt.Errorf("database: %w", err)
		}
		gormKV = store.NewGormKV(db, logger)
		kv = gormKV
	}

	sessionTTL := time.Duration(cfg.SessionTTL) * time.Second
	socketTTL := time.Duration(cfg.SocketTTL) * time.Second

	states := store.NewStateStore(kv, sessionTTL, logger)
	sessions := store.NewSessionStore(kv, states, sessionTTL, socketTTL, cfg.SessionMaxPlayers, logger)

	hub := service.NewBridgeHub(cfg.WSReadBufferSize, cfg.WSWriteBufferSize, cfg.WSMaxMessageSize, logger)
	game := service.NewGameService(sessions, states, hub, logger)

	sessionHandler := handler.NewSessionHandler(sessions, game, constants.PathBridgeWS)
	bridgeWS := handler.NewBridgeWSHandler(hub, game, logger)
	health := handler.NewHealthHandler(cfg.AppEnv)

	r := router.New(sessionHandler, bridgeWS, health)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &API{
		cfg:    cfg,
		srv:    srv,
		gormKV: gormKV,
		sweep:  time.Duration(cfg.KVSweepInterval) * time.Second,
	}, nil
}

// Run starts the HTTP server and blocks until ctx is cancelled; then shuts
// down gracefully.
func (a *API) Run(ctx context.Context) error {
	addr := a.srv.Addr
	host := a.cfg.AppHost
	if host == "0.0.0.0" {
		host = "localhost"
	}
	base := "http://" + host + ":" + a.cfg.HTTPPort
	log.Printf("HTTP server listening on %s", addr)
	log.Printf("  Health:        %s/health", base)
	log.Printf("  Sessions:      %s/sessions", base)
	log.Printf("  WebSocket:     ws://%s:%s%s", host, a.cfg.HTTPPort, constants.PathBridgeWS)

	if a.gormKV != nil && a.sweep > 0 {
		go a.gormKV.RunSweeper(ctx, a.sweep)
	}

	go func() {
		if err := a.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("http: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
