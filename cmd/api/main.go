package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"dashcomm.org/internal/auth"
	"dashcomm.org/internal/config"
	"dashcomm.org/internal/directory"
	"dashcomm.org/internal/feed"
	"dashcomm.org/internal/finance"
	"dashcomm.org/internal/httpapi"
	"dashcomm.org/internal/obs"
	"dashcomm.org/internal/store/pg"
)

var (
	version = "0.3.0"
	commit  = "dev"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		obs.Logger().Error("load config", "err", err)
		os.Exit(1)
	}

	obs.SetupLogging(cfg.LogLevel)
	obs.Init()
	obs.InitBuildInfo(version, commit)
	log := obs.Logger()

	tokens, err := auth.NewTokens(cfg.AuthSecret, cfg.TokenTTL)
	if err != nil {
		log.Error("token signer", "err", err)
		os.Exit(1)
	}

	// Stores: Postgres when a DSN is configured, in-memory otherwise.
	var (
		db      *sql.DB
		dirSvc  *directory.Service
		records finance.Store
	)
	if cfg.DatabaseDSN != "" {
		pgStore, err := pg.Open(cfg.DatabaseDSN)
		if err != nil {
			log.Error("open db", "err", err)
			os.Exit(1)
		}
		db = pgStore.DB()
		dirSvc = directory.NewService(directory.NewPGStore(db))
		records = pgStore
		log.Info("using postgres store")
	} else {
		dirSvc = directory.NewService(directory.NewInMemory())
		records = finance.NewInMemory()
		log.Warn("no DASHCOMM_PG_DSN set, using in-memory store")
	}

	api := httpapi.New(httpapi.ReadyProbe{DB: db}, version, tokens, dirSvc, records, feed.New()).
		WithRate(cfg.RateBurst, cfg.RatePerSecond).
		WithMaxBody(cfg.MaxBodyBytes)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.Info("starting dashcomm-api", "version", version, "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("listen", "err", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	if db != nil {
		_ = db.Close()
	}
	log.Info("stopped")
}
