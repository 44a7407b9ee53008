package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookstand.org/internal/auth"
	"bookstand.org/internal/config"
	"bookstand.org/internal/httpapi"
	"bookstand.org/internal/obs"
	"bookstand.org/internal/store/pg"
)

var (
	version = "0.3.0"
	commit  = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	obs.Init()
	obs.InitBuildInfo(version, commit)

	store, err := pg.Open(cfg.Database.DSN())
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer store.Close()

	users := auth.NewPGUserStore(store.DB())

	tokens, err := auth.NewTokens(cfg.JWTSecret,
		auth.WithIssuer("bookstand"),
		auth.WithTTL(cfg.TokenTTL),
	)
	if err != nil {
		log.Fatalf("tokens: %v", err)
	}

	api := httpapi.New(store, users, tokens,
		httpapi.WithReadyProbe(httpapi.ReadyProbe{DB: store.DB()}),
		httpapi.WithVersion(version),
		httpapi.WithRateLimit(cfg.RateBurst, cfg.RatePerSec),
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting bookstand-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	log.Println("Stopped")
}
