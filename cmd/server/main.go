package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/MahanteshPatil1214/agency-platform/internal/backend"
	"github.com/MahanteshPatil1214/agency-platform/internal/config"
	"github.com/MahanteshPatil1214/agency-platform/internal/handler"
	"github.com/MahanteshPatil1214/agency-platform/internal/session"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.Sugar()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	sessions, err := session.Open(cfg.DatabasePath, "migrations", log)
	if err != nil {
		log.Fatalf("session store: %v", err)
	}
	defer sessions.Close()

	api := backend.New(cfg.BackendURL, log)

	ctx, cancel := context.WithCancel(context.Background())
	go cleanSessions(ctx, sessions, log)

	h := handler.New(api, sessions, "templates", cfg.CSRFSecret, cfg.CookieDomain, cfg.PollInterval, log)
	router := h.Router()

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		cancel()
		log.Info("shutting down...")
		sessions.Close()
		os.Exit(0)
	}()

	log.Infof("Starting server at http://%s (backend %s)", cfg.Addr(), cfg.BackendURL)
	if err := http.ListenAndServe(cfg.Addr(), router); err != nil {
		log.Fatalf("server: %v", err)
	}
}

// cleanSessions prunes expired session rows once an hour.
func cleanSessions(ctx context.Context, sessions *session.Store, log *zap.SugaredLogger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := sessions.CleanExpired(ctx); err != nil {
				log.Warnf("clean sessions: %v", err)
			}
		}
	}
}
