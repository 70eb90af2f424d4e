package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Skotchmaster/idea_drop/internal/config"
	"github.com/Skotchmaster/idea_drop/internal/cookie"
	"github.com/Skotchmaster/idea_drop/internal/db"
	"github.com/Skotchmaster/idea_drop/internal/events"
	"github.com/Skotchmaster/idea_drop/internal/httpserver"
	"github.com/Skotchmaster/idea_drop/internal/logging"
	"github.com/Skotchmaster/idea_drop/internal/repo"
	"github.com/Skotchmaster/idea_drop/internal/service"
	"github.com/Skotchmaster/idea_drop/internal/tokens"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gdb, err := db.Open(initCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	tm, err := tokens.NewManager([]byte(cfg.JWTSecret))
	if err != nil {
		log.Fatalf("tokens: %v", err)
	}

	publisher := events.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)

	authHTTP := &httpserver.AuthHTTP{
		Svc: &service.AuthService{
			Repo:       repo.New(gdb),
			Tokens:     tm,
			Events:     publisher,
			AccessTTL:  cfg.AccessTTL,
			RefreshTTL: cfg.RefreshTTL,
		},
		Cookies: cookie.PolicyFor(cfg.CookieEnv(), cfg.RefreshTTL),
	}

	e := httpserver.New(&httpserver.Deps{
		AuthHandler: authHTTP,
		Verifier:    tm,
		Logger:      logger,
		CORSOrigins: cfg.CORSOrigins,
	})

	go func() {
		logger.Info("server starting", "addr", cfg.Addr, "env", string(cfg.CookieEnv()))
		if err := e.Start(cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("echo start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("echo shutdown", "error", err)
	}
	if err := publisher.Close(); err != nil {
		logger.Error("kafka close", "error", err)
	}
	if err := db.Close(gdb); err != nil {
		logger.Error("db close", "error", err)
	}

	logger.Info("shutdown complete")
}
