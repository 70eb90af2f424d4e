// Command seed creates the demo account used by local frontends.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/Skotchmaster/idea_drop/internal/config"
	"github.com/Skotchmaster/idea_drop/internal/db"
	"github.com/Skotchmaster/idea_drop/internal/logging"
	"github.com/Skotchmaster/idea_drop/internal/repo"
)

func main() {
	name := flag.String("name", "Demo User", "display name")
	email := flag.String("email", "demo@example.com", "login email")
	password := flag.String("password", "password123", "login password")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.LogLevel).With("service", "seed")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	gdb, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	defer db.Close(gdb)

	created, err := repo.New(gdb).EnsureUser(ctx, *name, *email, *password)
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	logger.Info("demo user ready", "email", *email, "created", created)
}
