package main

import (
	"context"
	"log"
	"os"

	"github.com/mpss/storefront/internal/config"
	"github.com/mpss/storefront/internal/database"
	"github.com/mpss/storefront/internal/logger"
	"go.uber.org/zap"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run scripts/run_migrations.go [up|down]")
	}

	direction := database.Direction(os.Args[1])
	if direction != database.Up && direction != database.Down {
		log.Fatal("Direction must be 'up' or 'down'")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Load config: %v", err)
	}

	lg, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("Build logger: %v", err)
	}
	defer lg.Sync()

	db, err := database.NewConnection(context.Background(), &cfg.Database)
	if err != nil {
		lg.Fatal("connect to database", zap.Error(err))
	}
	defer db.Close()

	applied, err := database.Migrate(context.Background(), db, direction)
	if err != nil {
		lg.Fatal("run migrations", zap.Error(err))
	}

	for _, name := range applied {
		lg.Info("applied migration", zap.String("file", name))
	}
	lg.Info("migrations complete", zap.Int("count", len(applied)), zap.String("direction", string(direction)))
}
