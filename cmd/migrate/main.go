package main

import (
	"flag"
	"log"

	migrate "github.com/rubenv/sql-migrate"
	"go.uber.org/zap"

	"github.com/johnquangdev/transcript-intel/internal/infrastructure/database"
	"github.com/johnquangdev/transcript-intel/pkg/config"
)

func main() {
	down := flag.Bool("down", false, "roll back instead of applying")
	limit := flag.Int("limit", 0, "maximum number of migrations to run (0 = all; -down defaults to 1)")
	dir := flag.String("dir", database.MigrationsDir, "directory holding the SQL migrations")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.NewPostgresDB(cfg, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer database.CloseDB(db)

	direction := migrate.Up
	max := *limit
	if *down {
		direction = migrate.Down
		if max == 0 {
			max = 1
		}
	}

	n, err := database.Migrate(db, *dir, direction, max)
	if err != nil {
		logger.Fatal("migration failed", zap.Int("applied", n), zap.Error(err))
	}
	logger.Info("migrations complete",
		zap.Bool("down", *down),
		zap.Int("count", n),
	)
}
