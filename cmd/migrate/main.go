package main

// Apply or inspect the schema:
//   go run ./cmd/migrate            # up
//   go run ./cmd/migrate status
//   go run ./cmd/migrate down-to 3

import (
	"context"
	"log"
	"os"

	"hippo-backend/internal/shared/config"
	"hippo-backend/internal/shared/storage/db"
)

func main() {
	command, args := "up", []string(nil)
	if len(os.Args) > 1 {
		command, args = os.Args[1], os.Args[2:]
	}

	cfg := config.Load()
	ctx := context.Background()

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.DefaultMigrateOptions())
	if err != nil {
		log.Printf("migrate: connect: %v", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	if err := db.Migrate(ctx, sqlDB, command, args...); err != nil {
		log.Printf("migrate: %v", err)
		sqlDB.Close()
		os.Exit(1)
	}
	log.Printf("migrate: %s done", command)
}
