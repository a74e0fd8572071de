package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"
	"sync"

	"github.com/pressly/goose/v3"

	"hippo-backend/internal/shared/telemetry"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// goose keeps its dialect, FS and logger in package globals.
var gooseMu sync.Mutex

// Commands accepted by Migrate.
var migrateCommands = map[string]bool{
	"up": true, "up-by-one": true, "up-to": true,
	"down": true, "down-to": true, "redo": true,
	"status": true, "version": true,
}

type gooseLogger struct{}

func (gooseLogger) Printf(format string, v ...any) {
	telemetry.Info("migrate", map[string]any{"msg": strings.TrimSpace(fmt.Sprintf(format, v...))})
}

func (gooseLogger) Fatalf(format string, v ...any) {
	telemetry.Error("migrate.fatal", map[string]any{"msg": strings.TrimSpace(fmt.Sprintf(format, v...))})
}

// Migrate runs a goose command against the embedded schema. A nil database
// (memory mode) is a no-op.
func Migrate(ctx context.Context, database *sql.DB, command string, args ...string) error {
	if database == nil {
		return nil
	}
	if !migrateCommands[command] {
		return fmt.Errorf("unknown migrate command %q", command)
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()
	goose.SetBaseFS(migrationFiles)
	goose.SetLogger(gooseLogger{})
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := goose.RunContext(ctx, command, database, "migrations", args...); err != nil {
		return fmt.Errorf("migrate %s: %w", command, err)
	}
	return nil
}

// RunMigrations brings the schema up to date.
func RunMigrations(ctx context.Context, database *sql.DB) error {
	return Migrate(ctx, database, "up")
}
