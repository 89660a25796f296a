package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"regexp"
	"sync"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// goose keeps its settings in package globals.
var gooseMu sync.Mutex

var migrationName = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Migrate applies the embedded migrations. Already applied versions are skipped.
func Migrate(ctx context.Context, db *sql.DB) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// CreateMigration writes a new numbered SQL migration into dir.
func CreateMigration(name, dir string) error {
	if !migrationName.MatchString(name) {
		return fmt.Errorf("invalid migration name %q: use letters, digits and underscore", name)
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(nil)
	goose.SetSequential(true)
	if err := goose.Create(nil, dir, name, "sql"); err != nil {
		return fmt.Errorf("create migration: %w", err)
	}
	return nil
}
