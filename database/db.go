// Package database owns the Postgres connection, schema migrations and the
// itinerary table.
package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"github.com/FlameWater5625/TravelleroTralala/migrations"
)

// Open connects to Postgres, waiting up to attempts×2s for it to accept
// connections (managed databases are often still starting when we boot).
func Open(ctx context.Context, dsn string, attempts int) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("database.Open: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if attempts < 1 {
		attempts = 1
	}
	for i := 1; ; i++ {
		err = db.PingContext(ctx)
		if err == nil {
			return db, nil
		}
		if i == attempts {
			break
		}
		slog.WarnContext(ctx, "waiting for database", "attempt", i, "of", attempts, "error", err)
		select {
		case <-ctx.Done():
			db.Close()
			return nil, fmt.Errorf("database.Open: %w", ctx.Err())
		case <-time.After(2 * time.Second):
		}
	}
	db.Close()
	return nil, fmt.Errorf("database.Open: ping after %d attempts: %w", attempts, err)
}

// Migrate applies every pending embedded migration.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("database.Migrate: %w", err)
	}
	if err := goose.UpContext(ctx, db.DB, "."); err != nil {
		return fmt.Errorf("database.Migrate: %w", err)
	}
	return nil
}
