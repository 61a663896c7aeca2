// Package database provides connection setup for MariaDB and Redis.
// Both connections are created once at startup and shared by the calendar
// store and the definition cache. This package owns the connection
// lifecycle (open, configure pool, ping, close) and schema migrations.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	// MariaDB driver, registered for database/sql.
	_ "github.com/go-sql-driver/mysql"

	"github.com/keyxmakerx/esoterica/internal/config"
)

// Connection retry settings for a database that is still starting up.
const (
	maxPingAttempts = 10
	maxPingBackoff  = 30 * time.Second
)

// NewMariaDB opens a connection pool configured from cfg and waits until
// the server answers a ping. Retries back off exponentially and stop early
// when ctx is cancelled.
func NewMariaDB(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("opening mariadb connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := pingWithRetry(ctx, db, time.Second); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// pingWithRetry pings db until it succeeds, the attempts run out, or ctx ends.
func pingWithRetry(ctx context.Context, db *sql.DB, backoff time.Duration) error {
	var pingErr error
	for attempt := 1; attempt <= maxPingAttempts; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		pingErr = db.PingContext(pingCtx)
		cancel()
		if pingErr == nil {
			return nil
		}
		if attempt == maxPingAttempts {
			break
		}

		slog.Warn("mariadb not ready, retrying",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", maxPingAttempts),
			slog.Duration("backoff", backoff),
			slog.Any("error", pingErr),
		)
		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for mariadb: %w", ctx.Err())
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxPingBackoff)
	}
	return fmt.Errorf("pinging mariadb after %d attempts: %w", maxPingAttempts, pingErr)
}
