// Command waitforpostgres blocks until the session database accepts
// connections. CI runs it before the Postgres integration tests.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	_ "github.com/lib/pq"
)

const pollInterval = 2 * time.Second

func main() {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		dsn = os.Getenv("PORTAL_SESSION_DATABASE_URL")
	}
	if dsn == "" {
		log.Error("TEST_POSTGRES_DSN or PORTAL_SESSION_DATABASE_URL is required")
		os.Exit(2)
	}

	timeout, err := timeoutFromEnv("WAIT_FOR_POSTGRES_TIMEOUT_SEC", 60*time.Second)
	if err != nil {
		log.Error("invalid timeout", "error", err)
		os.Exit(2)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Error("open postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := waitReady(ctx, db, log); err != nil {
		log.Error("postgres not ready", "timeout", timeout, "error", err)
		os.Exit(1)
	}
	fmt.Println("postgres ready")
}

func timeoutFromEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	secs, err := strconv.Atoi(raw)
	if err != nil || secs <= 0 {
		return 0, fmt.Errorf("%s must be a positive number of seconds, got %q", key, raw)
	}
	return time.Duration(secs) * time.Second, nil
}

func waitReady(ctx context.Context, db *sql.DB, log *slog.Logger) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		pingCtx, cancel := context.WithTimeout(ctx, pollInterval)
		err := db.PingContext(pingCtx)
		cancel()
		if err == nil {
			return nil
		}
		log.Debug("postgres not ready yet", "error", err)
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: last error: %v", ctx.Err(), err)
		case <-ticker.C:
		}
	}
}
