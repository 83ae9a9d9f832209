package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/checkout/internal/storage/postgres"
	"github.com/vladislavdragonenkov/checkout/internal/storage/sqlite"
)

const (
	defaultTimeout = 30 * time.Second
)

// migrator: общее для postgres.Store и sqlite.Store.
type migrator interface {
	MigrateUp(ctx context.Context, steps int) error
	MigrateDown(ctx context.Context, steps int) error
	MigrationStatus(ctx context.Context) (int64, int, error)
	Close() error
}

func main() {
	if err := run(os.Args[1:], os.Getenv, os.Stdout); err != nil {
		fail("%v", err)
	}
}

func run(args []string, getenv func(string) string, stdout io.Writer) error {
	var (
		driver    string
		direction string
		steps     int
		dsn       string
	)

	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.StringVar(&driver, "driver", "postgres", "storage driver: postgres|sqlite")
	fs.StringVar(&direction, "direction", "up", "migration direction: up|down|status")
	fs.IntVar(&steps, "steps", 0, "number of migrations to apply/rollback (0=all for up, 1 for down)")
	fs.StringVar(&dsn, "dsn", "", "PostgreSQL DSN or SQLite path (fallback: ORDERS_POSTGRES_DSN / ORDERS_SQLITE_PATH)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	store, err := openStore(ctx, strings.ToLower(strings.TrimSpace(driver)), strings.TrimSpace(dsn), getenv)
	if err != nil {
		return err
	}
	defer store.Close()

	switch strings.ToLower(strings.TrimSpace(direction)) {
	case "up":
		if err := store.MigrateUp(ctx, steps); err != nil {
			return fmt.Errorf("migrate up failed: %w", err)
		}
		return printStatus(ctx, stdout, store, "migrate up ok")
	case "down":
		if steps <= 0 {
			steps = 1
		}
		if err := store.MigrateDown(ctx, steps); err != nil {
			return fmt.Errorf("migrate down failed: %w", err)
		}
		return printStatus(ctx, stdout, store, "migrate down ok")
	case "status":
		return printStatus(ctx, stdout, store, "migration status")
	default:
		return fmt.Errorf("unsupported direction: %s (use up|down|status)", direction)
	}
}

func openStore(ctx context.Context, driver, dsn string, getenv func(string) string) (migrator, error) {
	switch driver {
	case "postgres":
		if dsn == "" {
			dsn = strings.TrimSpace(getenv("ORDERS_POSTGRES_DSN"))
		}
		if dsn == "" {
			return nil, fmt.Errorf("ORDERS_POSTGRES_DSN (or -dsn) is required")
		}
		store, err := postgres.Open(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		return store, nil
	case "sqlite":
		if dsn == "" {
			dsn = strings.TrimSpace(getenv("ORDERS_SQLITE_PATH"))
		}
		if dsn == "" {
			return nil, fmt.Errorf("ORDERS_SQLITE_PATH (or -dsn) is required")
		}
		store, err := sqlite.Open(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported driver: %s (use postgres|sqlite)", driver)
	}
}

func printStatus(ctx context.Context, w io.Writer, store migrator, prefix string) error {
	version, count, err := store.MigrationStatus(ctx)
	if err != nil {
		return fmt.Errorf("migration status failed: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s: version=%d applied=%d\n", prefix, version, count)
	return err
}

func fail(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
