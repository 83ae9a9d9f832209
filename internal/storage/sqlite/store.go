// Package sqlite: встраиваемое хранилище заказов на modernc.org/sqlite.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/vladislavdragonenkov/checkout/internal/storage/migrations"
)

const (
	// MemoryPath открывает изолированную базу в памяти процесса.
	MemoryPath = ":memory:"

	migrationsGlob     = "sql/migrations/*.sql"
	defaultConnTimeout = 5 * time.Second
)

//go:embed sql/migrations/*.sql
var migrationsFS embed.FS

var errStoreNotInitialized = errors.New("sqlite store is not initialized")

var dialect = migrations.Dialect{
	TableDDL: `
CREATE TABLE IF NOT EXISTS schema_migrations (
    version INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    applied_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
)`,
	Record:  `INSERT INTO schema_migrations (version, name) VALUES (?, ?)`,
	Forget:  `DELETE FROM schema_migrations WHERE version = ?`,
	LatestN: `SELECT version FROM schema_migrations ORDER BY version DESC LIMIT ?`,
}

// Store оборачивает SQLite-подключение.
type Store struct {
	db *sql.DB
}

// Open открывает базу по пути (или MemoryPath) с включёнными внешними ключами.
func Open(ctx context.Context, path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if path != MemoryPath {
		dsn = filepath.Clean(path) + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Одна запись за раз; для :memory: каждое новое соединение было бы отдельной пустой базой.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pingCtx, cancel := context.WithTimeout(ctx, defaultConnTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	return &Store{db: db}, nil
}

// DB возвращает raw SQL DB.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Ping проверяет доступность базы.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.db == nil {
		return errStoreNotInitialized
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultConnTimeout)
	defer cancel()
	return s.db.PingContext(pingCtx)
}

// MigrateUp применяет up-миграции; steps=0: все доступные.
func (s *Store) MigrateUp(ctx context.Context, steps int) error {
	runner, err := s.runner()
	if err != nil {
		return err
	}
	return runner.Up(ctx, steps)
}

// MigrateDown откатывает steps миграций (минимум одну).
func (s *Store) MigrateDown(ctx context.Context, steps int) error {
	runner, err := s.runner()
	if err != nil {
		return err
	}
	return runner.Down(ctx, steps)
}

// MigrationStatus возвращает текущую версию и количество применённых миграций.
func (s *Store) MigrationStatus(ctx context.Context) (int64, int, error) {
	runner, err := s.runner()
	if err != nil {
		return 0, 0, err
	}
	return runner.Status(ctx)
}

// EnsureSchema применяет все up-миграции.
func (s *Store) EnsureSchema(ctx context.Context) error {
	return s.MigrateUp(ctx, 0)
}

// Close закрывает базу.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) runner() (*migrations.Runner, error) {
	if s == nil || s.db == nil {
		return nil, errStoreNotInitialized
	}

	list, err := migrations.Load(migrationsFS, migrationsGlob)
	if err != nil {
		return nil, fmt.Errorf("load sqlite migrations: %w", err)
	}
	return migrations.NewRunner(s.db, dialect, list), nil
}
