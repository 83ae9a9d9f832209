package migrations

import (
	"context"
	"database/sql"
	"fmt"
)

// Dialect задаёт SQL, отличающийся между движками.
type Dialect struct {
	// TableDDL создаёт таблицу учёта применённых миграций.
	TableDDL string
	// Record и Forget добавляют/удаляют запись о версии (аргументы: version[, name]).
	Record string
	Forget string
	// LatestN выбирает последние применённые версии по убыванию (аргумент: limit).
	LatestN string
	// Lock берёт эксклюзивную блокировку на время миграции; nil: без блокировки.
	Lock func(ctx context.Context, conn *sql.Conn) (unlock func(), err error)
}

// Runner применяет миграции к базе.
type Runner struct {
	db         *sql.DB
	dialect    Dialect
	migrations []Migration
}

// NewRunner создаёт Runner для заданного набора миграций.
func NewRunner(db *sql.DB, dialect Dialect, migrations []Migration) *Runner {
	return &Runner{db: db, dialect: dialect, migrations: migrations}
}

// Up применяет ещё не применённые миграции. steps=0 означает "все доступные".
func (r *Runner) Up(ctx context.Context, steps int) error {
	return r.withConn(ctx, func(conn *sql.Conn) error {
		applied, err := r.appliedVersions(ctx, conn)
		if err != nil {
			return err
		}

		done := 0
		for _, m := range r.migrations {
			if applied[m.Version] {
				continue
			}
			if err := r.apply(ctx, conn, m, true); err != nil {
				return err
			}
			done++
			if steps > 0 && done >= steps {
				break
			}
		}
		return nil
	})
}

// Down откатывает последние steps миграций; steps<=0 трактуется как 1.
func (r *Runner) Down(ctx context.Context, steps int) error {
	if steps <= 0 {
		steps = 1
	}

	return r.withConn(ctx, func(conn *sql.Conn) error {
		known := make(map[int64]Migration, len(r.migrations))
		for _, m := range r.migrations {
			known[m.Version] = m
		}

		versions, err := r.latestVersions(ctx, conn, steps)
		if err != nil {
			return err
		}
		for _, version := range versions {
			m, ok := known[version]
			if !ok {
				return fmt.Errorf("cannot rollback unknown migration version %d", version)
			}
			if err := r.apply(ctx, conn, m, false); err != nil {
				return err
			}
		}
		return nil
	})
}

// Status возвращает последнюю применённую версию и количество применённых миграций.
func (r *Runner) Status(ctx context.Context) (int64, int, error) {
	if _, err := r.db.ExecContext(ctx, r.dialect.TableDDL); err != nil {
		return 0, 0, fmt.Errorf("ensure migration table: %w", err)
	}

	var (
		version int64
		count   int
	)
	if err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(version), 0), COUNT(*)
		FROM schema_migrations
	`).Scan(&version, &count); err != nil {
		return 0, 0, fmt.Errorf("query migration status: %w", err)
	}

	return version, count, nil
}

func (r *Runner) withConn(ctx context.Context, fn func(conn *sql.Conn) error) error {
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire db connection: %w", err)
	}
	defer conn.Close()

	if r.dialect.Lock != nil {
		unlock, err := r.dialect.Lock(ctx, conn)
		if err != nil {
			return fmt.Errorf("acquire migration lock: %w", err)
		}
		defer unlock()
	}

	if _, err := conn.ExecContext(ctx, r.dialect.TableDDL); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}

	return fn(conn)
}

func (r *Runner) apply(ctx context.Context, conn *sql.Conn, m Migration, up bool) error {
	direction, body := "up", m.UpSQL
	if !up {
		direction, body = "down", m.DownSQL
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration tx (%s %d): %w", direction, m.Version, err)
	}

	if _, err := tx.ExecContext(ctx, body); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("execute %s migration %d_%s: %w", direction, m.Version, m.Name, err)
	}

	if up {
		_, err = tx.ExecContext(ctx, r.dialect.Record, m.Version, m.Name)
	} else {
		_, err = tx.ExecContext(ctx, r.dialect.Forget, m.Version)
	}
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("track %s migration %d_%s: %w", direction, m.Version, m.Name, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s migration %d_%s: %w", direction, m.Version, m.Name, err)
	}
	return nil
}

func (r *Runner) appliedVersions(ctx context.Context, conn *sql.Conn) (map[int64]bool, error) {
	rows, err := conn.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("query applied migrations: %w", err)
	}
	defer rows.Close()

	result := make(map[int64]bool)
	for rows.Next() {
		var version int64
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("scan applied migration version: %w", err)
		}
		result[version] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applied migrations: %w", err)
	}
	return result, nil
}

func (r *Runner) latestVersions(ctx context.Context, conn *sql.Conn, limit int) ([]int64, error) {
	rows, err := conn.QueryContext(ctx, r.dialect.LatestN, limit)
	if err != nil {
		return nil, fmt.Errorf("query applied migrations desc: %w", err)
	}
	defer rows.Close()

	versions := make([]int64, 0, limit)
	for rows.Next() {
		var version int64
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("scan applied migration desc: %w", err)
		}
		versions = append(versions, version)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applied migrations desc: %w", err)
	}
	return versions, nil
}
