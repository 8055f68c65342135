// Package sqldb реализует серверные хранилища поверх database/sql.
// Один набор запросов обслуживает два диалекта: sqlite для разработки и
// тестов, postgres для продакшена. Запросы пишутся с placeholder'ами `?`
// и перед выполнением ребайндятся в `$n` для postgres; все метки времени
// хранятся как unix-секунды (INTEGER/BIGINT), чтобы сравнение
// last_update_ts в условных апдейтах было точным в обоих диалектах.
package sqldb

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver (database/sql)
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // SQLite driver
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var embedMigrations embed.FS

// Dialect выбирает SQL-диалект хранилища.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// Storage represents SQL storage implementation
type Storage struct {
	db      *sql.DB
	dialect Dialect
}

// New creates a new SQL storage instance.
// For sqlite dsn is the database file path (":memory:" for tests),
// for postgres — a connection string.
func New(ctx context.Context, dialect Dialect, dsn string) (*Storage, error) {
	var driver string
	switch dialect {
	case DialectSQLite:
		driver = "sqlite"
	case DialectPostgres:
		driver = "pgx"
	default:
		return nil, fmt.Errorf("unknown dialect %q", dialect)
	}

	// Открываем соединение с БД
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Проверяем соединение
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	switch dialect {
	case DialectSQLite:
		// SQLite с WAL mode может поддерживать несколько читателей, но только одного писателя
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)

		// Включаем WAL mode и другие оптимизации
		pragmas := []string{
			"PRAGMA journal_mode = WAL;",
			"PRAGMA synchronous = NORMAL;",
			"PRAGMA foreign_keys = ON;",
			"PRAGMA busy_timeout = 5000;",
		}
		for _, pragma := range pragmas {
			if _, err := db.ExecContext(ctx, pragma); err != nil {
				db.Close()
				return nil, fmt.Errorf("failed to set pragma: %w", err)
			}
		}
	case DialectPostgres:
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	storage := &Storage{db: db, dialect: dialect}

	// Запускаем миграции
	if err := storage.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return storage, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

// Ping проверяет доступность базы (health check)
func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// runMigrations выполняет миграции из embedded FS для текущего диалекта
func (s *Storage) runMigrations() error {
	gooseDialect, dir := "sqlite3", "migrations/sqlite"
	if s.dialect == DialectPostgres {
		gooseDialect, dir = "postgres", "migrations/postgres"
	}

	if err := goose.SetDialect(gooseDialect); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}

	// Устанавливаем источник миграций из embedded FS
	goose.SetBaseFS(embedMigrations)

	// Запускаем миграции
	if err := goose.Up(s.db, dir); err != nil {
		return fmt.Errorf("goose up failed: %w", err)
	}

	return nil
}

// DB returns the underlying database connection for testing purposes
func (s *Storage) DB() *sql.DB {
	return s.db
}

// rebind переводит `?`-placeholder'ы в `$n` для postgres.
// Запросы в пакете не содержат литеральных знаков вопроса.
func (s *Storage) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// isUniqueViolation распознаёт нарушение UNIQUE-ограничения в обоих
// диалектах: SQLSTATE 23505 у postgres, текст ошибки у sqlite.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func unixToTime(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func intToBool(v int) bool {
	return v != 0
}
