package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverSQLite   = "sqlite3"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

var ErrUnsupportedDriver = errors.New("unsupported history driver")

// Entry is one evaluated REPL input.
type Entry struct {
	ID        int64
	Session   string
	Input     string
	Result    string
	IsError   bool
	CreatedAt time.Time
}

var schemas = map[string]string{
	DriverSQLite: `CREATE TABLE IF NOT EXISTS history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session TEXT NOT NULL,
	input TEXT NOT NULL,
	result TEXT NOT NULL,
	is_error BOOLEAN NOT NULL,
	created_at TIMESTAMP NOT NULL
)`,
	DriverMySQL: `CREATE TABLE IF NOT EXISTS history (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	session VARCHAR(64) NOT NULL,
	input TEXT NOT NULL,
	result TEXT NOT NULL,
	is_error BOOLEAN NOT NULL,
	created_at DATETIME(6) NOT NULL
)`,
	DriverPostgres: `CREATE TABLE IF NOT EXISTS history (
	id BIGSERIAL PRIMARY KEY,
	session TEXT NOT NULL,
	input TEXT NOT NULL,
	result TEXT NOT NULL,
	is_error BOOLEAN NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
)`,
}

// Store persists REPL entries. MySQL DSNs need parseTime=true.
type Store struct {
	db     *sql.DB
	driver string
}

func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	schema, ok := schemas[driver]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create history table: %w", err)
	}

	slog.Debug("history store opened", slog.String("driver", driver))
	return &Store{db: db, driver: driver}, nil
}

// rebind rewrites ? placeholders into the driver's form.
func rebind(driver, query string) string {
	if driver != DriverPostgres {
		return query
	}

	var b strings.Builder
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// Record stores e and returns it with ID and CreatedAt filled in.
func (s *Store) Record(ctx context.Context, e Entry) (Entry, error) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	query := rebind(s.driver,
		"INSERT INTO history (session, input, result, is_error, created_at) VALUES (?, ?, ?, ?, ?)")
	args := []interface{}{e.Session, e.Input, e.Result, e.IsError, e.CreatedAt}

	// lib/pq does not implement LastInsertId.
	if s.driver == DriverPostgres {
		if err := s.db.QueryRowContext(ctx, query+" RETURNING id", args...).Scan(&e.ID); err != nil {
			return e, fmt.Errorf("record history: %w", err)
		}
		return e, nil
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return e, fmt.Errorf("record history: %w", err)
	}
	e.ID, err = result.LastInsertId()
	if err != nil {
		return e, fmt.Errorf("record history: %w", err)
	}
	return e, nil
}

// Recent returns up to n of the session's latest entries, oldest first.
func (s *Store) Recent(ctx context.Context, session string, n int) ([]Entry, error) {
	if n <= 0 {
		return nil, nil
	}

	query := rebind(s.driver,
		"SELECT id, session, input, result, is_error, created_at FROM history WHERE session = ? ORDER BY id DESC LIMIT ?")

	rows, err := s.db.QueryContext(ctx, query, session, n)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Session, &e.Input, &e.Result, &e.IsError, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}

	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
