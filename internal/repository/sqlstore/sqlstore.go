// Package sqlstore implements the repository interfaces on database/sql.
//
// Two dialects are supported: SQLite (modernc.org/sqlite, the default, pure Go)
// and PostgreSQL (pgx's database/sql driver). Queries are written once with
// "?" placeholders and rebound to "$1, $2, ..." for PostgreSQL.
package sqlstore

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/sakif/portfolio/internal/apperror"
)

// Dialect selects the SQL flavour.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

// ParseDialect accepts the DB_DRIVER spellings used in configuration.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sqlite", "sqlite3":
		return SQLite, nil
	case "postgres", "postgresql", "pgx":
		return Postgres, nil
	default:
		return "", fmt.Errorf("sqlstore: unknown driver %q (want sqlite or postgres)", s)
	}
}

func (d Dialect) driverName() string {
	if d == Postgres {
		return "pgx"
	}
	return "sqlite"
}

// DB owns the connection pool. It is safe for concurrent use.
type DB struct {
	conn    *sql.DB
	dialect Dialect
}

// Open connects, applies per-dialect settings and runs migrations.
func Open(ctx context.Context, dialect Dialect, dsn string) (*DB, error) {
	conn, err := sql.Open(dialect.driverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: opening database: %w", err)
	}

	if dialect == SQLite {
		// An in-memory database lives inside a single connection, and SQLite
		// allows one writer at a time anyway.
		conn.SetMaxOpenConns(1)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlstore: pinging database: %w", err)
	}

	if dialect == SQLite {
		for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA foreign_keys=ON", "PRAGMA busy_timeout=5000"} {
			if _, err := conn.ExecContext(ctx, pragma); err != nil {
				conn.Close()
				return nil, fmt.Errorf("sqlstore: %s: %w", pragma, err)
			}
		}
	}

	db := &DB{conn: conn, dialect: dialect}

	if err := db.migrate(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlstore: running migrations: %w", err)
	}

	return db, nil
}

// EnsureDir creates the parent directory of a SQLite database file.
// In-memory and "file:" URIs are left alone.
func EnsureDir(path string) error {
	if path == "" || path == ":memory:" || strings.HasPrefix(path, "file:") {
		return nil
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("sqlstore: creating database directory %s: %w", dir, err)
	}
	return nil
}

// OpenSQLite is shorthand used by tests and the CLI.
func OpenSQLite(path string) (*DB, error) {
	return Open(context.Background(), SQLite, path)
}

// Close releases the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Dialect reports which database the pool talks to.
func (db *DB) Dialect() Dialect { return db.dialect }

// Ping checks the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.conn.PingContext(ctx); err != nil {
		return classify("pinging database", err)
	}
	return nil
}

// q rebinds a "?"-placeholder query for the active dialect.
func (db *DB) q(query string) string {
	if db.dialect != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
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

// withTx runs fn in a transaction, committing on nil and rolling back otherwise.
func (db *DB) withTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return classify(op, err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return classify(op, err)
	}
	return nil
}

// count runs a SELECT COUNT(*) on a table name that is a compile-time constant.
func (db *DB) count(ctx context.Context, table string) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, classify("counting "+table, err)
	}
	return n, nil
}

// checkAffected converts "zero rows touched" into a NotFound error.
func checkAffected(res sql.Result, resource, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlstore: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound(resource, id)
	}
	return nil
}

// classify wraps a driver error, promoting connectivity failures to
// apperror.Unavailable and unique violations to apperror.Conflict. Errors
// that are already AppErrors pass through untouched.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if isUnavailable(err) {
		return apperror.Unavailable(op, err)
	}
	return fmt.Errorf("sqlstore: %s: %w", op, err)
}

func isUnavailable(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}
	var pgErr *pgconn.PgError
	// Class 08: connection exception; 57P01-57P03: server shutting down.
	if errors.As(err, &pgErr) && (strings.HasPrefix(pgErr.Code, "08") || strings.HasPrefix(pgErr.Code, "57P0")) {
		return true
	}
	return false
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// now is the timestamp written to created_at/updated_at columns. UTC keeps the
// SQLite text encoding sortable.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// encodeList stores an ordered string list as a JSON array.
func encodeList(items []string) string {
	if items == nil {
		items = []string{}
	}
	b, _ := json.Marshal(items)
	return string(b)
}

func decodeList(raw string) ([]string, error) {
	items := []string{}
	if strings.TrimSpace(raw) == "" {
		return items, nil
	}
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("sqlstore: decoding list column: %w", err)
	}
	return items, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}
