package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var embedMigrations embed.FS

// Dialect selects the migration set and SQL flavour.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite3"
	DialectPostgres Dialect = "postgres"
)

func (d Dialect) dir() string {
	if d == DialectPostgres {
		return "migrations/postgres"
	}
	return "migrations/sqlite"
}

// goose keeps its configuration in package globals.
var gooseMu sync.Mutex

// slogGooseLogger routes goose output through slog.
type slogGooseLogger struct{}

func (slogGooseLogger) Printf(format string, v ...any) {
	slog.Info("migration", "msg", fmt.Sprintf(format, v...))
}

func (slogGooseLogger) Fatalf(format string, v ...any) {
	slog.Error("migration_fatal", "msg", fmt.Sprintf(format, v...))
	os.Exit(1)
}

func withGoose(d Dialect, fn func() error) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()
	goose.SetLogger(slogGooseLogger{})
	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect(string(d)); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return fn()
}

// OpenSQLite opens the local database with WAL mode, foreign keys and a busy timeout.
// PRE: path is a file path or ":memory:"
// POST: returns a pinged connection pool
func OpenSQLite(path string) (*sql.DB, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if path == ":memory:" {
		// each connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}
	return db, nil
}

// OpenPostgres connects to a hosted Postgres database.
// PRE: dsn is a lib/pq connection string or URL
// POST: returns a pinged sqlx handle
func OpenPostgres(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	return db, nil
}

// MigrateDB applies all pending migrations for the dialect.
// PRE: db is a valid connection
// POST: schema is at LatestSchemaVersion
func MigrateDB(db *sql.DB, d Dialect) error {
	return withGoose(d, func() error {
		if err := goose.Up(db, d.dir()); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
		return nil
	})
}

// SchemaVersion returns the applied migration version.
func SchemaVersion(db *sql.DB, d Dialect) (int64, error) {
	var version int64
	err := withGoose(d, func() error {
		v, err := goose.GetDBVersion(db)
		version = v
		return err
	})
	return version, err
}

// LatestSchemaVersion returns the highest embedded migration version.
func LatestSchemaVersion(d Dialect) int64 {
	var version int64
	_ = withGoose(d, func() error {
		migrations, err := goose.CollectMigrations(d.dir(), 0, goose.MaxVersion)
		if err != nil {
			return err
		}
		last, err := migrations.Last()
		if err != nil {
			return err
		}
		version = last.Version
		return nil
	})
	return version
}

// IsUniqueViolation reports whether err is a uniqueness constraint failure
// from either supported driver.
func IsUniqueViolation(err error) bool {
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
