// Package backend opens the directory stores selected by configuration.
// Local sign-in accounts always live in the SQLite file; centers and programs
// come from SQLite, Postgres or the hosted PostgREST store.
package backend

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"centerdir/internal/adapters/http/perf"
	"centerdir/internal/adapters/storage"
	accountStore "centerdir/internal/adapters/storage/account"
	centerStore "centerdir/internal/adapters/storage/center"
	"centerdir/internal/adapters/storage/postgrest"
	programStore "centerdir/internal/adapters/storage/program"
	"centerdir/internal/config"
)

// ErrReadOnlyBackend is returned when an operation needs direct table writes
// the hosted store does not offer.
var ErrReadOnlyBackend = errors.New("the postgrest backend does not support direct center writes")

// Backend holds the opened stores and the handles that own them.
type Backend struct {
	Name     string
	Centers  centerStore.Store
	Programs programStore.Store
	Accounts accountStore.Store
	// Remote is set for the postgrest backend only.
	Remote *postgrest.Client

	centerWriter centerStore.Writer
	closers      []func() error
}

// CenterWriter returns the center upsert store used by dataset import.
func (b *Backend) CenterWriter() (centerStore.Writer, error) {
	if b.centerWriter == nil {
		return nil, ErrReadOnlyBackend
	}
	return b.centerWriter, nil
}

// Close releases every database handle.
func (b *Backend) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		errs = append(errs, b.closers[i]())
	}
	return errors.Join(errs...)
}

// Open connects the configured backend and applies pending migrations.
// PRE: cfg has been validated by config.Load
// POST: Returns ready stores, or an error after closing anything opened
func Open(cfg config.Config, collector *perf.Collector) (*Backend, error) {
	b := &Backend{Name: cfg.Backend}

	local, err := openSQLite(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	b.closers = append(b.closers, local.Close)
	timed := storage.NewTimedDB(local, collector, cfg.SlowQueryMs)
	b.Accounts = accountStore.NewSQLiteStore(timed)

	switch cfg.Backend {
	case config.BackendSQLite:
		centers := centerStore.NewSQLiteStore(timed)
		b.Centers, b.centerWriter = centers, centers
		b.Programs = programStore.NewSQLiteStore(timed)

	case config.BackendPostgres:
		pg, err := storage.OpenPostgres(cfg.DatabaseURL)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.closers = append(b.closers, pg.Close)
		if err := migrate(pg.DB, storage.DialectPostgres); err != nil {
			b.Close()
			return nil, err
		}
		centers := centerStore.NewPostgresStore(pg)
		b.Centers, b.centerWriter = centers, centers
		b.Programs = programStore.NewPostgresStore(pg)

	case config.BackendPostgREST:
		client, err := postgrest.New(postgrest.Config{
			BaseURL:           cfg.PostgRESTURL,
			AnonKey:           cfg.PostgRESTAnonKey,
			CenterNameColumn:  cfg.PostgRESTCenterNameColumn,
			ProgramNameColumn: cfg.PostgRESTProgramNameColumn,
		})
		if err != nil {
			b.Close()
			return nil, err
		}
		b.Remote = client
		b.Centers = client.Centers()
		b.Programs = client.Programs()

	default:
		b.Close()
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}

	slog.Info("backend_opened", "backend", cfg.Backend, "db_path", cfg.DBPath)
	return b, nil
}

func openSQLite(path string) (*sql.DB, error) {
	db, err := storage.OpenSQLite(path)
	if err != nil {
		return nil, err
	}
	if err := migrate(db, storage.DialectSQLite); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func migrate(db *sql.DB, d storage.Dialect) error {
	if err := storage.MigrateDB(db, d); err != nil {
		return err
	}
	version, err := storage.SchemaVersion(db, d)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	slog.Info("schema_ready", "dialect", string(d), "version", version, "latest", storage.LatestSchemaVersion(d))
	return nil
}
