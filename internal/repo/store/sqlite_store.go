package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/mkrupp/geocheckin/internal/infra/logging"
)

//go:embed migrations/*.sql
var migrations embed.FS

// SQLiteStoreConfig holds configuration for the SQLite storage handle.
type SQLiteStoreConfig struct {
	// DatabasePath is the filesystem path to the SQLite database file
	DatabasePath string `env:"DATABASE_PATH" default:"var/storage/geocheckin.db"`

	// BusyTimeout is how long in milliseconds a connection waits on a locked database
	BusyTimeout int64 `env:"BUSY_TIMEOUT" default:"5000"`
}

// SQLiteStore owns the database connection pool. Writes are serialized
// through WithTx, reads use the pool directly.
type SQLiteStore struct {
	db        *sql.DB
	log       logging.Logger
	writeLock *sync.Mutex // go-sqlite does not support concurrent writes
}

var _ Handle = (*SQLiteStore)(nil)

// Open opens the database, applies pending migrations and returns the store.
// The caller must Close it.
func Open(ctx context.Context, cfg SQLiteStoreConfig) (_ *SQLiteStore, err error) {
	log := logging.GetLogger("repo.store.sqlite_store").With(
		logging.Group("db", "path", cfg.DatabasePath),
	)

	if dir := filepath.Dir(cfg.DatabasePath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn(cfg))
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	defer func() {
		if err != nil {
			_ = db.Close()
		}
	}()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}

	db.SetConnMaxLifetime(5 * time.Minute)

	if err := migrate(ctx, db, log); err != nil {
		return nil, fmt.Errorf("migrate db: %w", err)
	}

	return &SQLiteStore{
		db:        db,
		log:       log,
		writeLock: new(sync.Mutex),
	}, nil
}

func dsn(cfg SQLiteStoreConfig) string {
	params := url.Values{}
	params.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", cfg.BusyTimeout))
	params.Add("_pragma", "journal_mode(WAL)")
	params.Add("_pragma", "foreign_keys(1)")

	return "file:" + cfg.DatabasePath + "?" + params.Encode()
}

func migrate(ctx context.Context, db *sql.DB, log logging.Logger) error {
	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("migrations fs: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, db, fsys)
	if err != nil {
		return fmt.Errorf("new provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("up: %w", err)
	}

	for _, r := range results {
		log.DebugContext(ctx, "migration applied",
			"source", r.Source.Path,
			"version", r.Source.Version,
			"duration", r.Duration,
		)
	}

	return nil
}

// DB implements Handle.DB.
func (s *SQLiteStore) DB() DBTX {
	return s.db
}

// WithTx implements Handle.WithTx. Only one write transaction runs at a time.
func (s *SQLiteStore) WithTx(ctx context.Context, fn TxFunc) error {
	s.writeLock.Lock()
	defer s.writeLock.Unlock()

	if err := withTx(ctx, s.db, fn); err != nil {
		return fmt.Errorf("transaction: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}

	s.log.Debug("db closed")

	return nil
}
