package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"simplenotes/config"
	"simplenotes/pkg/logger"

	_ "github.com/lib/pq"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// ErrBackendUnavailable means the durable store cannot be used for this process.
var ErrBackendUnavailable = errors.New("durable backend unavailable")

// Dialect names the SQL flavour spoken by a connection.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// driverName maps a dialect to the database/sql driver registered for it.
func (d Dialect) driverName() string {
	if d == SQLite {
		return "sqlite3"
	}
	return "postgres"
}

// pinger is the part of *sql.DB that Connect waits on.
type pinger interface {
	Ping() error
}

// Connect opens the durable database described by cfg. Any failure to reach it is
// reported as ErrBackendUnavailable so the caller can fall back to memory.
func Connect(cfg config.Database) (*sql.DB, Dialect, error) {
	var dialect Dialect
	switch cfg.Driver {
	case string(Postgres), "postgresql":
		dialect = Postgres
	case string(SQLite), "sqlite3":
		dialect = SQLite
	case "":
		return nil, "", fmt.Errorf("%w: no DB_DRIVER configured", ErrBackendUnavailable)
	default:
		return nil, "", fmt.Errorf("%w: unsupported driver %q", ErrBackendUnavailable, cfg.Driver)
	}
	if cfg.URL == "" {
		return nil, "", fmt.Errorf("%w: no connection URL for %s", ErrBackendUnavailable, dialect)
	}

	db, err := sql.Open(dialect.driverName(), cfg.URL)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	if dialect == SQLite {
		// A single writer avoids SQLITE_BUSY between pooled connections.
		db.SetMaxOpenConns(1)
	}

	if err := waitForPing(db, cfg.Retries, cfg.RetryDelay); err != nil {
		db.Close()
		return nil, "", fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	logger.Sugar.Infof("Successfully connected to the %s database", dialect)
	return db, dialect, nil
}

// waitForPing retries a few times in case of temporary DNS/network blips.
func waitForPing(db pinger, retries int, delay time.Duration) error {
	if retries < 1 {
		retries = 1
	}
	var err error
	for i := 0; i < retries; i++ {
		if err = db.Ping(); err == nil {
			return nil
		}
		if i < retries-1 {
			logger.Sugar.Infof("Database connection failed, retrying in %s... (%v)", delay, err)
			time.Sleep(delay)
		}
	}
	return err
}
