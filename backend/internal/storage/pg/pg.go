// Package pg stores threads in PostgreSQL, one row per thread with the
// replies embedded in a JSONB array. Every mutation is a single UPDATE or
// DELETE statement, so the database provides the per-document atomicity.
package pg

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/itchan-dev/boardstore/backend/internal/storage"
	"github.com/itchan-dev/boardstore/shared/config"
	"github.com/itchan-dev/boardstore/shared/logger"
	_ "github.com/lib/pq" // Registers the PostgreSQL driver
)

//go:embed migrations/init.sql
var schema string

var _ storage.Storage = (*Storage)(nil)

type Storage struct {
	db *sql.DB
	sq squirrel.StatementBuilderType
}

// ConnectionConfig holds database connection pool settings.
type ConnectionConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		MaxOpenConns:    25,
		MaxIdleConns:    10,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: 1 * time.Minute,
	}
}

// New connects, applies the schema and returns a ready storage.
func New(ctx context.Context, cfg config.Pg) (*Storage, error) {
	logger.Log.Info("connecting to postgres", "host", cfg.Host, "dbname", cfg.Dbname)
	db, err := Connect(ctx, cfg.ConnString(), DefaultConnectionConfig())
	if err != nil {
		return nil, err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	logger.Log.Info("successfully connected to postgres")

	return &Storage{
		db: db,
		sq: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).RunWith(db),
	}, nil
}

// Connect opens a pool and verifies it with a ping.
func Connect(ctx context.Context, connStr string, connCfg ConnectionConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(connCfg.MaxOpenConns)
	db.SetMaxIdleConns(connCfg.MaxIdleConns)
	db.SetConnMaxLifetime(connCfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(connCfg.ConnMaxIdleTime)

	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Storage) Cleanup() error {
	return s.db.Close()
}

// validId keeps malformed ids away from the uuid column, where they would
// surface as a query error instead of a missing document.
func validId(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
