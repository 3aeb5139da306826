package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Pratham266/cassure-go/internal/models"
)

// ErrNotFound indicates the requested row does not exist or belongs to a
// different principal.
var ErrNotFound = errors.New("storage: not found")

// PoolConfig encapsulates PostgreSQL connectivity.
type PoolConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// AuditStore persists per-run audit outcomes. A failed write must never
// fail the request it records; callers log and move on.
type AuditStore interface {
	RecordOutcome(ctx context.Context, userID string, outcome models.Outcome) error
}

// StatementStore manages statement audit rows across their lifecycle.
type StatementStore interface {
	AuditStore
	CreateStatement(ctx context.Context, st models.Statement) error
	UpdateOutcome(ctx context.Context, id string, outcome models.Outcome) error
	ListStatements(ctx context.Context, userID string, page, limit int) ([]models.Statement, int, error)
	GetStatement(ctx context.Context, userID, id string) (models.Statement, error)
	DeleteStatement(ctx context.Context, userID, id string) error
}

// TransactionStore manages normalized transaction rows.
type TransactionStore interface {
	InsertTransactions(ctx context.Context, statementID, userID string, txns []models.Txn) error
	ListTransactions(ctx context.Context, q TransactionQuery) ([]models.TransactionRow, int, Summary, error)
	ExportTransactions(ctx context.Context, userID, statementID string) ([]models.TransactionRow, error)
}

// Store is the PostgreSQL-backed implementation of every store interface.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wraps an established pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the underlying pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// NewPool configures a PostgreSQL connection pool from runtime settings.
func NewPool(ctx context.Context, cfg PoolConfig) (*pgxpool.Pool, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database.dsn is required")
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse database dsn: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		poolConfig.MinConns = int32(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.ConnMaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	return pool, nil
}
