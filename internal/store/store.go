package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier runs statements against a pool or an open transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DB is the subset of *pgxpool.Pool used by Store.
type DB interface {
	Querier
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store reads and writes the company, article and price tables.
type Store struct {
	db        DB
	logger    *slog.Logger
	chunkSize int
}

// Option configures a Store.
type Option func(*Store)

// WithChunkSize sets the number of price rows per INSERT statement.
func WithChunkSize(n int) Option {
	return func(s *Store) {
		if n > 0 && n <= maxChunkSize {
			s.chunkSize = n
		}
	}
}

// New creates a Store on db.
func New(db DB, logger *slog.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		db:        db,
		logger:    logger,
		chunkSize: defaultChunkSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Tx is an open write transaction handed to WithTx callbacks.
type Tx struct {
	tx pgx.Tx
}

// WithTx runs fn inside a transaction. The transaction is committed when fn
// returns nil and rolled back otherwise.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Tx) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			s.logger.Warn("rollback failed", "error", rbErr)
		}
	}()

	if err := fn(&Tx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	committed = true
	return nil
}

// ResolveCompany returns the company_id for symbol. A missing row yields a
// *NotFoundError.
func (s *Store) ResolveCompany(ctx context.Context, symbol string) (int64, error) {
	return resolveCompany(ctx, s.db, symbol)
}

func resolveCompany(ctx context.Context, q Querier, symbol string) (int64, error) {
	var id int64
	err := q.QueryRow(ctx, sqlResolveCompany, symbol).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, &NotFoundError{Symbol: symbol}
	}
	if err != nil {
		return 0, fmt.Errorf("resolve company %s: %w", symbol, err)
	}
	return id, nil
}
