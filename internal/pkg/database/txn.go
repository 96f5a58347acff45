package database

import (
	"context"
	"database/sql"
	"fmt"

	"gofulfil/internal/pkg/logger"
)

// Querier is the subset of *sql.DB and *sql.Tx the repositories use.
// Repositories query through it so the same code runs inside or outside
// a transaction scope.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type txKey struct{}

// txScope carries the open transaction and the after-commit hook list.
type txScope struct {
	tx    *sql.Tx
	hooks []func()
}

// Conn returns the transaction bound to ctx when one is open, otherwise db.
func Conn(ctx context.Context, db *sql.DB) Querier {
	if scope, ok := ctx.Value(txKey{}).(*txScope); ok {
		return scope.tx
	}
	return db
}

// TxManager owns the validate-then-mutate transaction scope and the
// post-commit hook discipline: hooks registered during a transaction run
// exactly once, only after a successful commit. Hooks of a rolled-back
// transaction are simply never invoked.
type TxManager struct {
	db     *sql.DB
	logger logger.Logger
}

// NewTxManager creates a new transaction manager over the given pool.
func NewTxManager(db *sql.DB, log logger.Logger) *TxManager {
	return &TxManager{db: db, logger: log}
}

// WithinTransaction runs fn inside a single transaction. The count queries
// issued by fn and the subsequent writes see a consistent snapshot. When a
// transaction is already open on ctx, fn joins it instead of nesting.
func (m *TxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*txScope); ok {
		return fn(ctx)
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	scope := &txScope{tx: tx}
	txCtx := context.WithValue(ctx, txKey{}, scope)

	if err := fn(txCtx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			m.logger.Error("Failed to roll back transaction.", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	// The transaction is committed; nothing the hooks do can undo it.
	m.drainHooks(scope)
	return nil
}

// AfterCommit registers an action to run after the transaction on ctx commits.
// Returns an error when called outside a transaction scope.
func (m *TxManager) AfterCommit(ctx context.Context, action func()) error {
	scope, ok := ctx.Value(txKey{}).(*txScope)
	if !ok {
		return fmt.Errorf("AfterCommit called outside a transaction scope")
	}
	scope.hooks = append(scope.hooks, action)
	return nil
}

// drainHooks runs the registered hooks in order. A panicking hook cannot
// affect the committed transaction or the remaining hooks.
func (m *TxManager) drainHooks(scope *txScope) {
	for _, hook := range scope.hooks {
		func() {
			defer func() {
				if r := recover(); r != nil {
					m.logger.Error("Post-commit hook panicked.", fmt.Errorf("panic: %v", r))
				}
			}()
			hook()
		}()
	}
}
