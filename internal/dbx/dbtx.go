// Package dbx provides the small DB abstractions shared by repositories:
// a minimal interface (DBTX) implemented by both *sql.DB and *sql.Tx,
// and a Coordinator that runs functions inside a unit of work.
package dbx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/matchkeeper/internal/common"
	"github.com/dmitrijs2005/matchkeeper/internal/logging"
)

// DBTX is the subset of database/sql used by our repos.
// Both *sql.DB and *sql.Tx satisfy this interface.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Outcome is how a unit of work ended.
type Outcome string

const (
	OutcomeCommitted  Outcome = "committed"
	OutcomeRolledBack Outcome = "rolled_back"
)

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithObserver registers fn to be called once per finished unit of work.
func WithObserver(fn func(Outcome)) Option {
	return func(c *Coordinator) { c.observe = fn }
}

// Coordinator opens units of work on a dedicated session (*sql.Conn) taken
// from the pool. The session is returned to the pool exactly once, whatever
// happens inside the callback.
type Coordinator struct {
	db      *sql.DB
	logger  logging.Logger
	observe func(Outcome)
}

func NewCoordinator(db *sql.DB, logger logging.Logger, opts ...Option) *Coordinator {
	if logger == nil {
		logger = logging.Nop()
	}
	c := &Coordinator{db: db, logger: logger}
	for _, o := range opts {
		o(c)
	}
	return c
}

type txKey struct{}

// TxFromContext returns the transaction of the unit of work active in ctx.
func TxFromContext(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(*sql.Tx)
	return tx, ok
}

// WithTx acquires a session, begins a transaction and runs fn with it.
// It commits when fn returns nil and rolls back when fn returns an error or
// panics. Panics are rethrown after the rollback.
//
// Errors returned by fn are passed through unchanged. Failures of the store
// itself (acquire, begin, commit) are wrapped with common.ErrTransactionFailed.
//
// A WithTx call on a context that already carries a unit of work joins it:
// fn runs on the outer transaction and the outer call decides the outcome.
//
// Typical use:
//
//	err := coord.WithTx(ctx, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    _, err := tx.ExecContext(ctx, "UPDATE ...")
//	    return err
//	})
func (c *Coordinator) WithTx(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	if tx, ok := TxFromContext(ctx); ok {
		return fn(ctx, tx)
	}

	conn, err := c.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("%w: acquire session: %v", common.ErrTransactionFailed, err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil && !errors.Is(cerr, sql.ErrConnDone) {
			c.logger.Warn(ctx, "release session failed", "error", cerr)
		}
	}()

	tx, err := conn.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", common.ErrTransactionFailed, err)
	}

	defer func() {
		if p := recover(); p != nil {
			c.rollback(ctx, tx)
			panic(p)
		}
		if err != nil {
			c.rollback(ctx, tx)
			return
		}
		if cerr := tx.Commit(); cerr != nil {
			c.report(OutcomeRolledBack)
			err = fmt.Errorf("%w: commit: %v", common.ErrTransactionFailed, cerr)
			return
		}
		c.report(OutcomeCommitted)
	}()

	err = fn(context.WithValue(ctx, txKey{}, tx), tx)
	return err
}

func (c *Coordinator) rollback(ctx context.Context, tx *sql.Tx) {
	c.report(OutcomeRolledBack)
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		c.logger.Error(ctx, "rollback failed", "error", err)
	}
}

func (c *Coordinator) report(o Outcome) {
	if c.observe != nil {
		c.observe(o)
	}
}
