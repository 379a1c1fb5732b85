package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/iliyamo/film-review/internal/database"
)

// Querier is satisfied by *sql.DB and *sql.Tx.  Listing reads accept it so
// that the count and the window can run in the same snapshot.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// store carries the handle and dialect shared by the film and review
// repositories.
type store struct {
	db      *sql.DB
	dialect database.Dialect
}

// withTx runs fn inside a transaction.  The transaction is committed when fn
// returns nil and rolled back otherwise, so a guard failure halfway through
// leaves no partial writes behind.
func (s store) withTx(ctx context.Context, opts *sql.TxOptions, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Snapshot runs fn inside a read-only transaction so that several reads
// observe the same state.
func (s store) Snapshot(ctx context.Context, fn func(q Querier) error) error {
	return s.withTx(ctx, s.dialect.ReadTxOptions(), func(tx *sql.Tx) error { return fn(tx) })
}

// setList accumulates "column = ?" assignments for partial updates.  Column
// names are compile-time constants; only values travel as arguments.
type setList struct {
	cols []string
	args []any
}

func (s *setList) set(col string, v any) {
	s.cols = append(s.cols, col+" = ?")
	s.args = append(s.args, v)
}

func (s *setList) String() string { return strings.Join(s.cols, ", ") }

// nullable converts an optional value into a driver argument.
func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func stringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func boolPtr(v sql.NullBool) *bool {
	if !v.Valid {
		return nil
	}
	b := v.Bool
	return &b
}

// placeholders returns "?, ?, ?" for n arguments.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}
