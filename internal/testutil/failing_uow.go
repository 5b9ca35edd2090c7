package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/alexanderramin/portfolio/internal/db"
)

// FailingUoW injects Err on the FailOn-th write inside a transaction, so
// tests can prove multi-row operations roll back as a whole. Only
// ExecContext calls whose query contains Match are counted (empty Match
// counts every write); reads pass through.
type FailingUoW struct {
	DB     *sql.DB
	FailOn int32
	Match  string
	Err    error

	// Attempts counts the counted writes seen across all transactions.
	Attempts atomic.Int32
}

func (u *FailingUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	tx, err := u.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	var seen atomic.Int32
	wrapped := &failingTx{DBTX: tx, uow: u, seen: &seen}
	if fnErr := fn(ctx, wrapped); fnErr != nil {
		_ = tx.Rollback()
		return fnErr
	}
	return tx.Commit()
}

type failingTx struct {
	db.DBTX
	uow  *FailingUoW
	seen *atomic.Int32
}

func (f *failingTx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if f.uow.Match == "" || strings.Contains(query, f.uow.Match) {
		f.uow.Attempts.Add(1)
		if f.seen.Add(1) == f.uow.FailOn {
			return nil, f.uow.Err
		}
	}
	return f.DBTX.ExecContext(ctx, query, args...)
}
