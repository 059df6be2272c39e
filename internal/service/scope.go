package service

import (
	"context"
	"fmt"

	"billing-engine/internal/core/ports"

	"github.com/jackc/pgx/v5"
)

// scopeKey is the context key under which the current engine scope's
// pgx.Tx is carried. Unexported: callers never construct one directly,
// they only ever get a context back from Begin.
type scopeKey struct{}

// scope is a nestable serializable transaction (spec.md §4.6). The
// outermost engine operation to call Begin owns the transaction handle;
// nested engine operations see an existing scope in ctx and reuse it
// without touching the database. This replaces the original
// ContextVar-based BaseManager.__enter__/__exit__ token-ownership
// pattern with an explicit context value plus an "owns it" flag.
type scope struct {
	tx    pgx.Tx
	owner bool
}

// Begin acquires a scope. If ctx already carries one, it is reused
// (owner=false) and the returned finish function is a no-op. Otherwise a
// new SERIALIZABLE transaction is opened (owner=true) and finish commits
// on nil error, rolls back otherwise.
func Begin(ctx context.Context, transactor ports.DBTransactor) (context.Context, pgx.Tx, func(*error), error) {
	if existing, ok := ctx.Value(scopeKey{}).(*scope); ok {
		return ctx, existing.tx, func(errp *error) {}, nil
	}

	tx, err := transactor.BeginSerializable(ctx)
	if err != nil {
		return ctx, nil, nil, fmt.Errorf("begin scope: %w", err)
	}

	s := &scope{tx: tx, owner: true}
	newCtx := context.WithValue(ctx, scopeKey{}, s)

	finish := func(errp *error) {
		if errp != nil && *errp != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if commitErr := tx.Commit(ctx); commitErr != nil {
			if errp != nil {
				*errp = fmt.Errorf("commit scope: %w", commitErr)
			}
		}
	}
	return newCtx, tx, finish, nil
}
