package service

import (
	"context"

	"billing-engine/internal/core/ports"

	"github.com/jackc/pgx/v5"
)

// fakeTx embeds the pgx.Tx interface with a nil implementation and
// overrides only the two methods the scope helper actually calls
// (Commit/Rollback); every repository call in these tests goes through
// a hand-rolled fake repository that ignores the tx argument entirely,
// so no other pgx.Tx method is ever reached.
type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (f *fakeTx) Commit(ctx context.Context) error {
	f.committed = true
	return nil
}

func (f *fakeTx) Rollback(ctx context.Context) error {
	f.rolledBack = true
	return nil
}

// fakeTransactor implements ports.DBTransactor, handing out a fresh
// fakeTx per Begin so tests can assert commit/rollback afterward.
type fakeTransactor struct {
	lastTx   *fakeTx
	beginErr error
}

func (f *fakeTransactor) BeginSerializable(ctx context.Context) (pgx.Tx, error) {
	if f.beginErr != nil {
		return nil, f.beginErr
	}
	f.lastTx = &fakeTx{}
	return f.lastTx, nil
}

var _ ports.DBTransactor = (*fakeTransactor)(nil)
