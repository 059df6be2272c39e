package postgres

import (
	"context"
	"testing"
	"time"

	"billing-engine/internal/core/domain"
	"billing-engine/pkg/money"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	now := time.Now()
	txn := &domain.Transaction{
		Token:           uuid.New(),
		Kind:            domain.TransactionKindExternal,
		Amount:          money.FromInt64(10),
		EffectiveAmount: money.FromInt64(10),
		CurrencyID:      1,
		Status:          domain.TransactionStatusPending,
		InvoiceID:       7,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	mock.ExpectQuery("INSERT INTO transactions").
		WithArgs(txn.Token, txn.Kind, txn.Amount.String(), txn.EffectiveAmount.String(), txn.CurrencyID,
			txn.Status, txn.InvoiceID, txn.FromWalletID, txn.CreatedAt, txn.UpdatedAt).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(42)))

	repo := NewTransactionRepo(mock)
	err = repo.Create(context.Background(), tx, txn)
	require.NoError(t, err)
	assert.Equal(t, int64(42), txn.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT " + transactionColumns + " FROM transactions WHERE id").
		WithArgs(int64(99)).
		WillReturnError(pgx.ErrNoRows)

	repo := NewTransactionRepo(mock)
	txn, err := repo.GetByID(context.Background(), 99)
	require.NoError(t, err)
	assert.Nil(t, txn)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_GetByToken_Found(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now()
	token := uuid.New()
	rows := pgxmock.NewRows([]string{"id", "token", "kind", "amount", "effective_amount", "currency_id", "status", "invoice_id", "from_wallet_id", "created_at", "updated_at"}).
		AddRow(int64(5), token, domain.TransactionKindExternal, "10.000", "10.000", int64(1), domain.TransactionStatusPending, int64(7), (*int64)(nil), now, now)
	mock.ExpectQuery("SELECT " + transactionColumns + " FROM transactions WHERE token").
		WithArgs(token.String()).
		WillReturnRows(rows)

	repo := NewTransactionRepo(mock)
	txn, err := repo.GetByToken(context.Background(), token.String())
	require.NoError(t, err)
	require.NotNil(t, txn)
	assert.Equal(t, int64(5), txn.ID)
	assert.Equal(t, token, txn.Token)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_UpdateStatus_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	mock.ExpectExec("UPDATE transactions SET status").
		WithArgs(domain.TransactionStatusSuccess, int64(3)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	repo := NewTransactionRepo(mock)
	err = repo.UpdateStatus(context.Background(), tx, 3, domain.TransactionStatusSuccess)
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_ListSuccessfulForUpdate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	now := time.Now()
	rows := pgxmock.NewRows([]string{"id", "token", "kind", "amount", "effective_amount", "currency_id", "status", "invoice_id", "from_wallet_id", "created_at", "updated_at"}).
		AddRow(int64(1), uuid.New(), domain.TransactionKindExternal, "5.000", "5.000", int64(1), domain.TransactionStatusSuccess, int64(7), (*int64)(nil), now, now).
		AddRow(int64(2), uuid.New(), domain.TransactionKindExternal, "3.000", "3.000", int64(1), domain.TransactionStatusSuccess, int64(7), (*int64)(nil), now, now)
	mock.ExpectQuery("SELECT " + transactionColumns + " FROM transactions").
		WithArgs(int64(7)).
		WillReturnRows(rows)

	repo := NewTransactionRepo(mock)
	txns, err := repo.ListSuccessfulForUpdate(context.Background(), tx, 7)
	require.NoError(t, err)
	require.Len(t, txns, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_GetByIDForUpdate_Found(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	now := time.Now()
	rows := pgxmock.NewRows([]string{"id", "token", "kind", "amount", "effective_amount", "currency_id", "status", "invoice_id", "from_wallet_id", "created_at", "updated_at"}).
		AddRow(int64(4), uuid.New(), domain.TransactionKindExternal, "5.000", "5.000", int64(1), domain.TransactionStatusPending, int64(7), (*int64)(nil), now, now)
	mock.ExpectQuery("SELECT " + transactionColumns + " FROM transactions WHERE id").
		WithArgs(int64(4)).
		WillReturnRows(rows)

	repo := NewTransactionRepo(mock)
	txn, err := repo.GetByIDForUpdate(context.Background(), tx, 4)
	require.NoError(t, err)
	require.NotNil(t, txn)
	assert.Equal(t, int64(4), txn.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_GetByIDForUpdate_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	mock.ExpectQuery("SELECT " + transactionColumns + " FROM transactions WHERE id").
		WithArgs(int64(99)).
		WillReturnError(pgx.ErrNoRows)

	repo := NewTransactionRepo(mock)
	txn, err := repo.GetByIDForUpdate(context.Background(), tx, 99)
	require.NoError(t, err)
	assert.Nil(t, txn)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_ListSuccessfulExcludingForUpdate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	now := time.Now()
	rows := pgxmock.NewRows([]string{"id", "token", "kind", "amount", "effective_amount", "currency_id", "status", "invoice_id", "from_wallet_id", "created_at", "updated_at"}).
		AddRow(int64(1), uuid.New(), domain.TransactionKindExternal, "5.000", "5.000", int64(1), domain.TransactionStatusSuccess, int64(7), (*int64)(nil), now, now)
	mock.ExpectQuery("SELECT " + transactionColumns + " FROM transactions").
		WithArgs(int64(7), int64(2)).
		WillReturnRows(rows)

	repo := NewTransactionRepo(mock)
	txns, err := repo.ListSuccessfulExcludingForUpdate(context.Background(), tx, 7, 2)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, int64(1), txns[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}
