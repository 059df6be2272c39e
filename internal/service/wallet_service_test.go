package service

import (
	"context"
	"errors"
	"testing"

	"billing-engine/internal/core/domain"
	"billing-engine/pkg/apperror"
	"billing-engine/pkg/money"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWalletRepository struct {
	byID       map[int64]*domain.Wallet
	nextID     int64
	createErr  error
	listAllErr error
}

func newFakeWalletRepository() *fakeWalletRepository {
	return &fakeWalletRepository{byID: map[int64]*domain.Wallet{}, nextID: 1}
}

func (f *fakeWalletRepository) Create(ctx context.Context, w *domain.Wallet) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	w.ID = f.nextID
	f.byID[w.ID] = w
	return nil
}

func (f *fakeWalletRepository) GetByID(ctx context.Context, id int64) (*domain.Wallet, error) {
	return f.byID[id], nil
}

func (f *fakeWalletRepository) GetByMerchantAndCurrency(ctx context.Context, merchantID, currencyID int64) (*domain.Wallet, error) {
	for _, w := range f.byID {
		if w.MerchantID == merchantID && w.CurrencyID == currencyID {
			return w, nil
		}
	}
	return nil, nil
}

func (f *fakeWalletRepository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.Wallet, error) {
	return f.byID[id], nil
}

func (f *fakeWalletRepository) GetByMerchantAndIDForUpdate(ctx context.Context, tx pgx.Tx, merchantID, walletID int64) (*domain.Wallet, error) {
	w := f.byID[walletID]
	if w == nil || w.MerchantID != merchantID {
		return nil, nil
	}
	return w, nil
}

func (f *fakeWalletRepository) UpdateAmount(ctx context.Context, tx pgx.Tx, walletID int64, amount money.Money) error {
	w := f.byID[walletID]
	if w == nil {
		return errors.New("wallet not found")
	}
	w.Amount = amount
	return nil
}

func (f *fakeWalletRepository) ListByMerchant(ctx context.Context, merchantID int64) ([]domain.Wallet, error) {
	var out []domain.Wallet
	for _, w := range f.byID {
		if w.MerchantID == merchantID {
			out = append(out, *w)
		}
	}
	return out, nil
}

func (f *fakeWalletRepository) ListAll(ctx context.Context) ([]domain.Wallet, error) {
	if f.listAllErr != nil {
		return nil, f.listAllErr
	}
	var out []domain.Wallet
	for _, w := range f.byID {
		out = append(out, *w)
	}
	return out, nil
}

type fakeCurrencyRepository struct {
	byID map[int64]*domain.Currency
}

func (f *fakeCurrencyRepository) List(ctx context.Context) ([]domain.Currency, error) {
	var out []domain.Currency
	for _, c := range f.byID {
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeCurrencyRepository) GetByID(ctx context.Context, id int64) (*domain.Currency, error) {
	return f.byID[id], nil
}

func TestWalletService_CreateWallet_Success(t *testing.T) {
	wallets := newFakeWalletRepository()
	currencies := &fakeCurrencyRepository{byID: map[int64]*domain.Currency{1: {ID: 1, Code: "UAH"}}}
	svc := NewWalletService(wallets, currencies)

	w, err := svc.CreateWallet(context.Background(), 5, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(5), w.MerchantID)
	assert.Equal(t, int64(1), w.CurrencyID)
	assert.True(t, w.Amount.IsZero())
}

func TestWalletService_CreateWallet_CurrencyNotFound(t *testing.T) {
	wallets := newFakeWalletRepository()
	currencies := &fakeCurrencyRepository{byID: map[int64]*domain.Currency{}}
	svc := NewWalletService(wallets, currencies)

	_, err := svc.CreateWallet(context.Background(), 5, 99)
	require.Error(t, err)

	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperror.KindNotFound, appErr.Kind)
}

func TestWalletService_CreateWallet_Duplicate(t *testing.T) {
	wallets := newFakeWalletRepository()
	currencies := &fakeCurrencyRepository{byID: map[int64]*domain.Currency{1: {ID: 1, Code: "UAH"}}}
	svc := NewWalletService(wallets, currencies)

	_, err := svc.CreateWallet(context.Background(), 5, 1)
	require.NoError(t, err)

	_, err = svc.CreateWallet(context.Background(), 5, 1)
	require.Error(t, err)

	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperror.KindValidation, appErr.Kind)
}

func TestWalletService_ListWallets_MerchantScoped(t *testing.T) {
	wallets := newFakeWalletRepository()
	currencies := &fakeCurrencyRepository{byID: map[int64]*domain.Currency{1: {ID: 1}, 2: {ID: 2}}}
	svc := NewWalletService(wallets, currencies)

	_, err := svc.CreateWallet(context.Background(), 5, 1)
	require.NoError(t, err)
	_, err = svc.CreateWallet(context.Background(), 6, 2)
	require.NoError(t, err)

	result, err := svc.ListWallets(context.Background(), 5, false)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, int64(5), result[0].MerchantID)
}

func TestWalletService_ListWallets_StaffSeesAll(t *testing.T) {
	wallets := newFakeWalletRepository()
	currencies := &fakeCurrencyRepository{byID: map[int64]*domain.Currency{1: {ID: 1}, 2: {ID: 2}}}
	svc := NewWalletService(wallets, currencies)

	_, err := svc.CreateWallet(context.Background(), 5, 1)
	require.NoError(t, err)
	_, err = svc.CreateWallet(context.Background(), 6, 2)
	require.NoError(t, err)

	result, err := svc.ListWallets(context.Background(), 0, true)
	require.NoError(t, err)
	assert.Len(t, result, 2)
}
