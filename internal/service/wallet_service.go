package service

import (
	"context"
	"fmt"
	"time"

	"billing-engine/internal/core/domain"
	"billing-engine/internal/core/ports"
	"billing-engine/pkg/apperror"
	"billing-engine/pkg/money"
)

// WalletServiceImpl implements ports.WalletService: merchant wallet
// provisioning (one per currency) and listing.
type WalletServiceImpl struct {
	wallets    ports.WalletRepository
	currencies ports.CurrencyRepository
}

// NewWalletService creates a new WalletServiceImpl.
func NewWalletService(wallets ports.WalletRepository, currencies ports.CurrencyRepository) *WalletServiceImpl {
	return &WalletServiceImpl{wallets: wallets, currencies: currencies}
}

// CreateWallet implements ports.WalletService. Unique on (merchant,
// currency); rejects a duplicate rather than silently returning the
// existing wallet.
func (s *WalletServiceImpl) CreateWallet(ctx context.Context, merchantID, currencyID int64) (*domain.Wallet, error) {
	cur, err := s.currencies.GetByID(ctx, currencyID)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("lookup currency: %w", err))
	}
	if cur == nil {
		return nil, apperror.NotFound("currency")
	}

	existing, err := s.wallets.GetByMerchantAndCurrency(ctx, merchantID, currencyID)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("check existing wallet: %w", err))
	}
	if existing != nil {
		return nil, apperror.Validation("wallet already exists for this currency")
	}

	now := time.Now()
	w := &domain.Wallet{
		MerchantID: merchantID,
		CurrencyID: currencyID,
		Amount:     money.Zero(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.wallets.Create(ctx, w); err != nil {
		return nil, apperror.Internal(fmt.Errorf("create wallet: %w", err))
	}
	return w, nil
}

// ListWallets implements ports.WalletService: a staff principal sees every
// wallet across all merchants, anyone else sees only their own.
func (s *WalletServiceImpl) ListWallets(ctx context.Context, merchantID int64, isStaff bool) ([]domain.Wallet, error) {
	if isStaff {
		wallets, err := s.wallets.ListAll(ctx)
		if err != nil {
			return nil, apperror.Internal(fmt.Errorf("list all wallets: %w", err))
		}
		return wallets, nil
	}

	wallets, err := s.wallets.ListByMerchant(ctx, merchantID)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("list wallets: %w", err))
	}
	return wallets, nil
}
