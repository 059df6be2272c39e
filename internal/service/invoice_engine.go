package service

import (
	"context"
	"fmt"
	"time"

	"billing-engine/internal/core/domain"
	"billing-engine/internal/core/ports"
	"billing-engine/pkg/apperror"
	"billing-engine/pkg/money"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// InvoiceEngineImpl implements ports.InvoiceEngine (spec.md §4.2).
type InvoiceEngineImpl struct {
	invoices     ports.InvoiceRepository
	wallets      ports.WalletRepository
	transactions ports.TransactionRepository
	graph        ports.ConversionGraphService
	transactor   ports.DBTransactor
	log          zerolog.Logger
}

// NewInvoiceEngine creates a new InvoiceEngineImpl.
func NewInvoiceEngine(
	invoices ports.InvoiceRepository,
	wallets ports.WalletRepository,
	transactions ports.TransactionRepository,
	graph ports.ConversionGraphService,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *InvoiceEngineImpl {
	return &InvoiceEngineImpl{
		invoices:     invoices,
		wallets:      wallets,
		transactions: transactions,
		graph:        graph,
		transactor:   transactor,
		log:          log,
	}
}

// CreateInvoice implements ports.InvoiceEngine. Unlike the other
// operations it does not participate in the locked settlement protocol:
// it only inserts a new, as-yet-unpaid Invoice row against a wallet the
// requesting merchant owns.
func (e *InvoiceEngineImpl) CreateInvoice(ctx context.Context, merchantID, toWalletID int64, amount money.Money) (*domain.Invoice, error) {
	wallet, err := e.wallets.GetByID(ctx, toWalletID)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("lookup destination wallet: %w", err))
	}
	if wallet == nil || wallet.MerchantID != merchantID {
		return nil, apperror.NotFound("wallet")
	}

	now := time.Now()
	inv := &domain.Invoice{
		Token:      uuid.New(),
		Amount:     amount,
		Status:     domain.InvoiceStatusPending,
		ToWalletID: toWalletID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := e.invoices.Create(ctx, inv); err != nil {
		return nil, apperror.Internal(fmt.Errorf("create invoice: %w", err))
	}

	return inv, nil
}

// fetched bundles the locked state of one invoice: the invoice row, its
// destination wallet, and the paid/unpaid totals over every successful
// transaction, all held under the caller's scope (spec.md §4.2 fetch()).
type fetched struct {
	invoice *domain.Invoice
	wallet  *domain.Wallet
	paid    money.Money
	unpaid  money.Money
}

func (e *InvoiceEngineImpl) fetch(ctx context.Context, tx pgx.Tx, invoiceID int64) (*fetched, error) {
	inv, err := e.invoices.GetByIDForUpdate(ctx, tx, invoiceID)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("lock invoice: %w", err))
	}
	if inv == nil {
		return nil, apperror.NotFound("invoice")
	}

	wallet, err := e.wallets.GetByIDForUpdate(ctx, tx, inv.ToWalletID)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("lock destination wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.NotFound("wallet")
	}

	successful, err := e.transactions.ListSuccessfulForUpdate(ctx, tx, invoiceID)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("lock successful transactions: %w", err))
	}

	paid := money.Zero()
	for _, t := range successful {
		paid = paid.Add(t.EffectiveAmount)
	}

	return &fetched{invoice: inv, wallet: wallet, paid: paid, unpaid: inv.Amount.Sub(paid)}, nil
}

// resolveAmounts fills in the missing side of amount/effective_amount
// per spec.md §4.2 step 3. Exactly one of amount/effectiveAmount must be
// non-nil.
func resolveAmounts(amount, effectiveAmount *money.Money, rate money.Money) (money.Money, money.Money, error) {
	switch {
	case amount != nil && effectiveAmount == nil:
		eff, err := amount.Div(rate)
		if err != nil {
			return money.Money{}, money.Money{}, apperror.Internal(err)
		}
		return *amount, eff, nil
	case amount == nil && effectiveAmount != nil:
		return effectiveAmount.Mul(rate), *effectiveAmount, nil
	default:
		return money.Money{}, money.Money{}, apperror.Underspecified()
	}
}

// GetPaymentInfo implements ports.InvoiceEngine.
func (e *InvoiceEngineImpl) GetPaymentInfo(ctx context.Context, invoiceID int64) (*domain.PaymentInfo, error) {
	ctx, tx, finish, err := Begin(ctx, e.transactor)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	var opErr error
	defer finish(&opErr)

	f, err := e.fetch(ctx, tx, invoiceID)
	if err != nil {
		opErr = err
		return nil, err
	}

	return &domain.PaymentInfo{
		WalletID:   f.wallet.ID,
		CurrencyID: f.wallet.CurrencyID,
		Amount:     f.invoice.Amount,
		Paid:       f.paid,
		Unpaid:     f.unpaid,
	}, nil
}

// CreateTransaction implements ports.InvoiceEngine.
func (e *InvoiceEngineImpl) CreateTransaction(ctx context.Context, req ports.CreateTransactionRequest) (*domain.Transaction, error) {
	ctx, tx, finish, err := Begin(ctx, e.transactor)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	var opErr error
	defer finish(&opErr)

	f, err := e.fetch(ctx, tx, req.InvoiceID)
	if err != nil {
		opErr = err
		return nil, err
	}

	rate, ok, err := e.graph.Rate(ctx, req.CurrencyID, f.wallet.CurrencyID, false)
	if err != nil {
		opErr = apperror.Internal(err)
		return nil, opErr
	}
	if !ok {
		opErr = apperror.NoConversion()
		return nil, opErr
	}

	amount, effectiveAmount, err := resolveAmounts(req.Amount, req.EffectiveAmount, rate)
	if err != nil {
		opErr = err
		return nil, err
	}

	if effectiveAmount.GreaterThan(f.unpaid) {
		opErr = apperror.Overpay()
		return nil, opErr
	}

	now := time.Now()
	t := &domain.Transaction{
		Token:           uuid.New(),
		Kind:            domain.TransactionKindExternal,
		Amount:          amount,
		EffectiveAmount: effectiveAmount,
		CurrencyID:      req.CurrencyID,
		Status:          domain.TransactionStatusPending,
		InvoiceID:       req.InvoiceID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := e.transactions.Create(ctx, tx, t); err != nil {
		opErr = apperror.Internal(fmt.Errorf("create transaction: %w", err))
		return nil, opErr
	}

	return t, nil
}

// PayWithWallet implements ports.InvoiceEngine: an internal (wallet-to-
// wallet) transaction, created and settled within the same scope.
func (e *InvoiceEngineImpl) PayWithWallet(ctx context.Context, req ports.PayWithWalletRequest) (*domain.Transaction, error) {
	ctx, tx, finish, err := Begin(ctx, e.transactor)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	var opErr error
	defer finish(&opErr)

	f, err := e.fetch(ctx, tx, req.InvoiceID)
	if err != nil {
		opErr = err
		return nil, err
	}

	sourceWallet, err := e.wallets.GetByMerchantAndIDForUpdate(ctx, tx, req.MerchantID, req.WalletID)
	if err != nil {
		opErr = apperror.Internal(fmt.Errorf("lock source wallet: %w", err))
		return nil, opErr
	}
	if sourceWallet == nil {
		opErr = apperror.NotFound("wallet")
		return nil, opErr
	}

	rate, ok, err := e.graph.Rate(ctx, sourceWallet.CurrencyID, f.wallet.CurrencyID, false)
	if err != nil {
		opErr = apperror.Internal(err)
		return nil, opErr
	}
	if !ok {
		opErr = apperror.NoConversion()
		return nil, opErr
	}

	amount, effectiveAmount, err := resolveAmounts(req.Amount, req.EffectiveAmount, rate)
	if err != nil {
		opErr = err
		return nil, err
	}

	if effectiveAmount.GreaterThan(f.unpaid) {
		opErr = apperror.Overpay()
		return nil, opErr
	}

	now := time.Now()
	t := &domain.Transaction{
		Token:           uuid.New(),
		Kind:            domain.TransactionKindInternal,
		Amount:          amount,
		EffectiveAmount: effectiveAmount,
		CurrencyID:      sourceWallet.CurrencyID,
		Status:          domain.TransactionStatusPending,
		InvoiceID:       req.InvoiceID,
		FromWalletID:    &req.WalletID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := e.transactions.Create(ctx, tx, t); err != nil {
		opErr = apperror.Internal(fmt.Errorf("create transaction: %w", err))
		return nil, opErr
	}

	// Persist the intent before evaluating the payer's balance: a failed
	// internal attempt still moves the invoice out of pending (spec.md §9,
	// decision 4).
	if f.invoice.Status == domain.InvoiceStatusPending {
		if err := e.invoices.UpdateStatus(ctx, tx, f.invoice.ID, domain.InvoiceStatusIncomplete); err != nil {
			opErr = apperror.Internal(fmt.Errorf("mark invoice incomplete: %w", err))
			return nil, opErr
		}
	}

	if settleErr := e.settleInternal(ctx, tx, t, sourceWallet, f); settleErr != nil {
		e.log.Warn().Err(settleErr).Int64("transaction_id", t.ID).Msg("internal settlement fault, marking transaction fail")
		if err := e.transactions.UpdateStatus(ctx, tx, t.ID, domain.TransactionStatusFailed); err != nil {
			opErr = apperror.Internal(fmt.Errorf("mark transaction fail: %w", err))
			return nil, opErr
		}
		t.Status = domain.TransactionStatusFailed
	}

	return t, nil
}

// settleInternal attempts the wallet-to-wallet transfer. Insufficient
// funds is not an error: it is the normal "else" branch of spec.md §4.2
// step 4. A non-nil return means an unexpected fault occurred, which the
// caller swallows into Transaction.status=fail per spec.md §7.
func (e *InvoiceEngineImpl) settleInternal(ctx context.Context, tx pgx.Tx, t *domain.Transaction, sourceWallet *domain.Wallet, f *fetched) error {
	if sourceWallet.Amount.LessThan(t.Amount) {
		if err := e.transactions.UpdateStatus(ctx, tx, t.ID, domain.TransactionStatusFailed); err != nil {
			return fmt.Errorf("mark transaction fail: %w", err)
		}
		t.Status = domain.TransactionStatusFailed
		return nil
	}

	if err := e.wallets.UpdateAmount(ctx, tx, sourceWallet.ID, sourceWallet.Amount.Sub(t.Amount)); err != nil {
		return fmt.Errorf("debit source wallet: %w", err)
	}
	if err := e.wallets.UpdateAmount(ctx, tx, f.wallet.ID, f.wallet.Amount.Add(t.EffectiveAmount)); err != nil {
		return fmt.Errorf("credit destination wallet: %w", err)
	}
	if err := e.transactions.UpdateStatus(ctx, tx, t.ID, domain.TransactionStatusSuccess); err != nil {
		return fmt.Errorf("mark transaction success: %w", err)
	}
	t.Status = domain.TransactionStatusSuccess

	if t.EffectiveAmount.GreaterOrEqual(f.unpaid) {
		if err := e.invoices.UpdateStatus(ctx, tx, f.invoice.ID, domain.InvoiceStatusComplete); err != nil {
			return fmt.Errorf("mark invoice complete: %w", err)
		}
	}
	return nil
}
