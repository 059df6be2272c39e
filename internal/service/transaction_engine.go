package service

import (
	"context"
	"fmt"
	"time"

	"billing-engine/internal/core/domain"
	"billing-engine/internal/core/ports"
	"billing-engine/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// TransactionEngineImpl implements ports.TransactionEngine (spec.md §4.3).
type TransactionEngineImpl struct {
	transactions   ports.TransactionRepository
	invoices       ports.InvoiceRepository
	attempts       ports.AttemptRepository
	paymentSystems ports.PaymentSystemRepository
	transactor     ports.DBTransactor
	log            zerolog.Logger
}

// NewTransactionEngine creates a new TransactionEngineImpl.
func NewTransactionEngine(
	transactions ports.TransactionRepository,
	invoices ports.InvoiceRepository,
	attempts ports.AttemptRepository,
	paymentSystems ports.PaymentSystemRepository,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *TransactionEngineImpl {
	return &TransactionEngineImpl{
		transactions:   transactions,
		invoices:       invoices,
		attempts:       attempts,
		paymentSystems: paymentSystems,
		transactor:     transactor,
		log:            log,
	}
}

// lockTransactionAndInvoice locks the Invoice then the Transaction, per
// spec.md §5's lock ordering (Invoice before its dependents). The
// unlocked read of transactionID only recovers InvoiceID so the invoice
// can be locked first.
func (e *TransactionEngineImpl) lockTransactionAndInvoice(ctx context.Context, tx pgx.Tx, transactionID int64) (*domain.Transaction, *domain.Invoice, error) {
	probe, err := e.transactions.GetByID(ctx, transactionID)
	if err != nil {
		return nil, nil, apperror.Internal(fmt.Errorf("probe transaction: %w", err))
	}
	if probe == nil {
		return nil, nil, apperror.NotFound("transaction")
	}

	inv, err := e.invoices.GetByIDForUpdate(ctx, tx, probe.InvoiceID)
	if err != nil {
		return nil, nil, apperror.Internal(fmt.Errorf("lock invoice: %w", err))
	}
	if inv == nil {
		return nil, nil, apperror.NotFound("invoice")
	}

	t, err := e.transactions.GetByIDForUpdate(ctx, tx, transactionID)
	if err != nil {
		return nil, nil, apperror.Internal(fmt.Errorf("lock transaction: %w", err))
	}
	if t == nil {
		return nil, nil, apperror.NotFound("transaction")
	}
	return t, inv, nil
}

// CreateAttempt implements ports.TransactionEngine.
func (e *TransactionEngineImpl) CreateAttempt(ctx context.Context, transactionID, paymentSystemID int64) (*domain.Attempt, error) {
	ctx, tx, finish, err := Begin(ctx, e.transactor)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	var opErr error
	defer finish(&opErr)

	t, inv, err := e.lockTransactionAndInvoice(ctx, tx, transactionID)
	if err != nil {
		opErr = err
		return nil, err
	}
	if inv.Status == domain.InvoiceStatusComplete {
		opErr = apperror.InvoiceComplete()
		return nil, opErr
	}

	now := time.Now()
	a := &domain.Attempt{
		Token:           uuid.New(),
		Status:          domain.AttemptStatusPending,
		TransactionID:   t.ID,
		PaymentSystemID: paymentSystemID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := e.attempts.Create(ctx, tx, a); err != nil {
		opErr = apperror.Internal(fmt.Errorf("create attempt: %w", err))
		return nil, opErr
	}
	return a, nil
}

// GetPaymentInfo implements ports.TransactionEngine: enumerate registered
// payment systems while holding the (transaction, invoice) lock and
// asserting the invoice is not complete.
func (e *TransactionEngineImpl) GetPaymentInfo(ctx context.Context, transactionID int64) ([]domain.PaymentSystem, error) {
	ctx, tx, finish, err := Begin(ctx, e.transactor)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	var opErr error
	defer finish(&opErr)

	_, inv, err := e.lockTransactionAndInvoice(ctx, tx, transactionID)
	if err != nil {
		opErr = err
		return nil, err
	}
	if inv.Status == domain.InvoiceStatusComplete {
		opErr = apperror.InvoiceComplete()
		return nil, opErr
	}

	systems, err := e.paymentSystems.List(ctx)
	if err != nil {
		opErr = apperror.Internal(fmt.Errorf("list payment systems: %w", err))
		return nil, opErr
	}
	return systems, nil
}

// Refund implements ports.TransactionEngine.
func (e *TransactionEngineImpl) Refund(ctx context.Context, transactionID int64) (*domain.Transaction, error) {
	ctx, tx, finish, err := Begin(ctx, e.transactor)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	var opErr error
	defer finish(&opErr)

	t, inv, err := e.lockTransactionAndInvoice(ctx, tx, transactionID)
	if err != nil {
		opErr = err
		return nil, err
	}
	if !t.IsRefundable() {
		opErr = apperror.NotRefundable()
		return nil, opErr
	}

	if err := e.transactions.UpdateStatus(ctx, tx, t.ID, domain.TransactionStatusRefunded); err != nil {
		opErr = apperror.Internal(fmt.Errorf("mark transaction refunded: %w", err))
		return nil, opErr
	}
	t.Status = domain.TransactionStatusRefunded

	if inv.Status != domain.InvoiceStatusIncomplete {
		if err := e.invoices.UpdateStatus(ctx, tx, inv.ID, domain.InvoiceStatusIncomplete); err != nil {
			opErr = apperror.Internal(fmt.Errorf("mark invoice incomplete: %w", err))
			return nil, opErr
		}
	}

	return t, nil
}
