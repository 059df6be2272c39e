package service

import (
	"context"
	"fmt"

	"billing-engine/internal/core/domain"
	"billing-engine/internal/core/ports"
	"billing-engine/pkg/apperror"
	"billing-engine/pkg/money"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// AttemptEngineImpl implements ports.AttemptEngine (spec.md §4.4), the
// critical section cascading Attempt closure into Transaction and
// Invoice status.
type AttemptEngineImpl struct {
	attempts       ports.AttemptRepository
	transactions   ports.TransactionRepository
	invoices       ports.InvoiceRepository
	paymentSystems ports.PaymentSystemRepository
	transactor     ports.DBTransactor
	log            zerolog.Logger
}

// NewAttemptEngine creates a new AttemptEngineImpl.
func NewAttemptEngine(
	attempts ports.AttemptRepository,
	transactions ports.TransactionRepository,
	invoices ports.InvoiceRepository,
	paymentSystems ports.PaymentSystemRepository,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *AttemptEngineImpl {
	return &AttemptEngineImpl{
		attempts:       attempts,
		transactions:   transactions,
		invoices:       invoices,
		paymentSystems: paymentSystems,
		transactor:     transactor,
		log:            log,
	}
}

// lockLineage locks (Attempt, Transaction, Invoice) in one round trip,
// filtered on Attempt.status=pending. A nil, non-error result means the
// attempt is not pending — already terminated, or never existed — which
// surfaces as NotFound (spec.md P5: a second close on a terminated
// attempt is idempotently rejected by this filter).
func (e *AttemptEngineImpl) lockLineage(ctx context.Context, attemptID int64) (context.Context, pgx.Tx, *domain.Attempt, *domain.Transaction, *domain.Invoice, func(*error), error) {
	ctx, tx, finish, err := Begin(ctx, e.transactor)
	if err != nil {
		return ctx, nil, nil, nil, nil, nil, apperror.Internal(err)
	}

	a, t, inv, err := e.attempts.GetPendingWithLineageForUpdate(ctx, tx, attemptID)
	if err != nil {
		var opErr error = apperror.Internal(fmt.Errorf("lock attempt lineage: %w", err))
		finish(&opErr)
		return ctx, nil, nil, nil, nil, nil, opErr
	}
	if a == nil {
		var opErr error = apperror.NotFound("attempt")
		finish(&opErr)
		return ctx, nil, nil, nil, nil, nil, opErr
	}
	return ctx, tx, a, t, inv, finish, nil
}

// Success implements ports.AttemptEngine.
func (e *AttemptEngineImpl) Success(ctx context.Context, attemptID int64) error {
	ctx, tx, a, t, inv, finish, err := e.lockLineage(ctx, attemptID)
	if err != nil {
		return err
	}
	var opErr error
	defer finish(&opErr)

	others, err := e.transactions.ListSuccessfulExcludingForUpdate(ctx, tx, inv.ID, t.ID)
	if err != nil {
		opErr = apperror.Internal(fmt.Errorf("lock other successful transactions: %w", err))
		return opErr
	}
	paidSoFar := money.Zero()
	for _, other := range others {
		paidSoFar = paidSoFar.Add(other.EffectiveAmount)
	}

	if err := e.attempts.UpdateStatusAndResponse(ctx, tx, a.ID, domain.AttemptStatusSuccess, a.Response); err != nil {
		opErr = apperror.Internal(fmt.Errorf("close attempt success: %w", err))
		return opErr
	}
	if err := e.transactions.UpdateStatus(ctx, tx, t.ID, domain.TransactionStatusSuccess); err != nil {
		opErr = apperror.Internal(fmt.Errorf("mark transaction success: %w", err))
		return opErr
	}

	total := paidSoFar.Add(t.EffectiveAmount)
	switch {
	case total.GreaterOrEqual(inv.Amount):
		if err := e.invoices.UpdateStatus(ctx, tx, inv.ID, domain.InvoiceStatusComplete); err != nil {
			opErr = apperror.Internal(fmt.Errorf("mark invoice complete: %w", err))
			return opErr
		}
	case inv.Status == domain.InvoiceStatusPending:
		if err := e.invoices.UpdateStatus(ctx, tx, inv.ID, domain.InvoiceStatusIncomplete); err != nil {
			opErr = apperror.Internal(fmt.Errorf("mark invoice incomplete: %w", err))
			return opErr
		}
	}
	return nil
}

// Fail implements ports.AttemptEngine.
func (e *AttemptEngineImpl) Fail(ctx context.Context, attemptID int64) error {
	return e.closeFailed(ctx, attemptID)
}

// Error implements ports.AttemptEngine. Distinguished from Fail only at
// the webhook-dispatch layer; both map to the same Attempt/Transaction
// terminal status (spec.md §9, decision 2: Attempt carries no separate
// "error" status).
func (e *AttemptEngineImpl) Error(ctx context.Context, attemptID int64) error {
	return e.closeFailed(ctx, attemptID)
}

func (e *AttemptEngineImpl) closeFailed(ctx context.Context, attemptID int64) error {
	ctx, tx, a, t, inv, finish, err := e.lockLineage(ctx, attemptID)
	if err != nil {
		return err
	}
	var opErr error
	defer finish(&opErr)

	if err := e.attempts.UpdateStatusAndResponse(ctx, tx, a.ID, domain.AttemptStatusFailed, a.Response); err != nil {
		opErr = apperror.Internal(fmt.Errorf("close attempt fail: %w", err))
		return opErr
	}
	if err := e.transactions.UpdateStatus(ctx, tx, t.ID, domain.TransactionStatusFailed); err != nil {
		opErr = apperror.Internal(fmt.Errorf("mark transaction fail: %w", err))
		return opErr
	}

	if inv.Status == domain.InvoiceStatusPending {
		if err := e.invoices.UpdateStatus(ctx, tx, inv.ID, domain.InvoiceStatusIncomplete); err != nil {
			opErr = apperror.Internal(fmt.Errorf("mark invoice incomplete: %w", err))
			return opErr
		}
	}
	return nil
}

// Send implements ports.AttemptEngine.
func (e *AttemptEngineImpl) Send(ctx context.Context, attemptID int64) (*ports.AttemptSendResult, error) {
	a, err := e.attempts.GetByID(ctx, attemptID)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("get attempt: %w", err))
	}
	if a == nil {
		return nil, apperror.NotFound("attempt")
	}

	ps, err := e.paymentSystems.GetByID(ctx, a.PaymentSystemID)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("get payment system: %w", err))
	}
	if ps == nil {
		return nil, apperror.NotFound("payment system")
	}

	if ps.SystemType == domain.PaymentSystemTypeVisa {
		return &ports.AttemptSendResult{URL: fmt.Sprintf("https://pay.visa.example/attempt/%s", a.Token)}, nil
	}
	return &ports.AttemptSendResult{Error: fmt.Sprintf("unsupported payment system type: %s", ps.SystemType)}, nil
}
