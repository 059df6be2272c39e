package service

import (
	"context"

	"billing-engine/internal/core/domain"
	"billing-engine/internal/core/ports"
	"billing-engine/pkg/money"

	"github.com/jackc/pgx/v5"
)

// fakeSettlementInvoiceRepo, fakeSettlementTransactionRepo,
// fakeSettlementAttemptRepo and fakeSettlementPaymentSystemRepo back the
// locked settlement paths (TransactionEngine, AttemptEngine,
// WebhookIngestor) that the non-transactional fakes elsewhere in this
// package don't exercise. All tx arguments are ignored: these are plain
// in-memory maps, not real transactions, matching the rest of this
// package's fake style.

type fakeSettlementInvoiceRepo struct {
	byID      map[int64]*domain.Invoice
	updateErr error
}

func newFakeSettlementInvoiceRepo() *fakeSettlementInvoiceRepo {
	return &fakeSettlementInvoiceRepo{byID: map[int64]*domain.Invoice{}}
}

func (f *fakeSettlementInvoiceRepo) Create(ctx context.Context, inv *domain.Invoice) error {
	f.byID[inv.ID] = inv
	return nil
}

func (f *fakeSettlementInvoiceRepo) GetByID(ctx context.Context, id int64) (*domain.Invoice, error) {
	return f.byID[id], nil
}

func (f *fakeSettlementInvoiceRepo) GetByToken(ctx context.Context, token string) (*domain.Invoice, error) {
	for _, inv := range f.byID {
		if inv.Token.String() == token {
			return inv, nil
		}
	}
	return nil, nil
}

func (f *fakeSettlementInvoiceRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.Invoice, error) {
	return f.byID[id], nil
}

func (f *fakeSettlementInvoiceRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id int64, status domain.InvoiceStatus) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if inv, ok := f.byID[id]; ok {
		inv.Status = status
	}
	return nil
}

func (f *fakeSettlementInvoiceRepo) List(ctx context.Context, params ports.InvoiceListParams) ([]domain.Invoice, int64, error) {
	return nil, 0, nil
}

var _ ports.InvoiceRepository = (*fakeSettlementInvoiceRepo)(nil)

type fakeSettlementTransactionRepo struct {
	byID      map[int64]*domain.Transaction
	updateErr error
}

func newFakeSettlementTransactionRepo() *fakeSettlementTransactionRepo {
	return &fakeSettlementTransactionRepo{byID: map[int64]*domain.Transaction{}}
}

func (f *fakeSettlementTransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	f.byID[t.ID] = t
	return nil
}

func (f *fakeSettlementTransactionRepo) GetByID(ctx context.Context, id int64) (*domain.Transaction, error) {
	return f.byID[id], nil
}

func (f *fakeSettlementTransactionRepo) GetByToken(ctx context.Context, token string) (*domain.Transaction, error) {
	for _, t := range f.byID {
		if t.Token.String() == token {
			return t, nil
		}
	}
	return nil, nil
}

func (f *fakeSettlementTransactionRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.Transaction, error) {
	return f.byID[id], nil
}

func (f *fakeSettlementTransactionRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id int64, status domain.TransactionStatus) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if t, ok := f.byID[id]; ok {
		t.Status = status
	}
	return nil
}

func (f *fakeSettlementTransactionRepo) ListSuccessfulForUpdate(ctx context.Context, tx pgx.Tx, invoiceID int64) ([]domain.Transaction, error) {
	return f.listSuccessful(invoiceID, 0)
}

func (f *fakeSettlementTransactionRepo) ListSuccessfulExcludingForUpdate(ctx context.Context, tx pgx.Tx, invoiceID, excludeTransactionID int64) ([]domain.Transaction, error) {
	return f.listSuccessful(invoiceID, excludeTransactionID)
}

func (f *fakeSettlementTransactionRepo) listSuccessful(invoiceID, excludeID int64) ([]domain.Transaction, error) {
	var out []domain.Transaction
	for _, t := range f.byID {
		if t.InvoiceID == invoiceID && t.Status == domain.TransactionStatusSuccess && t.ID != excludeID {
			out = append(out, *t)
		}
	}
	return out, nil
}

var _ ports.TransactionRepository = (*fakeSettlementTransactionRepo)(nil)

type fakeSettlementAttemptRepo struct {
	byID         map[int64]*domain.Attempt
	transactions *fakeSettlementTransactionRepo
	invoices     *fakeSettlementInvoiceRepo
}

func newFakeSettlementAttemptRepo(transactions *fakeSettlementTransactionRepo, invoices *fakeSettlementInvoiceRepo) *fakeSettlementAttemptRepo {
	return &fakeSettlementAttemptRepo{
		byID:         map[int64]*domain.Attempt{},
		transactions: transactions,
		invoices:     invoices,
	}
}

func (f *fakeSettlementAttemptRepo) Create(ctx context.Context, tx pgx.Tx, a *domain.Attempt) error {
	f.byID[a.ID] = a
	return nil
}

func (f *fakeSettlementAttemptRepo) GetByID(ctx context.Context, id int64) (*domain.Attempt, error) {
	return f.byID[id], nil
}

func (f *fakeSettlementAttemptRepo) GetPendingWithLineageForUpdate(ctx context.Context, tx pgx.Tx, attemptID int64) (*domain.Attempt, *domain.Transaction, *domain.Invoice, error) {
	a, ok := f.byID[attemptID]
	if !ok || a.Status != domain.AttemptStatusPending {
		return nil, nil, nil, nil
	}
	t := f.transactions.byID[a.TransactionID]
	if t == nil {
		return nil, nil, nil, nil
	}
	inv := f.invoices.byID[t.InvoiceID]
	if inv == nil {
		return nil, nil, nil, nil
	}
	return a, t, inv, nil
}

func (f *fakeSettlementAttemptRepo) UpdateStatusAndResponse(ctx context.Context, tx pgx.Tx, id int64, status domain.AttemptStatus, response []byte) error {
	if a, ok := f.byID[id]; ok {
		a.Status = status
		a.Response = response
	}
	return nil
}

var _ ports.AttemptRepository = (*fakeSettlementAttemptRepo)(nil)

type fakeSettlementPaymentSystemRepo struct {
	byID map[int64]*domain.PaymentSystem
}

func newFakeSettlementPaymentSystemRepo() *fakeSettlementPaymentSystemRepo {
	return &fakeSettlementPaymentSystemRepo{byID: map[int64]*domain.PaymentSystem{}}
}

func (f *fakeSettlementPaymentSystemRepo) GetByID(ctx context.Context, id int64) (*domain.PaymentSystem, error) {
	return f.byID[id], nil
}

func (f *fakeSettlementPaymentSystemRepo) GetByIDAndType(ctx context.Context, id int64, systemType domain.PaymentSystemType) (*domain.PaymentSystem, error) {
	ps, ok := f.byID[id]
	if !ok || ps.SystemType != systemType {
		return nil, nil
	}
	return ps, nil
}

func (f *fakeSettlementPaymentSystemRepo) List(ctx context.Context) ([]domain.PaymentSystem, error) {
	var out []domain.PaymentSystem
	for _, ps := range f.byID {
		out = append(out, *ps)
	}
	return out, nil
}

func (f *fakeSettlementPaymentSystemRepo) Upsert(ctx context.Context, ps *domain.PaymentSystem) error {
	f.byID[ps.ID] = ps
	return nil
}

var _ ports.PaymentSystemRepository = (*fakeSettlementPaymentSystemRepo)(nil)

// fakeConversionGraph is a fixed-rate stand-in for ConversionGraphService,
// keyed by (from, to) currency id pairs.
type fakeConversionGraph struct {
	rates map[[2]int64]money.Money
}

func newFakeConversionGraph() *fakeConversionGraph {
	return &fakeConversionGraph{rates: map[[2]int64]money.Money{}}
}

func (f *fakeConversionGraph) setRate(from, to int64, rate money.Money) {
	f.rates[[2]int64{from, to}] = rate
}

func (f *fakeConversionGraph) Rate(ctx context.Context, fromCurrencyID, toCurrencyID int64, fresh bool) (money.Money, bool, error) {
	rate, ok := f.rates[[2]int64{fromCurrencyID, toCurrencyID}]
	return rate, ok, nil
}

func (f *fakeConversionGraph) RatesFrom(ctx context.Context, fromCurrencyID int64, fresh bool) (map[int64]money.Money, error) {
	return nil, nil
}

func (f *fakeConversionGraph) Invalidate() {}

var _ ports.ConversionGraphService = (*fakeConversionGraph)(nil)
