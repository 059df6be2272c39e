package service

import (
	"context"
	"errors"
	"testing"

	"billing-engine/internal/core/domain"
	"billing-engine/internal/core/ports"
	"billing-engine/pkg/money"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeInvoiceRepository is a hand-rolled in-memory ports.InvoiceRepository
// exercising the List/GetByToken paths that ReportingServiceImpl depends on.
type fakeInvoiceRepository struct {
	invoices []domain.Invoice
	total    int64
	listErr  error
	byToken  map[string]*domain.Invoice
	tokenErr error
}

func (f *fakeInvoiceRepository) Create(ctx context.Context, inv *domain.Invoice) error { return nil }
func (f *fakeInvoiceRepository) GetByID(ctx context.Context, id int64) (*domain.Invoice, error) {
	return nil, nil
}
func (f *fakeInvoiceRepository) GetByToken(ctx context.Context, token string) (*domain.Invoice, error) {
	if f.tokenErr != nil {
		return nil, f.tokenErr
	}
	return f.byToken[token], nil
}
func (f *fakeInvoiceRepository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.Invoice, error) {
	return nil, nil
}
func (f *fakeInvoiceRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, id int64, status domain.InvoiceStatus) error {
	return nil
}
func (f *fakeInvoiceRepository) List(ctx context.Context, params ports.InvoiceListParams) ([]domain.Invoice, int64, error) {
	if f.listErr != nil {
		return nil, 0, f.listErr
	}
	return f.invoices, f.total, nil
}

func TestReportingService_ListInvoices_Success(t *testing.T) {
	merchantID := int64(7)
	repo := &fakeInvoiceRepository{
		invoices: []domain.Invoice{
			{ID: 1, Token: uuid.New(), Amount: money.FromInt64(100), Status: domain.InvoiceStatusPending},
			{ID: 2, Token: uuid.New(), Amount: money.FromInt64(200), Status: domain.InvoiceStatusComplete},
		},
		total: 2,
	}
	svc := NewReportingService(repo)

	result, total, err := svc.ListInvoices(context.Background(), ports.InvoiceListParams{
		MerchantID: &merchantID,
		Page:       1,
		PageSize:   20,
	})
	require.NoError(t, err)
	assert.Len(t, result, 2)
	assert.Equal(t, int64(2), total)
}

func TestReportingService_ListInvoices_RepoError(t *testing.T) {
	repo := &fakeInvoiceRepository{listErr: errors.New("db error")}
	svc := NewReportingService(repo)

	_, _, err := svc.ListInvoices(context.Background(), ports.InvoiceListParams{Page: 1, PageSize: 20})
	require.Error(t, err)
}

func TestReportingService_GetInvoiceByToken_Found(t *testing.T) {
	token := uuid.New()
	inv := &domain.Invoice{ID: 3, Token: token, Amount: money.FromInt64(50)}
	repo := &fakeInvoiceRepository{byToken: map[string]*domain.Invoice{token.String(): inv}}
	svc := NewReportingService(repo)

	got, err := svc.GetInvoiceByToken(context.Background(), token.String())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(3), got.ID)
}

func TestReportingService_GetInvoiceByToken_NotFound(t *testing.T) {
	repo := &fakeInvoiceRepository{byToken: map[string]*domain.Invoice{}}
	svc := NewReportingService(repo)

	got, err := svc.GetInvoiceByToken(context.Background(), uuid.New().String())
	require.NoError(t, err)
	assert.Nil(t, got)
}
