package service

import (
	"context"
	"fmt"

	"billing-engine/internal/core/domain"
	"billing-engine/internal/core/ports"
	"billing-engine/pkg/apperror"
)

// ReportingServiceImpl implements ports.ReportingService, the read-side
// invoice list and token-lookup surface supplemented from the donor's reporting
// layer (SPEC_FULL.md "Supplemented features").
type ReportingServiceImpl struct {
	invoices ports.InvoiceRepository
}

// NewReportingService creates a new ReportingServiceImpl.
func NewReportingService(invoices ports.InvoiceRepository) *ReportingServiceImpl {
	return &ReportingServiceImpl{invoices: invoices}
}

// ListInvoices implements ports.ReportingService.
func (s *ReportingServiceImpl) ListInvoices(ctx context.Context, params ports.InvoiceListParams) ([]domain.Invoice, int64, error) {
	invs, total, err := s.invoices.List(ctx, params)
	if err != nil {
		return nil, 0, apperror.Internal(fmt.Errorf("list invoices: %w", err))
	}
	return invs, total, nil
}

// GetInvoiceByToken implements ports.ReportingService.
func (s *ReportingServiceImpl) GetInvoiceByToken(ctx context.Context, token string) (*domain.Invoice, error) {
	inv, err := s.invoices.GetByToken(ctx, token)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("lookup invoice by token: %w", err))
	}
	return inv, nil
}
