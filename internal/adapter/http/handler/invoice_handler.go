package handler

import (
	"strconv"

	"billing-engine/internal/adapter/http/dto"
	"billing-engine/internal/core/ports"
	"billing-engine/pkg/apperror"
	"billing-engine/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	defaultPage     = 1
	defaultPageSize = 20
)

// InvoiceHandler handles invoice listing/creation and the payer-facing
// payment-info/transaction-creation endpoints.
type InvoiceHandler struct {
	reporting ports.ReportingService
	engine    ports.InvoiceEngine
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(reporting ports.ReportingService, engine ports.InvoiceEngine) *InvoiceHandler {
	return &InvoiceHandler{reporting: reporting, engine: engine}
}

// ListInvoices handles GET /invoices: paginated, scoped to the caller's
// merchant unless the caller is staff.
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	principalID, isStaff, ok := principalFrom(c)
	if !ok {
		response.Error(c, apperror.Unauthorized("missing principal"))
		return
	}

	page := queryInt(c, "page", defaultPage)
	pageSize := queryInt(c, "page_size", defaultPageSize)

	params := ports.InvoiceListParams{Page: page, PageSize: pageSize}
	if !isStaff {
		params.MerchantID = &principalID
	}

	invoices, total, err := h.reporting.ListInvoices(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.PaginatedResponse[interface{}]{
		Data:       toAnySlice(invoices),
		ItemsCount: total,
	})
}

// CreateInvoice handles POST /invoice.
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	principalID, _, ok := principalFrom(c)
	if !ok {
		response.Error(c, apperror.Unauthorized("missing principal"))
		return
	}

	var req dto.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	inv, err := h.engine.CreateInvoice(c.Request.Context(), principalID, req.ToWalletID, req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, inv)
}

// GetPaymentInfo handles GET /pay/{token}.
func (h *InvoiceHandler) GetPaymentInfo(c *gin.Context) {
	token, err := uuid.Parse(c.Param("token"))
	if err != nil {
		response.Error(c, apperror.Validation("token must be a UUID"))
		return
	}

	invoiceID, err := h.resolveInvoiceID(c, token)
	if err != nil {
		response.Error(c, err)
		return
	}

	info, err := h.engine.GetPaymentInfo(c.Request.Context(), invoiceID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, info)
}

// CreateTransaction handles POST /pay/{token}: an internal transaction
// when from_wallet_id is set, otherwise an external one priced in
// currency_id.
func (h *InvoiceHandler) CreateTransaction(c *gin.Context) {
	token, err := uuid.Parse(c.Param("token"))
	if err != nil {
		response.Error(c, apperror.Validation("token must be a UUID"))
		return
	}

	invoiceID, err := h.resolveInvoiceID(c, token)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.CreateTransactionRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		response.Error(c, apperror.Validation(bindErr.Error()))
		return
	}

	if req.FromWalletID != nil {
		principalID, _, ok := principalFrom(c)
		if !ok {
			response.Error(c, apperror.Unauthorized("wallet payment requires an authenticated merchant"))
			return
		}

		txn, payErr := h.engine.PayWithWallet(c.Request.Context(), ports.PayWithWalletRequest{
			InvoiceID:       invoiceID,
			MerchantID:      principalID,
			WalletID:        *req.FromWalletID,
			Amount:          req.Amount,
			EffectiveAmount: req.EffectiveAmount,
		})
		if payErr != nil {
			response.Error(c, payErr)
			return
		}

		response.Created(c, dto.InternalTransactionResponse{
			Transaction: toTransactionResponse(txn),
			Status:      string(txn.Status),
		})
		return
	}

	if req.CurrencyID == nil {
		response.Error(c, apperror.Underspecified())
		return
	}

	txn, err := h.engine.CreateTransaction(c.Request.Context(), ports.CreateTransactionRequest{
		InvoiceID:       invoiceID,
		CurrencyID:      *req.CurrencyID,
		Amount:          req.Amount,
		EffectiveAmount: req.EffectiveAmount,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ExternalTransactionResponse{
		Token:      txn.Token.String(),
		AttemptURL: "/attempt/" + txn.Token.String(),
	})
}

// resolveInvoiceID looks up an invoice by its token path parameter.
func (h *InvoiceHandler) resolveInvoiceID(c *gin.Context, token uuid.UUID) (int64, error) {
	inv, err := h.reporting.GetInvoiceByToken(c.Request.Context(), token.String())
	if err != nil {
		return 0, err
	}
	if inv == nil {
		return 0, apperror.NotFound("invoice")
	}
	return inv.ID, nil
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
