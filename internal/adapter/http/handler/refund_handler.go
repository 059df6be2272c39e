package handler

import (
	"billing-engine/internal/adapter/http/dto"
	"billing-engine/internal/core/ports"
	"billing-engine/pkg/apperror"
	"billing-engine/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RefundHandler handles staff-initiated refunds.
type RefundHandler struct {
	transactions ports.TransactionRepository
	engine       ports.TransactionEngine
}

// NewRefundHandler creates a new RefundHandler.
func NewRefundHandler(transactions ports.TransactionRepository, engine ports.TransactionEngine) *RefundHandler {
	return &RefundHandler{transactions: transactions, engine: engine}
}

// Refund handles POST /refund/{transaction_token}.
func (h *RefundHandler) Refund(c *gin.Context) {
	token, err := uuid.Parse(c.Param("transaction_token"))
	if err != nil {
		response.Error(c, apperror.Validation("transaction_token must be a UUID"))
		return
	}

	txn, err := h.transactions.GetByToken(c.Request.Context(), token.String())
	if err != nil {
		response.Error(c, apperror.Internal(err))
		return
	}
	if txn == nil {
		response.Error(c, apperror.NotFound("transaction"))
		return
	}

	refunded, err := h.engine.Refund(c.Request.Context(), txn.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.RefundResponse{Status: string(refunded.Status)})
}
