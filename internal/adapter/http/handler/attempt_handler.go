package handler

import (
	"billing-engine/internal/adapter/http/dto"
	"billing-engine/internal/core/ports"
	"billing-engine/pkg/apperror"
	"billing-engine/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AttemptHandler handles payment-system selection and attempt creation
// for a transaction.
type AttemptHandler struct {
	transactions ports.TransactionRepository
	engine       ports.TransactionEngine
	attempts     ports.AttemptEngine
}

// NewAttemptHandler creates a new AttemptHandler.
func NewAttemptHandler(transactions ports.TransactionRepository, engine ports.TransactionEngine, attempts ports.AttemptEngine) *AttemptHandler {
	return &AttemptHandler{transactions: transactions, engine: engine, attempts: attempts}
}

// ListPaymentSystems handles GET /attempt/{token}: the payment systems
// available for the transaction identified by its token.
func (h *AttemptHandler) ListPaymentSystems(c *gin.Context) {
	transactionID, err := h.resolveTransactionID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	systems, err := h.engine.GetPaymentInfo(c.Request.Context(), transactionID)
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]dto.PaymentSystemResponse, 0, len(systems))
	for _, s := range systems {
		out = append(out, dto.PaymentSystemResponse{ID: s.ID, Name: s.Name, Type: string(s.SystemType)})
	}
	response.OK(c, out)
}

// CreateAttempt handles POST /attempt/{token}: creates a pending Attempt
// against the chosen payment system and returns its payment URL.
func (h *AttemptHandler) CreateAttempt(c *gin.Context) {
	transactionID, err := h.resolveTransactionID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.CreateAttemptRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		response.Error(c, apperror.Validation(bindErr.Error()))
		return
	}

	attempt, err := h.engine.CreateAttempt(c.Request.Context(), transactionID, req.PaymentSystemID)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.attempts.Send(c.Request.Context(), attempt.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if result.Error != "" {
		response.Error(c, apperror.Validation(result.Error))
		return
	}

	response.OK(c, dto.CreateAttemptResponse{URL: result.URL})
}

func (h *AttemptHandler) resolveTransactionID(c *gin.Context) (int64, error) {
	token, err := uuid.Parse(c.Param("token"))
	if err != nil {
		return 0, apperror.Validation("token must be a UUID")
	}

	txn, err := h.transactions.GetByToken(c.Request.Context(), token.String())
	if err != nil {
		return 0, apperror.Internal(err)
	}
	if txn == nil {
		return 0, apperror.NotFound("transaction")
	}
	return txn.ID, nil
}
