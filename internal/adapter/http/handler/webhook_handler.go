package handler

import (
	"io"
	"strconv"

	"billing-engine/internal/core/ports"
	"billing-engine/pkg/apperror"
	"billing-engine/pkg/response"

	"github.com/gin-gonic/gin"
)

// WebhookHandler handles the Visa payment-system webhook: ciphertext
// authenticated, no bearer/basic auth (the "none" auth tier).
type WebhookHandler struct {
	ingestor ports.WebhookIngestor
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(ingestor ports.WebhookIngestor) *WebhookHandler {
	return &WebhookHandler{ingestor: ingestor}
}

// Ingest handles POST /visa/{payment_system_id}.
func (h *WebhookHandler) Ingest(c *gin.Context) {
	paymentSystemID, err := strconv.ParseInt(c.Param("payment_system_id"), 10, 64)
	if err != nil {
		response.Error(c, apperror.Validation("payment_system_id must be an integer"))
		return
	}

	ciphertext, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.Error(c, apperror.Internal(err))
		return
	}

	if err := h.ingestor.Ingest(c.Request.Context(), paymentSystemID, ciphertext); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{})
}
