package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the type of audited action, regrouped around the
// settlement-engine surface instead of the raw payment-gateway actions.
type AuditAction string

const (
	AuditActionCreateWallet      AuditAction = "CREATE_WALLET"
	AuditActionCreateInvoice     AuditAction = "CREATE_INVOICE"
	AuditActionCreateTransaction AuditAction = "CREATE_TRANSACTION"
	AuditActionCreateAttempt     AuditAction = "CREATE_ATTEMPT"
	AuditActionRefund            AuditAction = "REFUND"
	AuditActionWebhookIngest     AuditAction = "WEBHOOK_INGEST"
	AuditActionRegister          AuditAction = "REGISTER"
	AuditActionLogin             AuditAction = "LOGIN"
)

// AuditLog records a single audited action in the system.
type AuditLog struct {
	ID           uuid.UUID   `json:"id"`
	MerchantID   *int64      `json:"merchant_id,omitempty"`
	Action       AuditAction `json:"action"`
	ResourceType string      `json:"resource_type"`
	ResourceID   string      `json:"resource_id,omitempty"`
	Details      string      `json:"details,omitempty"`
	IPAddress    string      `json:"ip_address"`
	CreatedAt    time.Time   `json:"created_at"`
}
