package middleware

import (
	"encoding/json"
	"time"

	"billing-engine/internal/core/domain"
	"billing-engine/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuditLog creates an audit middleware that logs successful write
// operations, mapping HTTP method/path to an audit action.
func AuditLog(auditSvc ports.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Status() < 200 || c.Writer.Status() >= 300 {
			return
		}
		if c.Request.Method == "GET" || c.Request.Method == "HEAD" || c.Request.Method == "OPTIONS" {
			return
		}

		action, resourceType := mapPathToAction(c.FullPath(), c.Request.Method)
		if action == "" {
			return
		}

		var merchantID *int64
		if pid, exists := c.Get(CtxPrincipalID); exists {
			if isStaff, _ := c.Get(CtxIsStaff); isStaff != true {
				if id, ok := pid.(int64); ok {
					merchantID = &id
				}
			}
		}

		details, _ := json.Marshal(map[string]interface{}{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"status": c.Writer.Status(),
		})

		auditSvc.Log(c.Request.Context(), &domain.AuditLog{
			ID:           uuid.New(),
			MerchantID:   merchantID,
			Action:       action,
			ResourceType: resourceType,
			IPAddress:    c.ClientIP(),
			Details:      string(details),
			CreatedAt:    time.Now(),
		})
	}
}

func mapPathToAction(path, method string) (domain.AuditAction, string) {
	switch {
	case path == "/wallet" && method == "POST":
		return domain.AuditActionCreateWallet, "wallet"
	case path == "/invoice" && method == "POST":
		return domain.AuditActionCreateInvoice, "invoice"
	case path == "/pay/:token" && method == "POST":
		return domain.AuditActionCreateTransaction, "transaction"
	case path == "/attempt/:token" && method == "POST":
		return domain.AuditActionCreateAttempt, "attempt"
	case path == "/visa/:payment_system_id" && method == "POST":
		return domain.AuditActionWebhookIngest, "attempt"
	case path == "/refund/:transaction_token" && method == "POST":
		return domain.AuditActionRefund, "transaction"
	case path == "/auth/register" && method == "POST":
		return domain.AuditActionRegister, "merchant"
	case path == "/auth/login" && method == "POST":
		return domain.AuditActionLogin, "session"
	}
	return "", ""
}
