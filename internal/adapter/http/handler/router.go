package handler

import (
	"billing-engine/internal/adapter/http/middleware"
	"billing-engine/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc            ports.AuthService
	WalletSvc          ports.WalletService
	ReportingSvc       ports.ReportingService
	CurrencyRepo       ports.CurrencyRepository
	ConversionRateRepo ports.ConversionRateRepository
	ConversionGraph    ports.ConversionGraphService
	InvoiceEngine      ports.InvoiceEngine
	TransactionRepo    ports.TransactionRepository
	TransactionEngine  ports.TransactionEngine
	AttemptEngine      ports.AttemptEngine
	WebhookIngestor    ports.WebhookIngestor
	TokenSvc           ports.TokenService
	HealthCheckers     []ports.HealthChecker
	AuditSvc           ports.AuditService // nil = audit logging disabled
	Logger             zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware
// per spec.md §6's external interfaces table.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	if deps.AuditSvc != nil {
		r.Use(middleware.AuditLog(deps.AuditSvc))
	}

	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	swagger := r.Group("/swagger")
	{
		swagger.GET("", SwaggerUI)
		swagger.GET("/spec", SwaggerSpec)
	}

	user := middleware.RequireUser(deps.TokenSvc)
	merchant := middleware.RequireMerchant(deps.TokenSvc)
	staff := middleware.RequireStaff(deps.TokenSvc)
	optional := middleware.OptionalUser(deps.TokenSvc)

	// --- Session bootstrap (ambient, SPEC_FULL.md §6.2) ---
	authHandler := NewAuthHandler(deps.AuthSvc)
	auth := r.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	// --- Currency / conversion graph (any) ---
	currencyHandler := NewCurrencyHandler(deps.CurrencyRepo, deps.ConversionRateRepo, deps.ConversionGraph)
	r.GET("/currencies", currencyHandler.ListCurrencies)
	r.GET("/rates/:from_id", currencyHandler.Rates)
	r.POST("/rates", staff, currencyHandler.SetRate)

	// --- Wallets ---
	walletHandler := NewWalletHandler(deps.WalletSvc)
	r.GET("/wallets", user, walletHandler.ListWallets)
	r.POST("/wallet", merchant, walletHandler.CreateWallet)

	// --- Invoices / payment ---
	invoiceHandler := NewInvoiceHandler(deps.ReportingSvc, deps.InvoiceEngine)
	r.GET("/invoices", user, invoiceHandler.ListInvoices)
	r.POST("/invoice", merchant, invoiceHandler.CreateInvoice)
	r.GET("/pay/:token", invoiceHandler.GetPaymentInfo)
	r.POST("/pay/:token", optional, invoiceHandler.CreateTransaction)

	// --- Attempts ---
	attemptHandler := NewAttemptHandler(deps.TransactionRepo, deps.TransactionEngine, deps.AttemptEngine)
	r.GET("/attempt/:token", attemptHandler.ListPaymentSystems)
	r.POST("/attempt/:token", attemptHandler.CreateAttempt)

	// --- Webhook ingress (ciphertext-authenticated, no bearer/basic auth) ---
	webhookHandler := NewWebhookHandler(deps.WebhookIngestor)
	r.POST("/visa/:payment_system_id", webhookHandler.Ingest)

	// --- Refunds (staff only) ---
	refundHandler := NewRefundHandler(deps.TransactionRepo, deps.TransactionEngine)
	r.POST("/refund/:transaction_token", staff, refundHandler.Refund)

	return r
}
