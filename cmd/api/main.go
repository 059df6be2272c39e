package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"billing-engine/config"
	httpHandler "billing-engine/internal/adapter/http/handler"
	pgStorage "billing-engine/internal/adapter/storage/postgres"
	redisStorage "billing-engine/internal/adapter/storage/redis"
	"billing-engine/internal/core/domain"
	"billing-engine/internal/core/ports"
	"billing-engine/internal/service"
	"billing-engine/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting billing engine")

	ctx := context.Background()

	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// --- Repositories ---
	currencyRepo := pgStorage.NewCurrencyRepo(pool)
	conversionRateRepo := pgStorage.NewConversionRateRepo(pool)
	merchantRepo := pgStorage.NewMerchantRepo(pool)
	staffRepo := pgStorage.NewStaffRepo(pool)
	walletRepo := pgStorage.NewWalletRepo(pool)
	invoiceRepo := pgStorage.NewInvoiceRepo(pool)
	transactionRepo := pgStorage.NewTransactionRepo(pool)
	attemptRepo := pgStorage.NewAttemptRepo(pool)
	paymentSystemRepo := pgStorage.NewPaymentSystemRepo(pool)
	auditRepo := pgStorage.NewAuditRepository(pool)
	transactor := pgStorage.NewTransactor(pool)

	if err := seedPaymentSystems(ctx, paymentSystemRepo, cfg.PaymentSystems); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed payment systems")
	}

	// --- Ambient services ---
	hashSvc := service.NewBcryptHashService()
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
	authSvc := service.NewAuthService(merchantRepo, staffRepo, hashSvc, tokenSvc)
	auditSvc := service.NewAuditService(auditRepo, log)
	walletSvc := service.NewWalletService(walletRepo, currencyRepo)
	reportingSvc := service.NewReportingService(invoiceRepo)

	// --- Engine services (spec.md §4) ---
	conversionGraph := service.NewConversionGraph(conversionRateRepo)
	invoiceEngine := service.NewInvoiceEngine(invoiceRepo, walletRepo, transactionRepo, conversionGraph, transactor, log)
	transactionEngine := service.NewTransactionEngine(transactionRepo, invoiceRepo, attemptRepo, paymentSystemRepo, transactor, log)
	attemptEngine := service.NewAttemptEngine(attemptRepo, transactionRepo, invoiceRepo, paymentSystemRepo, transactor, log)
	webhookIngestor := service.NewWebhookIngestor(paymentSystemRepo, attemptRepo, attemptEngine, transactor, log)

	// --- Health checkers ---
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	if specBytes, err := os.ReadFile("docs/api/openapi.yaml"); err == nil {
		httpHandler.SetSwaggerSpec(specBytes)
		log.Info().Msg("OpenAPI spec loaded for Swagger UI at /swagger")
	} else {
		log.Warn().Err(err).Msg("OpenAPI spec not found, Swagger UI will be unavailable")
	}

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:            authSvc,
		WalletSvc:          walletSvc,
		ReportingSvc:       reportingSvc,
		CurrencyRepo:       currencyRepo,
		ConversionRateRepo: conversionRateRepo,
		ConversionGraph:    conversionGraph,
		InvoiceEngine:      invoiceEngine,
		TransactionRepo:    transactionRepo,
		TransactionEngine:  transactionEngine,
		AttemptEngine:      attemptEngine,
		WebhookIngestor:    webhookIngestor,
		TokenSvc:           tokenSvc,
		HealthCheckers:     []ports.HealthChecker{pgHealth, redisHealth},
		AuditSvc:           auditSvc,
		Logger:             log,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// seedPaymentSystems upserts every configured payment system (name,
// type, Fernet decryption key) so the webhook ingestor and attempt
// engine can resolve them without a separate provisioning step.
func seedPaymentSystems(ctx context.Context, repo ports.PaymentSystemRepository, configs []config.PaymentSystemConfig) error {
	for _, pc := range configs {
		key, err := hex.DecodeString(pc.DecryptionKey)
		if err != nil {
			return fmt.Errorf("decode decryption key for payment system %q: %w", pc.Name, err)
		}
		ps := &domain.PaymentSystem{
			Name:          pc.Name,
			SystemType:    domain.PaymentSystemType(pc.SystemType),
			DecryptionKey: key,
			CreatedAt:     time.Now(),
		}
		if err := repo.Upsert(ctx, ps); err != nil {
			return fmt.Errorf("upsert payment system %q: %w", pc.Name, err)
		}
	}
	return nil
}
