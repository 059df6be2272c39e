package service

import (
	"context"
	"encoding/json"
	"fmt"

	"billing-engine/internal/core/domain"
	"billing-engine/internal/core/ports"
	"billing-engine/pkg/apperror"
	"billing-engine/pkg/fernet"

	"github.com/rs/zerolog"
)

// WebhookIngestorImpl implements ports.WebhookIngestor (spec.md §4.5):
// decrypt a Visa callback, persist its plaintext, and dispatch the
// parsed status into the Attempt Engine — all within one scope so the
// response write and the status cascade commit atomically. Replay of an
// identical ciphertext is rejected by the Attempt's status=pending filter
// (spec.md §8 scenario 6): a second callback finds the attempt already
// closed and returns NotFound, not a dedicated idempotency mechanism.
type WebhookIngestorImpl struct {
	paymentSystems ports.PaymentSystemRepository
	attempts       ports.AttemptRepository
	attemptEngine  ports.AttemptEngine
	transactor     ports.DBTransactor
	log            zerolog.Logger
}

// NewWebhookIngestor creates a new WebhookIngestorImpl.
func NewWebhookIngestor(
	paymentSystems ports.PaymentSystemRepository,
	attempts ports.AttemptRepository,
	attemptEngine ports.AttemptEngine,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *WebhookIngestorImpl {
	return &WebhookIngestorImpl{
		paymentSystems: paymentSystems,
		attempts:       attempts,
		attemptEngine:  attemptEngine,
		transactor:     transactor,
		log:            log,
	}
}

// Ingest implements ports.WebhookIngestor.
func (w *WebhookIngestorImpl) Ingest(ctx context.Context, paymentSystemID int64, ciphertext []byte) error {
	ps, err := w.paymentSystems.GetByIDAndType(ctx, paymentSystemID, domain.PaymentSystemTypeVisa)
	if err != nil {
		return apperror.Internal(fmt.Errorf("lookup payment system: %w", err))
	}
	if ps == nil {
		return apperror.NotFound("payment system")
	}

	key, err := fernet.ParseKey(ps.DecryptionKey)
	if err != nil {
		return apperror.DecryptionError(err)
	}
	// Never logged: the cleartext may carry the attempt's own opaque
	// response bytes once decoded.
	plaintext, _, err := fernet.Decrypt(key, string(ciphertext))
	if err != nil {
		return apperror.DecryptionError(err)
	}

	var payload ports.WebhookPayload
	if err := json.Unmarshal(plaintext, &payload); err != nil {
		return apperror.DecryptionError(fmt.Errorf("decode webhook payload: %w", err))
	}

	ctx, tx, finish, err := Begin(ctx, w.transactor)
	if err != nil {
		return apperror.Internal(err)
	}
	var opErr error
	defer finish(&opErr)

	a, _, _, err := w.attempts.GetPendingWithLineageForUpdate(ctx, tx, payload.AttemptID)
	if err != nil {
		opErr = apperror.Internal(fmt.Errorf("lock attempt: %w", err))
		return opErr
	}
	if a == nil {
		opErr = apperror.NotFound("attempt")
		return opErr
	}
	if err := w.attempts.UpdateStatusAndResponse(ctx, tx, a.ID, domain.AttemptStatusPending, plaintext); err != nil {
		opErr = apperror.Internal(fmt.Errorf("persist webhook response: %w", err))
		return opErr
	}

	switch payload.Status {
	case "success":
		opErr = w.attemptEngine.Success(ctx, a.ID)
	case "fail":
		opErr = w.attemptEngine.Fail(ctx, a.ID)
	case "error":
		opErr = w.attemptEngine.Error(ctx, a.ID)
	default:
		opErr = apperror.Internal(fmt.Errorf("unknown webhook status %q", payload.Status))
	}
	return opErr
}
