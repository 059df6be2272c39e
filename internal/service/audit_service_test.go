package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"billing-engine/internal/core/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAuditRepository is a hand-rolled in-memory ports.AuditRepository,
// following the donor's fake-repository test convention (no generated
// mocks).
type fakeAuditRepository struct {
	mu      sync.Mutex
	entries []*domain.AuditLog
}

func (f *fakeAuditRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, log)
	return nil
}

func TestAuditService_Log_PersistsToRepo(t *testing.T) {
	repo := &fakeAuditRepository{}
	svc := NewAuditService(repo, newTestLogger())

	merchantID := int64(42)
	svc.Log(context.Background(), &domain.AuditLog{
		ID:           uuid.New(),
		MerchantID:   &merchantID,
		Action:       domain.AuditActionCreateTransaction,
		ResourceType: "transaction",
		ResourceID:   "7",
		IPAddress:    "127.0.0.1",
		CreatedAt:    time.Now(),
	})

	require.Eventually(t, func() bool {
		repo.mu.Lock()
		defer repo.mu.Unlock()
		return len(repo.entries) == 1
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, domain.AuditActionCreateTransaction, repo.entries[0].Action)
}

func TestAuditService_Log_NilRepo(t *testing.T) {
	svc := NewAuditService(nil, newTestLogger())

	merchantID := int64(1)
	// Should not panic.
	svc.Log(context.Background(), &domain.AuditLog{
		ID:           uuid.New(),
		MerchantID:   &merchantID,
		Action:       domain.AuditActionLogin,
		ResourceType: "session",
		IPAddress:    "127.0.0.1",
		CreatedAt:    time.Now(),
	})

	time.Sleep(50 * time.Millisecond)
}
