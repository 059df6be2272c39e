package service

import (
	"context"
	"fmt"
	"time"

	"billing-engine/internal/core/domain"
	"billing-engine/internal/core/ports"
	"billing-engine/pkg/apperror"
)

// AuthServiceImpl implements ports.AuthService: merchant registration and
// merchant/staff login against HTTP basic-auth credentials, issuing a
// bearer session token on success (spec.md §6's "basic-auth" note,
// supplemented with a JWT session per SPEC_FULL.md §6.2).
type AuthServiceImpl struct {
	merchants ports.MerchantRepository
	staff     ports.StaffRepository
	hashSvc   ports.HashService
	tokenSvc  ports.TokenService
}

// NewAuthService creates a new AuthServiceImpl.
func NewAuthService(
	merchants ports.MerchantRepository,
	staff ports.StaffRepository,
	hashSvc ports.HashService,
	tokenSvc ports.TokenService,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		merchants: merchants,
		staff:     staff,
		hashSvc:   hashSvc,
		tokenSvc:  tokenSvc,
	}
}

// RegisterMerchant implements ports.AuthService.
func (s *AuthServiceImpl) RegisterMerchant(ctx context.Context, username, password string) (*domain.Merchant, error) {
	existing, err := s.merchants.GetByUsername(ctx, username)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("check username: %w", err))
	}
	if existing != nil {
		return nil, apperror.Validation("username already exists")
	}

	hash, err := s.hashSvc.Hash(password)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("hash password: %w", err))
	}

	m := &domain.Merchant{
		Username:           username,
		BcryptPasswordHash: hash,
		CreatedAt:          time.Now(),
	}
	if err := s.merchants.Create(ctx, m); err != nil {
		return nil, apperror.Internal(fmt.Errorf("create merchant: %w", err))
	}
	return m, nil
}

// Login implements ports.AuthService: verifies basic-auth credentials
// against the merchant or staff table and returns a signed session token.
func (s *AuthServiceImpl) Login(ctx context.Context, username, password string, asStaff bool) (string, time.Time, error) {
	if asStaff {
		st, err := s.staff.GetByUsername(ctx, username)
		if err != nil {
			return "", time.Time{}, apperror.Internal(fmt.Errorf("find staff: %w", err))
		}
		if st == nil {
			return "", time.Time{}, apperror.Unauthorized("incorrect staff credentials")
		}
		ok, err := s.hashSvc.Verify(password, st.BcryptPasswordHash)
		if err != nil {
			return "", time.Time{}, apperror.Internal(fmt.Errorf("verify password: %w", err))
		}
		if !ok {
			return "", time.Time{}, apperror.Unauthorized("incorrect staff credentials")
		}
		return s.issueToken(st.ID, true)
	}

	m, err := s.merchants.GetByUsername(ctx, username)
	if err != nil {
		return "", time.Time{}, apperror.Internal(fmt.Errorf("find merchant: %w", err))
	}
	if m == nil {
		return "", time.Time{}, apperror.Unauthorized("incorrect merchant credentials")
	}
	ok, err := s.hashSvc.Verify(password, m.BcryptPasswordHash)
	if err != nil {
		return "", time.Time{}, apperror.Internal(fmt.Errorf("verify password: %w", err))
	}
	if !ok {
		return "", time.Time{}, apperror.Unauthorized("incorrect merchant credentials")
	}
	return s.issueToken(m.ID, false)
}

func (s *AuthServiceImpl) issueToken(principalID int64, isStaff bool) (string, time.Time, error) {
	token, expiry, err := s.tokenSvc.Generate(principalID, isStaff)
	if err != nil {
		return "", time.Time{}, apperror.Internal(fmt.Errorf("generate token: %w", err))
	}
	return token, expiry, nil
}
