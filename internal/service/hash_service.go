package service

import (
	"golang.org/x/crypto/bcrypt"
)

// BcryptHashService implements ports.HashService using bcrypt, per
// spec.md §3's bcrypt_password_hash column on Merchant/Staff.
type BcryptHashService struct {
	cost int
}

// NewBcryptHashService creates a new bcrypt hash service at the default cost.
func NewBcryptHashService() *BcryptHashService {
	return &BcryptHashService{cost: bcrypt.DefaultCost}
}

// Hash generates a bcrypt hash of the password.
func (s *BcryptHashService) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify checks if a password matches the given bcrypt hash.
func (s *BcryptHashService) Verify(password string, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return true, nil
	}
	if err == bcrypt.ErrMismatchedHashAndPassword {
		return false, nil
	}
	return false, err
}
