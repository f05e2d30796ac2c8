package auth

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// OperatorSubject is the token subject granted to holders of the operator key.
const OperatorSubject = "operator"

var (
	// ErrInvalidCredentials is returned when the operator key does not match.
	ErrInvalidCredentials = errors.New("invalid operator key")
	// ErrTokenInvalid is returned for malformed, expired or foreign tokens.
	ErrTokenInvalid = errors.New("invalid or expired token")
)

// Service issues and checks operator tokens. Product writes require one when
// authentication is enabled.
type Service struct {
	keyHash []byte
	tokens  TokenManager
}

// NewService constructs an auth service from a bcrypt hash of the operator key.
func NewService(keyHash string, tokens TokenManager) *Service {
	return &Service{
		keyHash: []byte(strings.TrimSpace(keyHash)),
		tokens:  tokens,
	}
}

// Login exchanges the operator key for a signed token.
func (s *Service) Login(_ context.Context, key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("key is required")
	}
	if err := bcrypt.CompareHashAndPassword(s.keyHash, []byte(key)); err != nil {
		return "", ErrInvalidCredentials
	}
	return s.tokens.Generate(OperatorSubject)
}

// VerifyToken reports whether token is a live operator token.
func (s *Service) VerifyToken(_ context.Context, token string) error {
	subject, err := s.tokens.Validate(token)
	if err != nil || subject != OperatorSubject {
		return ErrTokenInvalid
	}
	return nil
}

// RenewToken issues a fresh token in exchange for a live one.
func (s *Service) RenewToken(ctx context.Context, token string) (string, error) {
	if err := s.VerifyToken(ctx, token); err != nil {
		return "", err
	}
	return s.tokens.Generate(OperatorSubject)
}

// HashKey returns the bcrypt hash to configure as OPERATOR_KEY_HASH.
func HashKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("key is required")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
