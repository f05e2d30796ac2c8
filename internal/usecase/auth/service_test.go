package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTokens struct {
	issued int
}

func (f *fakeTokens) Generate(subject string) (string, error) {
	f.issued++
	return "tok:" + subject, nil
}

func (f *fakeTokens) Validate(token string) (string, error) {
	switch token {
	case "tok:operator":
		return OperatorSubject, nil
	case "tok:someone":
		return "someone", nil
	}
	return "", errors.New("bad token")
}

func newTestService(t *testing.T) (*Service, *fakeTokens) {
	t.Helper()
	hash, err := HashKey("s3cret")
	require.NoError(t, err)
	tokens := &fakeTokens{}
	return NewService(hash, tokens), tokens
}

func TestLogin(t *testing.T) {
	svc, tokens := newTestService(t)
	ctx := context.Background()

	tok, err := svc.Login(ctx, " s3cret ")
	require.NoError(t, err)
	assert.Equal(t, "tok:operator", tok)
	assert.Equal(t, 1, tokens.issued)

	_, err = svc.Login(ctx, "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "")
	assert.Error(t, err)
}

func TestVerifyToken(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	assert.NoError(t, svc.VerifyToken(ctx, "tok:operator"))
	assert.ErrorIs(t, svc.VerifyToken(ctx, "tok:someone"), ErrTokenInvalid)
	assert.ErrorIs(t, svc.VerifyToken(ctx, "junk"), ErrTokenInvalid)
}

func TestRenewToken(t *testing.T) {
	svc, tokens := newTestService(t)
	ctx := context.Background()

	tok, err := svc.RenewToken(ctx, "tok:operator")
	require.NoError(t, err)
	assert.Equal(t, "tok:operator", tok)
	assert.Equal(t, 1, tokens.issued)

	_, err = svc.RenewToken(ctx, "junk")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestHashKeyRejectsEmpty(t *testing.T) {
	_, err := HashKey("  ")
	assert.Error(t, err)
}
