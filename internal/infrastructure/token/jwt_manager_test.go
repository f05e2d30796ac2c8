package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	m := NewJWTManager("secret", time.Hour, "minishop")
	tok, err := m.Generate("operator")
	require.NoError(t, err)

	sub, err := m.Validate(tok)
	require.NoError(t, err)
	assert.Equal(t, "operator", sub)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	tok, err := NewJWTManager("secret", time.Hour, "minishop").Generate("operator")
	require.NoError(t, err)

	_, err = NewJWTManager("other", time.Hour, "minishop").Validate(tok)
	assert.Error(t, err)
}

func TestValidateRejectsWrongIssuer(t *testing.T) {
	tok, err := NewJWTManager("secret", time.Hour, "someone-else").Generate("operator")
	require.NoError(t, err)

	_, err = NewJWTManager("secret", time.Hour, "minishop").Validate(tok)
	assert.Error(t, err)
}

func TestValidateRejectsExpired(t *testing.T) {
	m := NewJWTManager("secret", time.Minute, "minishop")
	issued := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	m.nowFunc = func() time.Time { return issued }
	tok, err := m.Generate("operator")
	require.NoError(t, err)

	m.nowFunc = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err = m.Validate(tok)
	assert.Error(t, err)
}

func TestValidateRejectsGarbage(t *testing.T) {
	_, err := NewJWTManager("secret", time.Hour, "minishop").Validate("not-a-token")
	assert.Error(t, err)
}
