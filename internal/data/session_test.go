package data_test

import (
	"crypto/sha256"
	"testing"
	"time"

	"github.com/kickbu2towski/breakout-api/internal/data"
	"github.com/stretchr/testify/require"
)

func TestNewSession(t *testing.T) {
	op := data.Operator{ID: "op-1", Username: "Pat", Email: "pat@example.com"}

	session, err := data.NewSession(op, 24*time.Hour, data.ScopeAuthentication)
	require.NoError(t, err)

	require.NotEmpty(t, session.PlainText)
	require.Equal(t, data.ScopeAuthentication, session.Scope)
	require.Equal(t, op, session.Operator)
	require.True(t, session.ExpiryTime.After(time.Now()))

	hash := sha256.Sum256([]byte(session.PlainText))
	require.Equal(t, hash[:], session.Hash)
}

func TestNewSessionTokensAreUnique(t *testing.T) {
	op := data.Operator{ID: "op-1", Username: "Pat", Email: "pat@example.com"}

	a, err := data.NewSession(op, time.Hour, data.ScopeAuthentication)
	require.NoError(t, err)
	b, err := data.NewSession(op, time.Hour, data.ScopeAuthentication)
	require.NoError(t, err)

	require.NotEqual(t, a.PlainText, b.PlainText)
}
