package data

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base32"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const ScopeAuthentication = "authentication"

// Operator is a dashboard user allowed to trigger pool resets and watch
// room events. Identity comes from the OAuth provider; there is no local
// user table, the session row carries everything.
type Operator struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type Session struct {
	PlainText  string    `json:"token"`
	Hash       []byte    `json:"-"`
	Scope      string    `json:"-"`
	Operator   Operator  `json:"-"`
	ExpiryTime time.Time `json:"expiry_time"`
}

func NewSession(op Operator, ttl time.Duration, scope string) (*Session, error) {
	session := &Session{
		ExpiryTime: time.Now().Add(ttl),
		Operator:   op,
		Scope:      scope,
	}

	b := make([]byte, 32)
	_, err := rand.Read(b)
	if err != nil {
		return nil, err
	}

	session.PlainText = base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(b)
	hash := sha256.Sum256([]byte(session.PlainText))
	session.Hash = hash[:]

	return session, nil
}

type SessionModel struct {
	Pool *pgxpool.Pool
}

func (m *SessionModel) EnsureTable(ctx context.Context) error {
	if m.Pool == nil {
		return ErrNotConfigured
	}
	stmt := `
		CREATE TABLE IF NOT EXISTS sessions(
			hash BYTEA PRIMARY KEY,
			operator_id TEXT NOT NULL,
			operator_name TEXT NOT NULL,
			operator_email TEXT NOT NULL,
			scope TEXT NOT NULL,
			expiry_time TIMESTAMPTZ NOT NULL
		)
	`
	_, err := m.Pool.Exec(ctx, stmt)
	return err
}

func (m *SessionModel) Insert(ctx context.Context, s *Session) error {
	if m.Pool == nil {
		return ErrNotConfigured
	}
	stmt := `
		INSERT INTO sessions(hash, operator_id, operator_name, operator_email, scope, expiry_time)
		VALUES($1, $2, $3, $4, $5, $6)
	`
	args := []any{s.Hash, s.Operator.ID, s.Operator.Username, s.Operator.Email, s.Scope, s.ExpiryTime}
	_, err := m.Pool.Exec(ctx, stmt, args...)
	return err
}

func (m *SessionModel) GetOperator(ctx context.Context, token, scope string) (*Operator, error) {
	if m.Pool == nil {
		return nil, ErrNotConfigured
	}
	hash := sha256.Sum256([]byte(token))

	stmt := `
		SELECT operator_id, operator_name, operator_email FROM sessions
		WHERE hash = $1 AND scope = $2 AND expiry_time >= CURRENT_TIMESTAMP
	`
	var op Operator
	err := m.Pool.QueryRow(ctx, stmt, hash[:], scope).Scan(&op.ID, &op.Username, &op.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &op, nil
}

func (m *SessionModel) DeleteForOperator(ctx context.Context, operatorID, scope string) error {
	if m.Pool == nil {
		return ErrNotConfigured
	}
	// this will log the operator out of all devices
	stmt := `DELETE FROM sessions WHERE operator_id = $1 AND scope = $2`
	_, err := m.Pool.Exec(ctx, stmt, operatorID, scope)
	return err
}
