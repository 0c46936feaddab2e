package token

import (
	"context"
	"time"
)

// Record is the durable counterpart of an issued token. The signed string is
// immutable; the record carries the mutable revocation state.
// Invariant: RevokedAt is set if and only if Revoked is true.
type Record struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	Token     string     `json:"token"`
	IssuedAt  time.Time  `json:"issued_at"`
	ExpiresAt time.Time  `json:"expires_at"`
	Revoked   bool       `json:"revoked"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
}

// Store persists issued token records.
//
// Revoke is idempotent: revoking an already-revoked record is a no-op success
// and keeps the original revocation timestamp. Records are never un-revoked.
type Store interface {
	Save(ctx context.Context, rec *Record) error
	FindByToken(ctx context.Context, raw string) (*Record, error)
	FindAllByOwner(ctx context.Context, username string) ([]*Record, error)
	ListAll(ctx context.Context) ([]*Record, error)
	Revoke(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
}

// IsActive is the single source of truth for "is this token still usable".
// It must be evaluated fresh on every request; caching the result across
// requests would delay revocation.
func IsActive(rec *Record, now time.Time) bool {
	if rec == nil {
		return false
	}
	return !rec.Revoked && rec.ExpiresAt.After(now)
}
