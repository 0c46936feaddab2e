package token

import (
	"context"
	"errors"
	"strings"
	"time"

	"todovault.org/internal/ids"
)

// TTL policy: requested lifetimes are clamped into [MinTTL, MaxTTL] no matter
// what the caller asks for. This is a hard security boundary against both
// throwaway near-instant tokens and unbounded-lifetime tokens.
const (
	MinTTL     = time.Minute
	MaxTTL     = 24 * time.Hour
	DefaultTTL = 24 * time.Hour
)

// ClampTTL bounds a requested TTL into the allowed range. Zero and negative
// values are raised to MinTTL.
func ClampTTL(ttl time.Duration) time.Duration {
	if ttl < MinTTL {
		return MinTTL
	}
	if ttl > MaxTTL {
		return MaxTTL
	}
	return ttl
}

// Issuer mints signed tokens and records each issuance in the store.
type Issuer struct {
	codec      *Codec
	store      Store
	defaultTTL time.Duration
	now        func() time.Time
}

// IssuerOption configures Issuer behavior.
type IssuerOption func(*Issuer)

// WithDefaultTTL overrides the lifetime used when the caller requests none.
// The value is clamped like any requested TTL.
func WithDefaultTTL(ttl time.Duration) IssuerOption {
	return func(i *Issuer) {
		if ttl > 0 {
			i.defaultTTL = ttl
		}
	}
}

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) IssuerOption {
	return func(i *Issuer) {
		if fn != nil {
			i.now = fn
		}
	}
}

// NewIssuer constructs an Issuer backed by the given codec and store.
func NewIssuer(codec *Codec, store Store, opts ...IssuerOption) (*Issuer, error) {
	if codec == nil {
		return nil, errors.New("token: codec is required")
	}
	if store == nil {
		return nil, errors.New("token: store is required")
	}
	i := &Issuer{
		codec:      codec,
		store:      store,
		defaultTTL: DefaultTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// Issue mints a token with the configured default TTL.
func (i *Issuer) Issue(ctx context.Context, username string) (*Record, error) {
	return i.IssueWithTTL(ctx, username, i.defaultTTL)
}

// IssueWithTTL mints a token with the requested TTL after clamping. Expiry is
// embedded in the signed token and duplicated into the persisted record so
// store-side queries never need to decode. Every call persists exactly one
// new record.
func (i *Issuer) IssueWithTTL(ctx context.Context, username string, ttl time.Duration) (*Record, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrInvalidInput
	}
	effective := ClampTTL(ttl)

	// JWT timestamps carry second precision; truncate so the signed claim
	// and the stored column agree exactly.
	now := i.now().UTC().Truncate(time.Second)
	expiresAt := now.Add(effective)

	raw, err := i.codec.Encode(username, KindAPI, now, expiresAt, nil)
	if err != nil {
		return nil, err
	}
	rec := &Record{
		ID:        ids.New(),
		Username:  username,
		Token:     raw,
		IssuedAt:  now,
		ExpiresAt: expiresAt,
	}
	if err := i.store.Save(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}
