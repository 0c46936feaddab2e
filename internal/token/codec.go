package token

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuerName = "todovault"

// KindAPI is the token kind accepted by the authentication gate. Tokens
// minted for any other purpose carry a different kind and are rejected.
const KindAPI = "api"

// Claims is the signed payload of a compact token.
type Claims struct {
	Kind  string            `json:"kind"`
	Extra map[string]string `json:"extra,omitempty"`
	jwt.RegisteredClaims
}

// Codec encodes and verifies HS256-signed tokens. The secret is process-wide
// configuration loaded once at startup; rotating it invalidates every
// previously issued token.
type Codec struct {
	secret []byte
	now    func() time.Time
}

// CodecOption configures Codec behavior.
type CodecOption func(*Codec)

// WithDecodeClock overrides the time source used for expiry checks at decode
// time (useful for tests).
func WithDecodeClock(fn func() time.Time) CodecOption {
	return func(c *Codec) {
		if fn != nil {
			c.now = fn
		}
	}
}

// NewCodec constructs a Codec for the given signing secret.
func NewCodec(secret string, opts ...CodecOption) (*Codec, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errors.New("token: signing secret is not configured")
	}
	c := &Codec{
		secret: []byte(secret),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Encode signs a token for the given subject and window. The output is
// deterministic for identical inputs and key: no random claim is embedded.
func (c *Codec) Encode(subject, kind string, issuedAt, expiresAt time.Time, extra map[string]string) (string, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return "", ErrInvalidInput
	}
	if kind == "" {
		kind = KindAPI
	}
	claims := Claims{
		Kind:  kind,
		Extra: extra,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuerName,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", err
	}
	return signed, nil
}

// Decode verifies the signature and expiry and returns the claims.
// Error kinds: ErrExpired, ErrInvalidSignature, ErrMalformed.
func (c *Codec) Decode(raw string) (*Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrMalformed
	}
	parsed, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidSignature
		}
		return c.secret, nil
	}, jwt.WithTimeFunc(c.now), jwt.WithIssuer(issuerName))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrMalformed
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpired
		case errors.Is(err, jwt.ErrTokenInvalidIssuer):
			return nil, ErrMalformed
		default:
			return nil, ErrInvalidSignature
		}
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidSignature
	}
	if strings.TrimSpace(claims.Subject) == "" || claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return nil, ErrMalformed
	}
	return claims, nil
}
