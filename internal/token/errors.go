package token

import "errors"

var (
	// ErrExpired indicates the signed expiry lies in the past.
	ErrExpired = errors.New("token: expired")
	// ErrInvalidSignature indicates the signature does not match the configured secret.
	ErrInvalidSignature = errors.New("token: invalid signature")
	// ErrMalformed indicates the token is structurally invalid.
	ErrMalformed = errors.New("token: malformed")
	// ErrNotFound indicates the record does not exist in the store.
	ErrNotFound = errors.New("token: not found")
	// ErrInvalidInput indicates missing or unusable caller input.
	ErrInvalidInput = errors.New("token: invalid input")
)
