package user

import "errors"

var (
	ErrNotFound           = errors.New("user: not found")
	ErrAlreadyExists      = errors.New("user: already exists")
	ErrInvalidInput       = errors.New("user: invalid input")
	ErrInvalidCredentials = errors.New("user: invalid credentials")
	// ErrAccountDisabled covers every account-state flag (expired, locked,
	// credentials expired) without revealing which one tripped.
	ErrAccountDisabled = errors.New("user: account disabled")
)
