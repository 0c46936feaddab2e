package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"todovault.org/internal/ids"
)

const minPasswordLength = 3

// Service provides registration, credential authentication and the admin
// operations on principals.
type Service struct {
	store Store
	now   func() time.Time
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService constructs a Service.
func NewService(store Store, opts ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, errors.New("user: store is required")
	}
	s := &Service{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Register creates a principal with the "user" role.
func (s *Service) Register(ctx context.Context, username, password, confirmPassword string) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	if password == "" {
		return nil, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	if confirmPassword != "" && password != confirmPassword {
		return nil, fmt.Errorf("%w: passwords do not match", ErrInvalidInput)
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters long", ErrInvalidInput, minPasswordLength)
	}
	if _, err := s.store.FindByUsername(ctx, username); err == nil {
		return nil, ErrAlreadyExists
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	u := &User{
		ID:           ids.New(),
		Username:     username,
		PasswordHash: hash,
		Roles:        []string{RoleUser},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Authenticate verifies credentials and account state. Every failure mode
// collapses to ErrInvalidCredentials or ErrAccountDisabled; callers must not
// learn whether the username exists.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	u, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !u.Enabled() {
		return nil, ErrAccountDisabled
	}
	if err := VerifyPassword(u.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// FindByUsername resolves a principal by its unique username.
func (s *Service) FindByUsername(ctx context.Context, username string) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrNotFound
	}
	return s.store.FindByUsername(ctx, username)
}

// List returns every principal. Admin surface only.
func (s *Service) List(ctx context.Context) ([]*User, error) {
	return s.store.List(ctx)
}

// AdminUpdate carries the admin-editable fields. Nil means "leave unchanged";
// for Roles, a non-nil empty slice clears every label.
type AdminUpdate struct {
	AccountExpired     *bool
	AccountLocked      *bool
	CredentialsExpired *bool
	Roles              []string
}

// UpdateAdminFields mutates account-state flags and role labels.
func (s *Service) UpdateAdminFields(ctx context.Context, id string, upd AdminUpdate) (*User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	u, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.AccountExpired != nil {
		u.AccountExpired = *upd.AccountExpired
	}
	if upd.AccountLocked != nil {
		u.AccountLocked = *upd.AccountLocked
	}
	if upd.CredentialsExpired != nil {
		u.CredentialsExpired = *upd.CredentialsExpired
	}
	if upd.Roles != nil {
		u.Roles = dedupeRoles(upd.Roles)
	}
	u.UpdatedAt = s.now().UTC()
	if err := s.store.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}
