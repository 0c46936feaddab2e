package user

import (
	"strings"
	"time"
)

// Role labels. Roles gate the administrative surface only; resource access is
// scoped by ownership, not roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is the authenticated principal behind every request. The password
// hash never leaves the service.
type User struct {
	ID           string   `json:"id"`
	Username     string   `json:"username"`
	PasswordHash string   `json:"-"`
	Roles        []string `json:"roles"`

	// Account-state flags gate credential login independent of password
	// correctness.
	AccountExpired     bool `json:"account_expired"`
	AccountLocked      bool `json:"account_locked"`
	CredentialsExpired bool `json:"credentials_expired"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasRole reports whether the user carries the given role label.
func (u *User) HasRole(role string) bool {
	role = strings.TrimSpace(strings.ToLower(role))
	if role == "" {
		return false
	}
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Enabled reports whether no account-state flag blocks authentication.
func (u *User) Enabled() bool {
	return !u.AccountExpired && !u.AccountLocked && !u.CredentialsExpired
}

func dedupeRoles(roles []string) []string {
	if len(roles) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(roles))
	var normalized []string
	for _, role := range roles {
		role = strings.TrimSpace(strings.ToLower(role))
		if role == "" {
			continue
		}
		if _, ok := seen[role]; ok {
			continue
		}
		seen[role] = struct{}{}
		normalized = append(normalized, role)
	}
	return normalized
}
