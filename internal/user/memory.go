package user

import (
	"context"
	"sort"
	"sync"
)

// InMemory implements Store with in-process concurrency safety.
type InMemory struct {
	mu         sync.RWMutex
	byID       map[string]*User
	byUsername map[string]string // username -> id
}

// NewInMemory creates an empty store.
func NewInMemory() *InMemory {
	return &InMemory{
		byID:       make(map[string]*User),
		byUsername: make(map[string]string),
	}
}

var _ Store = (*InMemory)(nil)

func (s *InMemory) Create(ctx context.Context, u *User) error {
	if u == nil || u.ID == "" || u.Username == "" {
		return ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byUsername[u.Username]; ok {
		return ErrAlreadyExists
	}
	cp := copyUser(u)
	s.byID[cp.ID] = cp
	s.byUsername[cp.Username] = cp.ID
	return nil
}

func (s *InMemory) FindByID(ctx context.Context, id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyUser(u), nil
}

func (s *InMemory) FindByUsername(ctx context.Context, username string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byUsername[username]
	if !ok {
		return nil, ErrNotFound
	}
	return copyUser(s.byID[id]), nil
}

func (s *InMemory) List(ctx context.Context) ([]*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]*User, 0, len(s.byID))
	for _, u := range s.byID {
		res = append(res, copyUser(u))
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func (s *InMemory) Update(ctx context.Context, u *User) error {
	if u == nil || u.ID == "" {
		return ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.byID[u.ID]
	if !ok {
		return ErrNotFound
	}
	if current.Username != u.Username {
		// Usernames are immutable; they key ownership everywhere.
		return ErrInvalidInput
	}
	s.byID[u.ID] = copyUser(u)
	return nil
}

func copyUser(u *User) *User {
	cp := *u
	cp.Roles = append([]string(nil), u.Roles...)
	return &cp
}
