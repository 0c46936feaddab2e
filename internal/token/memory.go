package token

import (
	"context"
	"sort"
	"sync"
	"time"
)

// InMemory implements Store with in-process concurrency safety. Revocation is
// atomic with respect to readers: a concurrent FindByToken sees either the
// fully-unrevoked or fully-revoked record, never an intermediate state.
type InMemory struct {
	mu      sync.RWMutex
	byID    map[string]*Record
	byToken map[string]string // raw token -> record id
}

// NewInMemory creates an empty store.
func NewInMemory() *InMemory {
	return &InMemory{
		byID:    make(map[string]*Record),
		byToken: make(map[string]string),
	}
}

var _ Store = (*InMemory)(nil)

func (s *InMemory) Save(ctx context.Context, rec *Record) error {
	if rec == nil || rec.ID == "" || rec.Token == "" {
		return ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byToken[rec.Token]; ok {
		return ErrInvalidInput
	}
	cp := *rec
	s.byID[cp.ID] = &cp
	s.byToken[cp.Token] = cp.ID
	return nil
}

func (s *InMemory) FindByToken(ctx context.Context, raw string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byToken[raw]
	if !ok {
		return nil, ErrNotFound
	}
	return copyRecord(s.byID[id]), nil
}

func (s *InMemory) FindAllByOwner(ctx context.Context, username string) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var res []*Record
	for _, rec := range s.byID {
		if rec.Username == username {
			res = append(res, copyRecord(rec))
		}
	}
	sortRecords(res)
	return res, nil
}

func (s *InMemory) ListAll(ctx context.Context) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]*Record, 0, len(s.byID))
	for _, rec := range s.byID {
		res = append(res, copyRecord(rec))
	}
	sortRecords(res)
	return res, nil
}

func (s *InMemory) Revoke(ctx context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	if rec.Revoked {
		// Idempotent: the first revocation timestamp stands.
		return nil
	}
	at = at.UTC()
	rec.Revoked = true
	rec.RevokedAt = &at
	return nil
}

func (s *InMemory) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.byToken, rec.Token)
	delete(s.byID, id)
	return nil
}

func copyRecord(rec *Record) *Record {
	cp := *rec
	if rec.RevokedAt != nil {
		at := *rec.RevokedAt
		cp.RevokedAt = &at
	}
	return &cp
}

func sortRecords(recs []*Record) {
	sort.Slice(recs, func(i, j int) bool { return recs[i].ID < recs[j].ID })
}
