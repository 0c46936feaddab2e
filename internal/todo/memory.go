package todo

import (
	"context"
	"sort"
	"sync"
)

// InMemory implements Store with in-process concurrency safety.
type InMemory struct {
	mu    sync.RWMutex
	todos map[string]*Todo
	lists map[string]*List
}

// NewInMemory creates an empty store.
func NewInMemory() *InMemory {
	return &InMemory{
		todos: make(map[string]*Todo),
		lists: make(map[string]*List),
	}
}

var _ Store = (*InMemory)(nil)

func (s *InMemory) CreateTodo(ctx context.Context, t *Todo) error {
	if t == nil || t.ID == "" || t.Username == "" {
		return ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *t
	s.todos[cp.ID] = &cp
	return nil
}

func (s *InMemory) FindTodo(ctx context.Context, id, owner string) (*Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.todos[id]
	if !ok || t.Username != owner {
		return nil, ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *InMemory) ListTodos(ctx context.Context, owner string) ([]*Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var res []*Todo
	for _, t := range s.todos {
		if t.Username == owner {
			cp := *t
			res = append(res, &cp)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func (s *InMemory) UpdateTodo(ctx context.Context, t *Todo) error {
	if t == nil || t.ID == "" {
		return ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.todos[t.ID]
	if !ok || current.Username != t.Username {
		return ErrNotFound
	}
	cp := *t
	s.todos[cp.ID] = &cp
	return nil
}

func (s *InMemory) DeleteTodo(ctx context.Context, id, owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.todos[id]
	if !ok || t.Username != owner {
		return ErrNotFound
	}
	delete(s.todos, id)
	return nil
}

func (s *InMemory) CountTodosInList(ctx context.Context, listID, owner string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, t := range s.todos {
		if t.Username == owner && t.ListID == listID {
			count++
		}
	}
	return count, nil
}

func (s *InMemory) CreateList(ctx context.Context, l *List) error {
	if l == nil || l.ID == "" || l.Username == "" {
		return ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *l
	s.lists[cp.ID] = &cp
	return nil
}

func (s *InMemory) FindList(ctx context.Context, id, owner string) (*List, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.lists[id]
	if !ok || l.Username != owner {
		return nil, ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (s *InMemory) ListLists(ctx context.Context, owner string) ([]*List, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var res []*List
	for _, l := range s.lists {
		if l.Username == owner {
			cp := *l
			res = append(res, &cp)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func (s *InMemory) UpdateList(ctx context.Context, l *List) error {
	if l == nil || l.ID == "" {
		return ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.lists[l.ID]
	if !ok || current.Username != l.Username {
		return ErrNotFound
	}
	cp := *l
	s.lists[cp.ID] = &cp
	return nil
}

func (s *InMemory) DeleteList(ctx context.Context, id, owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lists[id]
	if !ok || l.Username != owner {
		return ErrNotFound
	}
	delete(s.lists, id)
	return nil
}
