package todo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"todovault.org/internal/ids"
)

// Service enforces ownership scoping over the store: lookups are filtered by
// the calling principal, creations are stamped with it, and cross-owner
// access is indistinguishable from absence.
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
		return nil, errors.New("todo: store is required")
	}
	s := &Service{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Todos returns the caller's todos, optionally filtered by done state.
func (s *Service) Todos(ctx context.Context, owner string, done *bool) ([]*Todo, error) {
	all, err := s.store.ListTodos(ctx, owner)
	if err != nil {
		return nil, err
	}
	if done == nil {
		return all, nil
	}
	filtered := make([]*Todo, 0, len(all))
	for _, t := range all {
		if t.Done == *done {
			filtered = append(filtered, t)
		}
	}
	return filtered, nil
}

// CountTodos returns how many todos the caller owns.
func (s *Service) CountTodos(ctx context.Context, owner string) (int, error) {
	all, err := s.store.ListTodos(ctx, owner)
	if err != nil {
		return 0, err
	}
	return len(all), nil
}

// Todo returns one of the caller's todos by id.
func (s *Service) Todo(ctx context.Context, owner, id string) (*Todo, error) {
	return s.store.FindTodo(ctx, id, owner)
}

// CreateTodo stamps the new todo with the calling principal; any owner the
// caller supplied is overwritten.
func (s *Service) CreateTodo(ctx context.Context, owner, text string) (*Todo, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: text is required", ErrInvalidInput)
	}
	now := s.now().UTC()
	t := &Todo{
		ID:        ids.New(),
		Username:  owner,
		Text:      text,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateTodo(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// UpdateTodo replaces text and done state of the caller's todo.
func (s *Service) UpdateTodo(ctx context.Context, owner, id, text string, done bool) (*Todo, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: text is required", ErrInvalidInput)
	}
	t, err := s.store.FindTodo(ctx, id, owner)
	if err != nil {
		return nil, err
	}
	t.Text = text
	t.Done = done
	t.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateTodo(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// SetDone flips the done flag on the caller's todo.
func (s *Service) SetDone(ctx context.Context, owner, id string, done bool) (*Todo, error) {
	t, err := s.store.FindTodo(ctx, id, owner)
	if err != nil {
		return nil, err
	}
	t.Done = done
	t.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateTodo(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// DeleteTodo removes the caller's todo and returns it.
func (s *Service) DeleteTodo(ctx context.Context, owner, id string) (*Todo, error) {
	t, err := s.store.FindTodo(ctx, id, owner)
	if err != nil {
		return nil, err
	}
	if err := s.store.DeleteTodo(ctx, id, owner); err != nil {
		return nil, err
	}
	return t, nil
}

// AssignToList moves the caller's todo into one of the caller's lists, or
// unassigns it when listID is empty. Both ends are ownership-checked before
// anything changes; the move is never partially applied.
func (s *Service) AssignToList(ctx context.Context, owner, todoID, listID string) (*Todo, error) {
	t, err := s.store.FindTodo(ctx, todoID, owner)
	if err != nil {
		return nil, err
	}
	listID = strings.TrimSpace(listID)
	if listID != "" {
		if _, err := s.store.FindList(ctx, listID, owner); err != nil {
			return nil, err
		}
	}
	t.ListID = listID
	t.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateTodo(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Lists returns the caller's lists.
func (s *Service) Lists(ctx context.Context, owner string) ([]*List, error) {
	return s.store.ListLists(ctx, owner)
}

// List returns one of the caller's lists by id.
func (s *Service) List(ctx context.Context, owner, id string) (*List, error) {
	return s.store.FindList(ctx, id, owner)
}

// CreateList stamps the new list with the calling principal.
func (s *Service) CreateList(ctx context.Context, owner, name string) (*List, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	now := s.now().UTC()
	l := &List{
		ID:        ids.New(),
		Username:  owner,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateList(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// UpdateList renames the caller's list.
func (s *Service) UpdateList(ctx context.Context, owner, id, name string) (*List, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	l, err := s.store.FindList(ctx, id, owner)
	if err != nil {
		return nil, err
	}
	l.Name = name
	l.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateList(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// DeleteList removes the caller's list. It fails with ErrListNotEmpty while
// the list still owns todos; children are never implicitly detached.
func (s *Service) DeleteList(ctx context.Context, owner, id string) (*List, error) {
	l, err := s.store.FindList(ctx, id, owner)
	if err != nil {
		return nil, err
	}
	count, err := s.store.CountTodosInList(ctx, id, owner)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrListNotEmpty
	}
	if err := s.store.DeleteList(ctx, id, owner); err != nil {
		return nil, err
	}
	return l, nil
}
