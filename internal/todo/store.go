package todo

import "context"

// Store persists todos and lists. Every find/update/delete is keyed by both
// id and owner so a foreign-owned resource behaves exactly like a missing one.
type Store interface {
	CreateTodo(ctx context.Context, t *Todo) error
	FindTodo(ctx context.Context, id, owner string) (*Todo, error)
	ListTodos(ctx context.Context, owner string) ([]*Todo, error)
	UpdateTodo(ctx context.Context, t *Todo) error
	DeleteTodo(ctx context.Context, id, owner string) error
	CountTodosInList(ctx context.Context, listID, owner string) (int, error)

	CreateList(ctx context.Context, l *List) error
	FindList(ctx context.Context, id, owner string) (*List, error)
	ListLists(ctx context.Context, owner string) ([]*List, error)
	UpdateList(ctx context.Context, l *List) error
	DeleteList(ctx context.Context, id, owner string) error
}
