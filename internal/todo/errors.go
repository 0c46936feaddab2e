package todo

import "errors"

var (
	// ErrNotFound covers both genuinely absent resources and resources owned
	// by someone else; callers cannot tell the two apart.
	ErrNotFound = errors.New("todo: not found")
	// ErrListNotEmpty blocks deleting a list that still owns todos.
	ErrListNotEmpty = errors.New("todo: list still has todos")
	ErrInvalidInput = errors.New("todo: invalid input")
)
