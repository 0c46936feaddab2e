package todo

import "time"

// Todo is an owned resource. Username is stamped by the service on creation
// and keys every subsequent lookup. ListID is empty when unassigned.
type Todo struct {
	ID        string    `json:"id"`
	Username  string    `json:"-"`
	Text      string    `json:"text"`
	Done      bool      `json:"done"`
	ListID    string    `json:"list_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// List is a parent resource for todos. It cannot be deleted while it still
// owns one or more todos.
type List struct {
	ID        string    `json:"id"`
	Username  string    `json:"-"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
