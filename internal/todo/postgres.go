package todo

import (
	"context"
	"database/sql"
)

// PGStore implements Store using PostgreSQL.
type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

var _ Store = (*PGStore)(nil)

func (s *PGStore) CreateTodo(ctx context.Context, t *Todo) error {
	if t == nil || t.ID == "" || t.Username == "" {
		return ErrInvalidInput
	}
	_, err := s.db.ExecContext(ctx,
		`insert into todos(id, username, text, done, list_id) values($1,$2,$3,$4,nullif($5,''))`,
		t.ID, t.Username, t.Text, t.Done, t.ListID,
	)
	return err
}

func (s *PGStore) FindTodo(ctx context.Context, id, owner string) (*Todo, error) {
	row := s.db.QueryRowContext(ctx,
		`select id, username, text, done, coalesce(list_id, ''), created_at, updated_at
		 from todos where id=$1 and username=$2`, id, owner)
	return scanTodo(row)
}

func (s *PGStore) ListTodos(ctx context.Context, owner string) ([]*Todo, error) {
	rows, err := s.db.QueryContext(ctx,
		`select id, username, text, done, coalesce(list_id, ''), created_at, updated_at
		 from todos where username=$1 order by created_at asc`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*Todo
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	return res, rows.Err()
}

func (s *PGStore) UpdateTodo(ctx context.Context, t *Todo) error {
	if t == nil || t.ID == "" {
		return ErrInvalidInput
	}
	res, err := s.db.ExecContext(ctx,
		`update todos set text=$3, done=$4, list_id=nullif($5,''), updated_at=$6
		 where id=$1 and username=$2`,
		t.ID, t.Username, t.Text, t.Done, t.ListID, t.UpdatedAt,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (s *PGStore) DeleteTodo(ctx context.Context, id, owner string) error {
	res, err := s.db.ExecContext(ctx,
		`delete from todos where id=$1 and username=$2`, id, owner)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (s *PGStore) CountTodosInList(ctx context.Context, listID, owner string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`select count(*) from todos where list_id=$1 and username=$2`, listID, owner).Scan(&count)
	return count, err
}

func (s *PGStore) CreateList(ctx context.Context, l *List) error {
	if l == nil || l.ID == "" || l.Username == "" {
		return ErrInvalidInput
	}
	_, err := s.db.ExecContext(ctx,
		`insert into todo_lists(id, username, name) values($1,$2,$3)`,
		l.ID, l.Username, l.Name,
	)
	return err
}

func (s *PGStore) FindList(ctx context.Context, id, owner string) (*List, error) {
	row := s.db.QueryRowContext(ctx,
		`select id, username, name, created_at, updated_at
		 from todo_lists where id=$1 and username=$2`, id, owner)
	var l List
	if err := row.Scan(&l.ID, &l.Username, &l.Name, &l.CreatedAt, &l.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &l, nil
}

func (s *PGStore) ListLists(ctx context.Context, owner string) ([]*List, error) {
	rows, err := s.db.QueryContext(ctx,
		`select id, username, name, created_at, updated_at
		 from todo_lists where username=$1 order by created_at asc`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*List
	for rows.Next() {
		var l List
		if err := rows.Scan(&l.ID, &l.Username, &l.Name, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		res = append(res, &l)
	}
	return res, rows.Err()
}

func (s *PGStore) UpdateList(ctx context.Context, l *List) error {
	if l == nil || l.ID == "" {
		return ErrInvalidInput
	}
	res, err := s.db.ExecContext(ctx,
		`update todo_lists set name=$3, updated_at=$4 where id=$1 and username=$2`,
		l.ID, l.Username, l.Name, l.UpdatedAt,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (s *PGStore) DeleteList(ctx context.Context, id, owner string) error {
	res, err := s.db.ExecContext(ctx,
		`delete from todo_lists where id=$1 and username=$2`, id, owner)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTodo(row rowScanner) (*Todo, error) {
	var t Todo
	err := row.Scan(&t.ID, &t.Username, &t.Text, &t.Done, &t.ListID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
