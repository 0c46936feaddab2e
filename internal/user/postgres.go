package user

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// PGStore implements Store using PostgreSQL. Roles are stored as a jsonb
// array on the user row.
type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

var _ Store = (*PGStore)(nil)

const userColumns = `id, username, password_hash, roles, account_expired, account_locked, credentials_expired, created_at, updated_at`

func (s *PGStore) Create(ctx context.Context, u *User) error {
	if u == nil || u.ID == "" || u.Username == "" {
		return ErrInvalidInput
	}
	roles, err := json.Marshal(u.Roles)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`insert into users(id, username, password_hash, roles, account_expired, account_locked, credentials_expired)
		 values($1,$2,$3,$4,$5,$6,$7)`,
		u.ID, u.Username, u.PasswordHash, roles, u.AccountExpired, u.AccountLocked, u.CredentialsExpired,
	)
	return err
}

func (s *PGStore) FindByID(ctx context.Context, id string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+userColumns+` from users where id=$1`, id)
	return scanUser(row)
}

func (s *PGStore) FindByUsername(ctx context.Context, username string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+userColumns+` from users where username=$1`, username)
	return scanUser(row)
}

func (s *PGStore) List(ctx context.Context) ([]*User, error) {
	rows, err := s.db.QueryContext(ctx,
		`select `+userColumns+` from users order by created_at asc`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, u)
	}
	return res, rows.Err()
}

func (s *PGStore) Update(ctx context.Context, u *User) error {
	if u == nil || u.ID == "" {
		return ErrInvalidInput
	}
	roles, err := json.Marshal(u.Roles)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`update users set roles=$2, account_expired=$3, account_locked=$4, credentials_expired=$5, updated_at=$6
		 where id=$1`,
		u.ID, roles, u.AccountExpired, u.AccountLocked, u.CredentialsExpired, u.UpdatedAt,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*User, error) {
	var (
		u     User
		roles []byte
	)
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &roles,
		&u.AccountExpired, &u.AccountLocked, &u.CredentialsExpired, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(roles, &u.Roles); err != nil {
		return nil, fmt.Errorf("user: decode roles: %w", err)
	}
	return &u, nil
}
