package token

import (
	"context"
	"database/sql"
	"time"
)

// PGStore implements Store using PostgreSQL.
type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

var _ Store = (*PGStore)(nil)

const recordColumns = `id, username, token, issued_at, expires_at, revoked, revoked_at`

func (s *PGStore) Save(ctx context.Context, rec *Record) error {
	if rec == nil || rec.ID == "" || rec.Token == "" {
		return ErrInvalidInput
	}
	_, err := s.db.ExecContext(ctx,
		`insert into api_tokens(id, username, token, issued_at, expires_at, revoked) values($1,$2,$3,$4,$5,false)`,
		rec.ID, rec.Username, rec.Token, rec.IssuedAt, rec.ExpiresAt,
	)
	return err
}

func (s *PGStore) FindByToken(ctx context.Context, raw string) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+recordColumns+` from api_tokens where token=$1`, raw)
	return scanRecord(row)
}

func (s *PGStore) FindAllByOwner(ctx context.Context, username string) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`select `+recordColumns+` from api_tokens where username=$1 order by issued_at asc`, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRecords(rows)
}

func (s *PGStore) ListAll(ctx context.Context) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`select `+recordColumns+` from api_tokens order by issued_at asc`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRecords(rows)
}

// Revoke marks the record revoked. The guard on revoked=false makes repeated
// calls no-op successes that keep the original revocation timestamp.
func (s *PGStore) Revoke(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`update api_tokens set revoked = true, revoked_at = $2 where id = $1 and revoked = false`,
		id, at.UTC())
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}
	// Either already revoked (fine) or missing (not found).
	var revoked bool
	err = s.db.QueryRowContext(ctx, `select revoked from api_tokens where id=$1`, id).Scan(&revoked)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	return err
}

func (s *PGStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from api_tokens where id=$1`, id)
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

func scanRecord(row rowScanner) (*Record, error) {
	var (
		rec       Record
		revokedAt sql.NullTime
	)
	if err := row.Scan(&rec.ID, &rec.Username, &rec.Token, &rec.IssuedAt, &rec.ExpiresAt, &rec.Revoked, &revokedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if revokedAt.Valid {
		at := revokedAt.Time
		rec.RevokedAt = &at
	}
	return &rec, nil
}

func collectRecords(rows *sql.Rows) ([]*Record, error) {
	var res []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, rec)
	}
	return res, rows.Err()
}
