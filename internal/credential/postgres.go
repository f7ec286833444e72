package credential

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

var _ Store = (*PGStore)(nil)

// PGStore implements Store using PostgreSQL.
type PGStore struct {
	db *sql.DB
}

// Open connects to PostgreSQL and returns a PGStore with tuned pool defaults.
func Open(dsn string) (*PGStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &PGStore{db: db}, nil
}

// NewPGStore wraps an existing connection pool.
func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Close() error { return s.db.Close() }

func (s *PGStore) DB() *sql.DB { return s.db }

func (s *PGStore) Create(ctx context.Context, c *Credential) error {
	_, err := s.db.ExecContext(ctx,
		`insert into credentials(id, user_id, email, password_hash, is_active) values($1,$2,$3,$4,$5)`,
		c.ID, c.UserID, c.Email, c.PasswordHash, c.Active,
	)
	if isUniqueViolation(err) {
		return ErrAlreadyExists
	}
	return err
}

func (s *PGStore) FindByEmail(ctx context.Context, email string) (*Credential, error) {
	row := s.db.QueryRowContext(ctx,
		`select id, user_id, email, password_hash, is_active, created_at, updated_at from credentials where email=$1`,
		email,
	)
	var c Credential
	if err := row.Scan(&c.ID, &c.UserID, &c.Email, &c.PasswordHash, &c.Active, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (s *PGStore) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	res, err := s.db.ExecContext(ctx,
		`update credentials set password_hash=$2, updated_at=now() where email=$1`,
		email, passwordHash,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *PGStore) Deactivate(ctx context.Context, email string) error {
	res, err := s.db.ExecContext(ctx,
		`update credentials set is_active=false, updated_at=now() where email=$1`,
		email,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
