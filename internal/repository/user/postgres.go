package user

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"

	"food-delivery/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id::text, fullname, email, password_hash, contact, address, city, country,
       profile_picture, admin, is_verified, last_login, created_at`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) Create(ctx context.Context, u domain.User) (*domain.User, error) {
	const q = `
INSERT INTO users (fullname, email, password_hash, contact, admin)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + userColumns
	return r.scanUser(r.pool.QueryRow(ctx, q,
		u.Fullname,
		strings.ToLower(u.Email),
		u.PasswordHash,
		u.Contact,
		u.Admin,
	))
}

func (r *postgresRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const q = `
SELECT ` + userColumns + `
FROM users
WHERE lower(email) = lower($1)
LIMIT 1
`
	return r.scanUser(r.pool.QueryRow(ctx, q, email))
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const q = `
SELECT ` + userColumns + `
FROM users
WHERE id = $1
LIMIT 1
`
	return r.scanUser(r.pool.QueryRow(ctx, q, id))
}

func (r *postgresRepo) TouchLastLogin(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE users SET last_login = now() WHERE id = $1`, id)
	if err != nil {
		r.logger.Printf("user repo: touch last login id=%s error=%v", id, err)
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) UpdateProfile(ctx context.Context, id string, in ProfileUpdate) (*domain.User, error) {
	const q = `
UPDATE users
SET fullname = COALESCE(NULLIF($2, ''), fullname),
    email = COALESCE(NULLIF(lower($3), ''), email),
    address = $4,
    city = $5,
    country = $6,
    profile_picture = COALESCE(NULLIF($7, ''), profile_picture)
WHERE id = $1
RETURNING ` + userColumns
	return r.scanUser(r.pool.QueryRow(ctx, q, id, in.Fullname, in.Email, in.Address, in.City, in.Country, in.ProfilePicture))
}

func (r *postgresRepo) scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.Fullname,
		&u.Email,
		&u.PasswordHash,
		&u.Contact,
		&u.Address,
		&u.City,
		&u.Country,
		&u.ProfilePicture,
		&u.Admin,
		&u.IsVerified,
		&u.LastLogin,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Printf("user repo: scan error=%v", err)
		return nil, err
	}
	return &u, nil
}
