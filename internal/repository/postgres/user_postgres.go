package postgres

import (
	"context"
	"database/sql"

	"datamorph/internal/model"
	"datamorph/internal/repository"
)

const userColumns = `id, email, password_hash, full_name, tier, storage_used_bytes, email_verified, created_at`

// UserPostgres is the users table.
type UserPostgres struct {
	db *sql.DB
}

func NewUserPostgres(db *sql.DB) *UserPostgres {
	return &UserPostgres{db: db}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

func (r *UserPostgres) Create(ctx context.Context, u *model.User) (*model.User, error) {
	const q = `
		INSERT INTO users (id, email, password_hash, full_name, tier)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + userColumns
	row := r.db.QueryRowContext(ctx, q, u.ID, u.Email, u.PasswordHash, u.FullName, u.Tier)
	return scanUser(row)
}

func (r *UserPostgres) FindByID(ctx context.Context, id string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, q, id))
}

func (r *UserPostgres) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRowContext(ctx, q, email))
}

func (r *UserPostgres) TouchLogin(ctx context.Context, id string) error {
	const q = `UPDATE users SET last_login_at = now() WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	return expectOne(res)
}

func (r *UserPostgres) AddStorageUsed(ctx context.Context, id string, delta int64) error {
	const q = `UPDATE users SET storage_used_bytes = GREATEST(0, storage_used_bytes + $2) WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id, delta)
	if err != nil {
		return err
	}
	return expectOne(res)
}

func (r *UserPostgres) ReserveStorage(ctx context.Context, id string, size, limit int64) error {
	const q = `
		UPDATE users SET storage_used_bytes = storage_used_bytes + $2
		WHERE id = $1 AND storage_used_bytes + $2 <= $3
	`
	res, err := r.db.ExecContext(ctx, q, id, size, limit)
	if err != nil {
		return err
	}
	if err := expectOne(res); err != nil {
		return repository.ErrLimitExceeded
	}
	return nil
}

func scanUser(row scanner) (*model.User, error) {
	var u model.User
	if err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.FullName,
		&u.Tier,
		&u.StorageUsedBytes,
		&u.EmailVerified,
		&u.CreatedAt,
	); err != nil {
		return nil, mapError(err)
	}
	return &u, nil
}
