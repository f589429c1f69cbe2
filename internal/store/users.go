package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// UserStore is the Postgres-backed Users repository.
type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) Create(ctx context.Context, u *User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, first_name, last_name, email, password_hash, verified, verify_code, verify_expiry, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, u.ID, u.FirstName, u.LastName, u.Email, u.PasswordHash, u.Verified, u.VerifyCode, u.VerifyExpiry, u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *UserStore) ByID(ctx context.Context, id uuid.UUID) (User, error) {
	return s.scanOne(s.db.QueryRowContext(ctx, `
		SELECT id, first_name, last_name, email, password_hash, verified, verify_code, verify_expiry, created_at
		FROM users WHERE id = $1
	`, id))
}

func (s *UserStore) ByEmail(ctx context.Context, email string) (User, error) {
	return s.scanOne(s.db.QueryRowContext(ctx, `
		SELECT id, first_name, last_name, email, password_hash, verified, verify_code, verify_expiry, created_at
		FROM users WHERE email = $1
	`, email))
}

func (s *UserStore) MarkVerified(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET verified = TRUE, verify_code = NULL, verify_expiry = NULL
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *UserStore) scanOne(row *sql.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &u.Verified, &u.VerifyCode, &u.VerifyExpiry, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}
