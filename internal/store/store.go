// Package store is the persistence layer: repository interfaces over the
// two relational entities (users and file records) plus their Postgres
// implementations and embedded schema migrations.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a looked-up row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEmail is returned when an insert trips the unique
	// constraint on users.email.
	ErrDuplicateEmail = errors.New("email already registered")
)

// User is an account row. VerifyCode and VerifyExpiry are set while the
// account is pending verification and cleared once it is verified.
type User struct {
	ID           uuid.UUID
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Verified     bool
	VerifyCode   *string
	VerifyExpiry *time.Time
	CreatedAt    time.Time
}

// File is the metadata row for one uploaded blob. Filename is the
// user-facing name; StoredName is the randomized disk key. A nil
// PasswordHash means no password is required; a nil ExpiryDate means the
// file never expires.
type File struct {
	ID           uuid.UUID
	OwnerID      uuid.UUID
	Filename     string
	StoredName   string
	UploadedAt   time.Time
	PasswordHash *string
	ExpiryDate   *time.Time
}

// Users persists accounts.
type Users interface {
	Create(ctx context.Context, u *User) error
	ByID(ctx context.Context, id uuid.UUID) (User, error)
	ByEmail(ctx context.Context, email string) (User, error)
	// MarkVerified sets verified=true and clears the code and its expiry.
	MarkVerified(ctx context.Context, id uuid.UUID) error
}

// Files persists file metadata.
type Files interface {
	Create(ctx context.Context, f *File) error
	ByID(ctx context.Context, id uuid.UUID) (File, error)
	// ByOwner returns the owner's files newest-first, excluding rows whose
	// expiry is at or before now. Expired rows stay in the table.
	ByOwner(ctx context.Context, owner uuid.UUID, now time.Time) ([]File, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
