// Package app implements the two core flows behind the HTTP handlers:
// account registration/verification/login, and the upload/list/access/
// delete lifecycle of shared files.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"fileshare-web/internal/notify"
	"fileshare-web/internal/store"
)

const (
	bcryptCost = 12
	codeTTL    = 30 * time.Minute
)

var validate = validator.New()

// Auth implements registration, one-time-code verification and login.
type Auth struct {
	users  store.Users
	sender notify.CodeSender
	log    zerolog.Logger

	// now is swapped out in tests to simulate clock advance.
	now func() time.Time
}

func NewAuth(users store.Users, sender notify.CodeSender, log zerolog.Logger) *Auth {
	return &Auth{users: users, sender: sender, log: log, now: time.Now}
}

// RegisterInput is the registration form. All fields are required.
type RegisterInput struct {
	FirstName string `validate:"required"`
	LastName  string `validate:"required"`
	Email     string `validate:"required,email"`
	Password  string `validate:"required"`
}

// Register creates an unverified account and hands its verification code
// to the configured sender. Delivery failure does not fail registration;
// the account already exists and the user can re-register after expiry.
func (a *Auth) Register(ctx context.Context, in RegisterInput) (store.User, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if err := validate.Struct(in); err != nil {
		return store.User{}, fmt.Errorf("%w: all fields are required", ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return store.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := a.now().UTC()
	code := genCode()
	expiry := now.Add(codeTTL)

	u := store.User{
		ID:           uuid.New(),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		PasswordHash: string(hash),
		VerifyCode:   &code,
		VerifyExpiry: &expiry,
		CreatedAt:    now,
	}
	if err := a.users.Create(ctx, &u); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			return store.User{}, ErrConflict
		}
		return store.User{}, fmt.Errorf("create user: %w", err)
	}

	if err := a.sender.SendCode(u.Email, code); err != nil {
		a.log.Error().Err(err).Str("email", u.Email).Msg("code delivery failed")
	}

	a.log.Info().Str("email", u.Email).Msg("user registered")
	return u, nil
}

// Verify checks the submitted code and activates the account. The code is
// compared before its expiry is checked; expired codes require a fresh
// registration rather than a re-issue.
func (a *Auth) Verify(ctx context.Context, email, code string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return fmt.Errorf("%w: email and code are required", ErrValidation)
	}

	u, err := a.users.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	if u.Verified {
		return ErrAlreadyVerified
	}
	if u.VerifyCode == nil || *u.VerifyCode != code {
		return fmt.Errorf("%w: invalid verification code", ErrValidation)
	}
	if u.VerifyExpiry != nil && u.VerifyExpiry.Before(a.now().UTC()) {
		return ErrCodeExpired
	}

	if err := a.users.MarkVerified(ctx, u.ID); err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}

	a.log.Info().Str("email", email).Msg("user verified")
	return nil
}

// Login validates credentials. An unverified account never logs in; it is
// reported as ErrUnverified so the caller can restart the verification flow.
func (a *Auth) Login(ctx context.Context, email, password string) (store.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := a.users.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.User{}, ErrAuth
		}
		return store.User{}, fmt.Errorf("lookup user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return store.User{}, ErrAuth
	}
	if !u.Verified {
		return store.User{}, ErrUnverified
	}

	return u, nil
}
