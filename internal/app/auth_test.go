package app

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestAuth() (*Auth, *fakeUsers, *fakeSender) {
	users := newFakeUsers()
	sender := newFakeSender()
	a := NewAuth(users, sender, zerolog.Nop())
	return a, users, sender
}

func validInput() RegisterInput {
	return RegisterInput{
		FirstName: "A",
		LastName:  "B",
		Email:     "a@x.com",
		Password:  "pw1",
	}
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RegisterInput)
	}{
		{"blank first name", func(in *RegisterInput) { in.FirstName = "" }},
		{"blank last name", func(in *RegisterInput) { in.LastName = "  " }},
		{"blank email", func(in *RegisterInput) { in.Email = "" }},
		{"blank password", func(in *RegisterInput) { in.Password = "" }},
		{"malformed email", func(in *RegisterInput) { in.Email = "not-an-email" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, users, _ := newTestAuth()
			in := validInput()
			tt.mutate(&in)

			_, err := a.Register(context.Background(), in)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			if len(users.byID) != 0 {
				t.Fatalf("no user should have been created")
			}
		})
	}
}

func TestRegisterIssuesCode(t *testing.T) {
	a, users, sender := newTestAuth()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	a.now = func() time.Time { return base }

	u, err := a.Register(context.Background(), validInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if u.Verified {
		t.Fatalf("new user must start unverified")
	}
	code := sender.codes["a@x.com"]
	if !regexp.MustCompile(`^\d{6}$`).MatchString(code) {
		t.Fatalf("expected 6-digit code, got %q", code)
	}
	stored := users.byID[u.ID]
	if stored.VerifyCode == nil || *stored.VerifyCode != code {
		t.Fatalf("persisted code does not match delivered code")
	}
	if stored.VerifyExpiry == nil || !stored.VerifyExpiry.Equal(base.Add(30*time.Minute)) {
		t.Fatalf("expected 30 minute code expiry, got %v", stored.VerifyExpiry)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	a, _, _ := newTestAuth()
	if _, err := a.Register(context.Background(), validInput()); err != nil {
		t.Fatalf("first register: %v", err)
	}

	// Same email, different case and padding: still a conflict.
	in := validInput()
	in.Email = "  A@X.com "
	if _, err := a.Register(context.Background(), in); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestVerifyActivatesOnce(t *testing.T) {
	a, users, sender := newTestAuth()
	u, err := a.Register(context.Background(), validInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := a.Verify(context.Background(), "a@x.com", sender.codes["a@x.com"]); err != nil {
		t.Fatalf("verify: %v", err)
	}

	stored := users.byID[u.ID]
	if !stored.Verified {
		t.Fatalf("user should be verified")
	}
	if stored.VerifyCode != nil || stored.VerifyExpiry != nil {
		t.Fatalf("code and expiry must be cleared after verification")
	}

	// A second attempt is a no-op redirect to login, not a state change.
	if err := a.Verify(context.Background(), "a@x.com", "000000"); !errors.Is(err, ErrAlreadyVerified) {
		t.Fatalf("expected ErrAlreadyVerified, got %v", err)
	}
}

func TestVerifyFailures(t *testing.T) {
	a, users, sender := newTestAuth()
	base := time.Date(2026, 1, 2, 3, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return base }

	u, err := a.Register(context.Background(), validInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	code := sender.codes["a@x.com"]

	if err := a.Verify(context.Background(), "nobody@x.com", code); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown email: expected ErrNotFound, got %v", err)
	}
	if err := a.Verify(context.Background(), "a@x.com", ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("blank code: expected ErrValidation, got %v", err)
	}
	if err := a.Verify(context.Background(), "a@x.com", "999999x"); !errors.Is(err, ErrValidation) {
		t.Fatalf("wrong code: expected ErrValidation, got %v", err)
	}

	// Past the 30 minute window the correct code no longer works and the
	// account stays unverified.
	a.now = func() time.Time { return base.Add(31 * time.Minute) }
	if err := a.Verify(context.Background(), "a@x.com", code); !errors.Is(err, ErrCodeExpired) {
		t.Fatalf("expected ErrCodeExpired, got %v", err)
	}
	if users.byID[u.ID].Verified {
		t.Fatalf("expired verification must not mutate state")
	}
}

func TestLogin(t *testing.T) {
	a, _, sender := newTestAuth()
	if _, err := a.Register(context.Background(), validInput()); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := a.Login(context.Background(), "a@x.com", "wrong"); !errors.Is(err, ErrAuth) {
		t.Fatalf("bad password: expected ErrAuth, got %v", err)
	}
	if _, err := a.Login(context.Background(), "ghost@x.com", "pw1"); !errors.Is(err, ErrAuth) {
		t.Fatalf("unknown user: expected ErrAuth, got %v", err)
	}

	// Correct credentials but unverified: never a session.
	if _, err := a.Login(context.Background(), "a@x.com", "pw1"); !errors.Is(err, ErrUnverified) {
		t.Fatalf("expected ErrUnverified, got %v", err)
	}

	if err := a.Verify(context.Background(), "a@x.com", sender.codes["a@x.com"]); err != nil {
		t.Fatalf("verify: %v", err)
	}
	u, err := a.Login(context.Background(), "A@x.com ", "pw1")
	if err != nil {
		t.Fatalf("login after verify: %v", err)
	}
	if u.Email != "a@x.com" {
		t.Fatalf("unexpected user: %+v", u)
	}
}
