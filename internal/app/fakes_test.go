package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"time"

	"github.com/google/uuid"

	"fileshare-web/internal/store"
)

// In-memory fakes for the repositories, the blob store and the code
// sender. They implement just enough for the service tests.

type fakeUsers struct {
	byID map[uuid.UUID]store.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[uuid.UUID]store.User{}}
}

func (f *fakeUsers) Create(_ context.Context, u *store.User) error {
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return store.ErrDuplicateEmail
		}
	}
	f.byID[u.ID] = *u
	return nil
}

func (f *fakeUsers) ByID(_ context.Context, id uuid.UUID) (store.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return store.User{}, store.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) ByEmail(_ context.Context, email string) (store.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return store.User{}, store.ErrNotFound
}

func (f *fakeUsers) MarkVerified(_ context.Context, id uuid.UUID) error {
	u, ok := f.byID[id]
	if !ok {
		return store.ErrNotFound
	}
	u.Verified = true
	u.VerifyCode = nil
	u.VerifyExpiry = nil
	f.byID[id] = u
	return nil
}

type fakeFiles struct {
	byID      map[uuid.UUID]store.File
	createErr error
}

func newFakeFiles() *fakeFiles {
	return &fakeFiles{byID: map[uuid.UUID]store.File{}}
}

func (f *fakeFiles) Create(_ context.Context, file *store.File) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.byID[file.ID] = *file
	return nil
}

func (f *fakeFiles) ByID(_ context.Context, id uuid.UUID) (store.File, error) {
	file, ok := f.byID[id]
	if !ok {
		return store.File{}, store.ErrNotFound
	}
	return file, nil
}

func (f *fakeFiles) ByOwner(_ context.Context, owner uuid.UUID, now time.Time) ([]store.File, error) {
	var out []store.File
	for _, file := range f.byID {
		if file.OwnerID != owner {
			continue
		}
		if file.ExpiryDate != nil && !file.ExpiryDate.After(now) {
			continue
		}
		out = append(out, file)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UploadedAt.After(out[j].UploadedAt)
	})
	return out, nil
}

func (f *fakeFiles) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.byID[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

type fakeBlobs struct {
	m map[string][]byte
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{m: map[string][]byte{}}
}

func (f *fakeBlobs) Put(_ context.Context, name string, r io.Reader, _ int64) error {
	if _, exists := f.m[name]; exists {
		return errors.New("blob already exists")
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.m[name] = b
	return nil
}

func (f *fakeBlobs) Open(_ context.Context, name string) (io.ReadCloser, error) {
	b, ok := f.m[name]
	if !ok {
		return nil, errors.New("no such blob")
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (f *fakeBlobs) Remove(_ context.Context, name string) error {
	if _, ok := f.m[name]; !ok {
		return errors.New("no such blob")
	}
	delete(f.m, name)
	return nil
}

// fakeSender records the last code issued per email.
type fakeSender struct {
	codes map[string]string
}

func newFakeSender() *fakeSender {
	return &fakeSender{codes: map[string]string{}}
}

func (f *fakeSender) SendCode(email, code string) error {
	f.codes[email] = code
	return nil
}
