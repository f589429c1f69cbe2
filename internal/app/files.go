package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"fileshare-web/internal/blob"
	"fileshare-web/internal/store"
)

// allowedExtensions is the upload allow-list, matched case-insensitively
// against the last dot-segment of the original filename.
var allowedExtensions = map[string]bool{
	"txt": true, "pdf": true, "png": true, "jpg": true, "jpeg": true,
	"gif": true, "zip": true, "rar": true, "doc": true, "docx": true,
	"xls": true, "xlsx": true,
}

func allowedFile(name string) bool {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return false
	}
	return allowedExtensions[strings.ToLower(name[i+1:])]
}

// sanitizeFilename reduces a browser-supplied filename to its base name.
// Some browsers send a full client-side path (notably with backslashes);
// only the final segment is meaningful.
func sanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	if name == "." || name == ".." {
		return ""
	}
	return name
}

// Files implements the upload/list/access/delete lifecycle.
type Files struct {
	files store.Files
	blobs blob.Store
	log   zerolog.Logger

	now func() time.Time
}

func NewFiles(files store.Files, blobs blob.Store, log zerolog.Logger) *Files {
	return &Files{files: files, blobs: blobs, log: log, now: time.Now}
}

// storedName builds the disk key for an upload: UTC timestamp, a short
// random token, then the original name. The token makes same-second
// uploads of the same file collision-free.
func (s *Files) storedName(original string) string {
	return s.now().UTC().Format("20060102150405") + "_" + genToken() + "_" + original
}

// Upload validates and persists one file for owner. The blob is written
// first and the metadata row second; if the insert fails the blob is
// removed again so no orphan bytes are left behind.
func (s *Files) Upload(ctx context.Context, owner uuid.UUID, r io.Reader, originalName, filePassword string, expireDays int) (store.File, error) {
	originalName = sanitizeFilename(originalName)
	if originalName == "" {
		return store.File{}, ErrNoFile
	}
	if !allowedFile(originalName) {
		return store.File{}, fmt.Errorf("%w: file type not allowed", ErrValidation)
	}

	now := s.now().UTC()

	var expiry *time.Time
	if expireDays > 0 {
		e := now.Add(time.Duration(expireDays) * 24 * time.Hour)
		expiry = &e
	}

	var pwHash *string
	if filePassword = strings.TrimSpace(filePassword); filePassword != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(filePassword), bcryptCost)
		if err != nil {
			return store.File{}, fmt.Errorf("hash file password: %w", err)
		}
		hs := string(h)
		pwHash = &hs
	}

	f := store.File{
		ID:           uuid.New(),
		OwnerID:      owner,
		Filename:     originalName,
		StoredName:   s.storedName(originalName),
		UploadedAt:   now,
		PasswordHash: pwHash,
		ExpiryDate:   expiry,
	}

	if err := s.blobs.Put(ctx, f.StoredName, r, -1); err != nil {
		return store.File{}, fmt.Errorf("store blob: %w", err)
	}
	if err := s.files.Create(ctx, &f); err != nil {
		// Compensate: the blob exists but its record does not.
		if rerr := s.blobs.Remove(ctx, f.StoredName); rerr != nil {
			s.log.Warn().Err(rerr).Str("stored_name", f.StoredName).Msg("orphan blob cleanup failed")
		}
		return store.File{}, fmt.Errorf("create file record: %w", err)
	}

	s.log.Info().Str("file_id", f.ID.String()).Str("filename", f.Filename).Msg("file uploaded")
	return f, nil
}

// List returns the owner's files newest-first. Expired rows are hidden,
// not purged; they stay in the table but never show up here again.
func (s *Files) List(ctx context.Context, owner uuid.UUID) ([]store.File, error) {
	return s.files.ByOwner(ctx, owner, s.now().UTC())
}

// Stat returns the record for a shared link, failing on missing or
// expired files. Callers use it to decide whether a password prompt is
// needed before the actual download.
func (s *Files) Stat(ctx context.Context, id uuid.UUID) (store.File, error) {
	f, err := s.files.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.File{}, ErrNotFound
		}
		return store.File{}, fmt.Errorf("lookup file: %w", err)
	}
	if f.ExpiryDate != nil && !f.ExpiryDate.After(s.now().UTC()) {
		return store.File{}, ErrExpired
	}
	return f, nil
}

// Download is an open blob stream plus the display name for the
// Content-Disposition header. The caller must Close it.
type Download struct {
	io.ReadCloser
	Filename string
}

// Access opens a file for download. Anyone holding the link may call
// this; ownership is only checked on delete. A password-protected file
// requires the correct password, everything else streams directly.
func (s *Files) Access(ctx context.Context, id uuid.UUID, password string) (Download, error) {
	f, err := s.Stat(ctx, id)
	if err != nil {
		return Download{}, err
	}

	if f.PasswordHash != nil {
		if bcrypt.CompareHashAndPassword([]byte(*f.PasswordHash), []byte(password)) != nil {
			return Download{}, fmt.Errorf("%w: incorrect password", ErrAuth)
		}
	}

	rc, err := s.blobs.Open(ctx, f.StoredName)
	if err != nil {
		return Download{}, fmt.Errorf("open blob: %w", err)
	}
	return Download{ReadCloser: rc, Filename: f.Filename}, nil
}

// Delete removes a file the session user owns. Blob removal is
// best-effort: a failure is logged and the record is removed regardless,
// keeping the metadata consistent even if orphan bytes linger.
func (s *Files) Delete(ctx context.Context, owner, id uuid.UUID) error {
	f, err := s.files.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrPermission
		}
		return fmt.Errorf("lookup file: %w", err)
	}
	if f.OwnerID != owner {
		return ErrPermission
	}

	if err := s.blobs.Remove(ctx, f.StoredName); err != nil {
		s.log.Warn().Err(err).Str("stored_name", f.StoredName).Msg("blob removal failed")
	}

	if err := s.files.Delete(ctx, id); err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("delete file record: %w", err)
	}

	s.log.Info().Str("file_id", id.String()).Msg("file deleted")
	return nil
}
