package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// FileStore is the Postgres-backed Files repository.
type FileStore struct {
	db *sql.DB
}

func NewFileStore(db *sql.DB) *FileStore {
	return &FileStore{db: db}
}

func (s *FileStore) Create(ctx context.Context, f *File) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO files (id, owner_id, filename, stored_name, uploaded_at, password_hash, expiry_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, f.ID, f.OwnerID, f.Filename, f.StoredName, f.UploadedAt, f.PasswordHash, f.ExpiryDate)
	if err != nil {
		return fmt.Errorf("insert file: %w", err)
	}
	return nil
}

func (s *FileStore) ByID(ctx context.Context, id uuid.UUID) (File, error) {
	var f File
	err := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, filename, stored_name, uploaded_at, password_hash, expiry_date
		FROM files WHERE id = $1
	`, id).Scan(&f.ID, &f.OwnerID, &f.Filename, &f.StoredName, &f.UploadedAt, &f.PasswordHash, &f.ExpiryDate)
	if err == sql.ErrNoRows {
		return File{}, ErrNotFound
	}
	if err != nil {
		return File{}, fmt.Errorf("scan file: %w", err)
	}
	return f, nil
}

func (s *FileStore) ByOwner(ctx context.Context, owner uuid.UUID, now time.Time) ([]File, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, filename, stored_name, uploaded_at, password_hash, expiry_date
		FROM files
		WHERE owner_id = $1 AND (expiry_date IS NULL OR expiry_date > $2)
		ORDER BY uploaded_at DESC
	`, owner, now)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []File
	for rows.Next() {
		var f File
		if err := rows.Scan(&f.ID, &f.OwnerID, &f.Filename, &f.StoredName, &f.UploadedAt, &f.PasswordHash, &f.ExpiryDate); err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (s *FileStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM files WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete file: %w", err)
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
