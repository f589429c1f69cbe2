package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("FSW_SESSION_SECRET", "s3cret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Errorf("Addr = %q, want :8080", cfg.Addr)
	}
	if cfg.BaseURL != "http://localhost:8080" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.BlobBackend != "local" || cfg.UploadDir != "uploads" {
		t.Errorf("unexpected blob defaults: %q %q", cfg.BlobBackend, cfg.UploadDir)
	}
	if cfg.SMTPConfigured() {
		t.Errorf("SMTP should not be configured by default")
	}
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("FSW_SESSION_SECRET", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error without session secret")
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "unknown backend",
			env:  map[string]string{"FSW_BLOB_BACKEND": "ftp"},
		},
		{
			name: "incomplete s3 settings",
			env:  map[string]string{"FSW_BLOB_BACKEND": "s3", "FSW_S3_ENDPOINT": "minio:9000"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("FSW_SESSION_SECRET", "s3cret")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestSMTPConfigured(t *testing.T) {
	t.Setenv("FSW_SESSION_SECRET", "s3cret")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_FROM", "noreply@example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.SMTPConfigured() {
		t.Fatalf("expected SMTP to be configured")
	}
	if cfg.SMTPPort != 587 {
		t.Errorf("SMTPPort = %d, want 587", cfg.SMTPPort)
	}
}
