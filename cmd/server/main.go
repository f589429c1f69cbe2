package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"fileshare-web/internal/app"
	"fileshare-web/internal/blob"
	"fileshare-web/internal/config"
	"fileshare-web/internal/notify"
	"fileshare-web/internal/server"
	"fileshare-web/internal/store"
)

func main() {
	log := zerolog.New(os.Stderr).With().Timestamp().Str("service", "fileshare").Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	db, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}
	defer func() { _ = db.Close() }()

	log.Info().Msg("running migrations")
	if err := store.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	var blobs blob.Store
	switch cfg.BlobBackend {
	case "s3":
		blobs, err = blob.NewMinIO(context.Background(), blob.MinIOConfig{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
		})
	default:
		blobs, err = blob.NewLocal(cfg.UploadDir)
	}
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.BlobBackend).Msg("blob store init failed")
	}

	var sender notify.CodeSender
	if cfg.SMTPConfigured() {
		sender = notify.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom)
	} else {
		// No mail relay configured: verification codes go to the console.
		sender = notify.LogSender{Logger: log}
	}

	users := store.NewUserStore(db)
	files := store.NewFileStore(db)

	auth := app.NewAuth(users, sender, log)
	lifecycle := app.NewFiles(files, blobs, log)

	srv := server.New(server.Config{
		Addr:    cfg.Addr,
		BaseURL: cfg.BaseURL,
		Session: server.SessionConfig{
			Secret: cfg.SessionSecret,
			TTL:    12 * time.Hour,
		},
		MaxUploadBytes: cfg.MaxUploadBytes,
	}, auth, lifecycle, users, log)

	// Start the HTTP server in a background goroutine so we can listen
	// for OS signals while it runs.
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Msg("starting")
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
		// Give in-flight requests 5 seconds to finish.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Fatal().Err(err).Msg("shutdown error")
		}
		log.Info().Msg("shutdown complete")
	case err := <-errCh:
		if err != nil {
			log.Fatal().Err(err).Msg("server error")
		}
	}
}
