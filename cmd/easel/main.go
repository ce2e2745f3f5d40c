// Package main provides the easel binary entry point. It loads configuration
// from the environment (optionally seeded from a .env file), wires the chosen
// storage backend to the gallery service, and serves the HTTP surface until
// the process receives SIGINT or SIGTERM.
//
// The application flow:
//  1. Load .env (if present) and environment configuration.
//  2. Validate configuration and build the session codec.
//  3. Construct the object store (filesystem or S3) and manifest adapter.
//  4. Open the local metrics database and start the flush loop.
//  5. Start the reconciliation janitor and the HTTP server.
//
// It blocks until the server exits or a shutdown signal arrives.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/mattn/go-sqlite3"

	"github.com/mstreet/easel/internal/app"
	"github.com/mstreet/easel/internal/config"
	"github.com/mstreet/easel/internal/httpx"
	"github.com/mstreet/easel/internal/janitor"
	"github.com/mstreet/easel/internal/metrics"
	"github.com/mstreet/easel/internal/session"
	"github.com/mstreet/easel/internal/store"
	"github.com/mstreet/easel/internal/store/filesystem"
	"github.com/mstreet/easel/internal/store/s3"
	wembed "github.com/mstreet/easel/web"
)

// realClock implements app.Clock using time.Now.
type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

// ensureDataDir creates the data directory and the media subdirectory used
// by the filesystem backend. It returns the media dir path.
func ensureDataDir(dir string) (string, error) {
	if st, err := os.Stat(dir); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("stat data directory: %w", err)
		}
		if mkErr := os.MkdirAll(dir, 0o700); mkErr != nil {
			return "", fmt.Errorf("create data directory: %w", mkErr)
		}
	} else if !st.IsDir() {
		return "", fmt.Errorf("data path %s is not a directory", dir)
	}
	mediaDir := filepath.Join(dir, "media")
	if err := os.MkdirAll(mediaDir, 0o700); err != nil {
		return "", fmt.Errorf("create media directory: %w", err)
	}
	return mediaDir, nil
}

// openMetricsDB opens (or creates) the local sqlite metrics database.
func openMetricsDB(ctx context.Context, dataDir string) (*sql.DB, *metrics.Manager, error) {
	db, err := sql.Open("sqlite3", filepath.Join(dataDir, "easel.db"))
	if err != nil {
		return nil, nil, fmt.Errorf("open metrics db: %w", err)
	}
	mgr := metrics.New(db, metrics.Config{})
	if err := mgr.InitSchema(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("init metrics schema: %w", err)
	}
	return db, mgr, nil
}

// buildObjectStore selects the backend named in the configuration.
func buildObjectStore(ctx context.Context, cfg *config.Config, mediaDir string) (app.ObjectStore, error) {
	switch cfg.StorageBackend {
	case config.BackendS3:
		st, err := s3.New(ctx, s3.Options{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			PublicURL: cfg.PublicBaseURL,
		})
		if err != nil {
			return nil, err
		}
		return st, nil
	case config.BackendFilesystem:
		st, err := filesystem.New(mediaDir)
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

func buildService(objects app.ObjectStore, manifest app.ManifestStore, cfg *config.Config) *app.Service {
	return &app.Service{
		Objects:  objects,
		Manifest: manifest,
		Clock:    realClock{},
		Prefix:   cfg.Prefix,
		MaxBytes: cfg.MaxUploadBytes,
	}
}

type templates struct{ index, admin *template.Template }

// loadTemplates parses the public grid and admin console pages from the
// assets filesystem.
func loadTemplates(fsys fs.FS) (*templates, error) {
	index, err := template.ParseFS(fsys, "index.tmpl.html")
	if err != nil {
		return nil, err
	}
	admin, err := template.ParseFS(fsys, "admin.tmpl.html")
	if err != nil {
		return nil, err
	}
	return &templates{index: index, admin: admin}, nil
}

func buildHandler(cfg *config.Config, svc *app.Service, codec *session.Codec, mgr *metrics.Manager, db *sql.DB, mediaDir string, tmpls *templates) http.Handler {
	h := httpx.New(svc, codec, cfg.AdminPassword, cfg.MaxUploadBytes)
	h.CookieSecure = cfg.CookieSecure
	h.Metrics = mgr
	h.IndexTmpl = httpx.TemplateRenderer{T: tmpls.index}
	h.AdminTmpl = httpx.TemplateRenderer{T: tmpls.admin}
	h.Assets = http.FS(wembed.Assets)
	h.MetricsProbe = metrics.Handler(mgr, cfg.MetricsToken)
	if cfg.StorageBackend == config.BackendFilesystem {
		h.MediaDir = mediaDir
	}
	h.Readiness = func(ctx context.Context) error {
		return db.PingContext(ctx)
	}
	return h.Router()
}

func newServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("configuration: %w", err)
	}
	codec, err := session.New(cfg.SigningSecret())
	if err != nil {
		return fmt.Errorf("session codec: %w", err)
	}

	mediaDir, err := ensureDataDir(cfg.DataDir)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, mgr, err := openMetricsDB(ctx, cfg.DataDir)
	if err != nil {
		return err
	}
	defer db.Close()
	mgr.Start(ctx)

	objects, err := buildObjectStore(ctx, cfg, mediaDir)
	if err != nil {
		return fmt.Errorf("object store: %w", err)
	}
	manifest := store.NewManifest(objects, slog.Default())
	svc := buildService(objects, manifest, cfg)

	j := janitor.New(svc, mgr, janitor.Config{
		Interval: cfg.ReconcileEvery,
		Prune:    cfg.ReconcilePrune,
	})
	j.Start(ctx)

	tmpls, err := loadTemplates(wembed.Assets)
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}

	srv := newServer(cfg, buildHandler(cfg, svc, codec, mgr, db, mediaDir, tmpls))
	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", cfg.Addr, "backend", cfg.StorageBackend, "pid", os.Getpid())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		j.Stop()
		mgr.Stop(context.Background())
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown", "err", err)
	}
	j.Stop()
	mgr.Stop(context.Background())
	return <-errCh
}

func main() {
	if err := run(); err != nil {
		slog.Error("server error", "err", err)
		os.Exit(1)
	}
}
