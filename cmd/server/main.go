package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/janisto/huma-dashboard/internal/http/health"
	"github.com/janisto/huma-dashboard/internal/http/v1/routes"
	"github.com/janisto/huma-dashboard/internal/platform/auth"
	"github.com/janisto/huma-dashboard/internal/platform/config"
	"github.com/janisto/huma-dashboard/internal/platform/firebase"
	applog "github.com/janisto/huma-dashboard/internal/platform/logging"
	appmiddleware "github.com/janisto/huma-dashboard/internal/platform/middleware"
	"github.com/janisto/huma-dashboard/internal/platform/postgres"
	"github.com/janisto/huma-dashboard/internal/platform/respond"
	"github.com/janisto/huma-dashboard/internal/service/account"
	"github.com/janisto/huma-dashboard/internal/service/feedback"
	"github.com/janisto/huma-dashboard/internal/service/profile"
	"github.com/janisto/huma-dashboard/internal/service/storage"
	"github.com/janisto/huma-dashboard/internal/settings"
	"github.com/janisto/huma-dashboard/internal/upload"
)

// Version can be overridden at build time: -ldflags "-X main.Version=1.2.3"
var Version = "dev"

// app bundles what the router needs.
type app struct {
	verifier auth.Verifier
	accounts account.Service
	sessions *settings.Sessions
	checks   map[string]health.Check
	origins  []string
}

func main() {
	defer func() {
		if err := applog.Sync(); err != nil {
			applog.LogError(context.Background(), "logger sync error", err)
		}
	}()
	if err := applog.Err(); err != nil {
		applog.LogError(context.Background(), "logger init error", err)
	}

	if err := run(); err != nil {
		applog.LogError(context.Background(), "server failed", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := applog.SetLevel(cfg.LogLevel); err != nil {
		return err
	}

	ctx, cancelSweep := context.WithCancel(context.Background())
	defer cancelSweep()
	a, cleanup, err := wire(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()
	go a.sessions.Run(ctx, time.Minute)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(a),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    64 << 10, // 64 KB
	}

	listenErr := make(chan error, 1)
	go func() {
		applog.LogInfo(ctx, "server listening",
			zap.String("addr", srv.Addr),
			zap.String("store", cfg.StoreBackend),
			zap.String("storage", cfg.StorageBackend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			listenErr <- err
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-listenErr:
		return fmt.Errorf("listen on %s: %w", srv.Addr, err)
	case <-stop:
		applog.LogInfo(ctx, "shutdown signal received")
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		applog.LogError(shutdownCtx, "server shutdown error", err)
	}
	applog.LogInfo(ctx, "server exited")
	return nil
}

// wire builds the collaborators selected by cfg. The returned cleanup closes
// every client that was opened.
func wire(ctx context.Context, cfg *config.Config) (*app, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	fail := func(err error) (*app, func(), error) {
		cleanup()
		return nil, nil, err
	}

	clients, err := firebase.InitializeClients(ctx, firebase.Config{
		ProjectID:                    cfg.FirebaseProjectID,
		GoogleApplicationCredentials: cfg.GoogleApplicationCredentials,
		StorageBucket:                cfg.Bucket(),
		WithFirestore:                cfg.StoreBackend == config.BackendFirestore,
		WithStorage:                  cfg.StorageBackend == config.StorageGCS,
	})
	if err != nil {
		return fail(fmt.Errorf("firebase: %w", err))
	}
	closers = append(closers, func() { _ = clients.Close() })

	checks := map[string]health.Check{}

	var (
		profiles  profile.Service
		feedbacks feedback.Service
	)
	switch cfg.StoreBackend {
	case config.BackendFirestore:
		profiles = profile.NewFirestoreStore(clients.Firestore)
		feedbacks = feedback.NewFirestoreStore(clients.Firestore)
	case config.BackendPostgres:
		db, err := postgres.Open(ctx, cfg.DatabaseDSN)
		if err != nil {
			return fail(fmt.Errorf("postgres: %w", err))
		}
		closers = append(closers, func() { _ = db.Close() })
		checks["postgres"] = pinger(db)
		profiles = profile.NewPostgresStore(db)
		feedbacks = feedback.NewPostgresStore(db)
	default:
		profiles = profile.NewMockProfileService()
		feedbacks = feedback.NewMockFeedbackService()
	}

	var store storage.Store
	switch cfg.StorageBackend {
	case config.StorageGCS:
		store = storage.NewGCSStore(clients.Bucket, cfg.Bucket(), cfg.PublicBaseURL)
	case config.StorageS3:
		s3cfg := storage.S3Config{
			Bucket:        cfg.StorageBucket,
			Region:        cfg.S3Region,
			Endpoint:      cfg.S3Endpoint,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			PublicBaseURL: cfg.PublicBaseURL,
		}
		client, err := storage.NewS3Client(ctx, s3cfg)
		if err != nil {
			return fail(fmt.Errorf("s3: %w", err))
		}
		store = storage.NewS3Store(client, s3cfg)
	default:
		store = storage.NewMockStore(cfg.PublicBaseURL)
	}

	toolkit := account.NewIdentityToolkit(identityToolkitURL(cfg), cfg.FirebaseAPIKey, &http.Client{Timeout: 10 * time.Second})
	accounts := account.NewFirebaseService(clients.Auth, toolkit, profiles, cfg.SiteURL)

	sessions := settings.NewSessions(settings.Deps{
		Profiles:     profiles,
		Feedback:     feedbacks,
		Accounts:     accounts,
		Storage:      store,
		AvatarPolicy: upload.AvatarPolicy.WithMaxBytes(cfg.AvatarMaxBytes),
		IdleTTL:      cfg.SessionIdleTTL,
	})

	return &app{
		verifier: auth.NewFirebaseVerifier(clients.Auth),
		accounts: accounts,
		sessions: sessions,
		checks:   checks,
		origins:  []string{cfg.SiteURL},
	}, cleanup, nil
}

// identityToolkitURL points the REST client at the Auth emulator when one is
// configured.
func identityToolkitURL(cfg *config.Config) string {
	if cfg.IdentityToolkitURL != "" {
		return cfg.IdentityToolkitURL
	}
	if host := os.Getenv("FIREBASE_AUTH_EMULATOR_HOST"); host != "" {
		return "http://" + host + "/identitytoolkit.googleapis.com/v1"
	}
	return ""
}

func pinger(db *sql.DB) health.Check {
	return func(ctx context.Context) error { return db.PingContext(ctx) }
}

func newRouter(a *app) http.Handler {
	router := chi.NewRouter()
	router.NotFound(respond.NotFoundHandler())
	router.MethodNotAllowed(respond.MethodNotAllowedHandler())

	// Base middleware stack
	router.Use(
		appmiddleware.Security("/api-docs"),
		appmiddleware.Vary(),
		appmiddleware.CORS(a.origins...),
		appmiddleware.RequestID(),
		// RealIP extracts client IP from X-Real-IP or X-Forwarded-For headers.
		// SECURITY: Only use behind a trusted reverse proxy (e.g., Cloud Run, nginx).
		chimiddleware.RealIP,
		// Multipart forms carry avatars and attachments; operations enforce tighter limits.
		chimiddleware.RequestSize(10<<20),
		applog.RequestLogger(),
		applog.AccessLogger(),
		respond.Recoverer(),
	)

	router.Get("/health", health.Handler)
	router.Get("/ready", health.Ready(a.checks))

	cfg := huma.DefaultConfig("Dashboard API", Version)
	cfg.DocsPath = "/api-docs"
	cfg.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearerAuth": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "JWT",
		},
	}
	api := humachi.New(router, cfg)

	// Add CBOR content type to OpenAPI requests and responses
	api.OpenAPI().OnAddOperation = append(api.OpenAPI().OnAddOperation,
		func(_ *huma.OpenAPI, op *huma.Operation) {
			if op.RequestBody != nil && op.RequestBody.Content != nil {
				if jsonContent, ok := op.RequestBody.Content["application/json"]; ok {
					op.RequestBody.Content["application/cbor"] = jsonContent
				}
			}
			for _, resp := range op.Responses {
				if resp.Content == nil {
					continue
				}
				if jsonContent, ok := resp.Content["application/json"]; ok {
					resp.Content["application/cbor"] = jsonContent
				}
			}
		},
	)

	routes.Register(api, a.verifier, a.accounts, a.sessions)
	return router
}
