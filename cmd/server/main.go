package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	"signupdesk/internal/adapters/activityapi"
	web "signupdesk/internal/adapters/http"
	"signupdesk/internal/adapters/http/perf"
	"signupdesk/internal/adapters/storage"
	"signupdesk/internal/adapters/storage/localstore"
	"signupdesk/internal/application/controller"
	"signupdesk/internal/config"
	platformotel "signupdesk/internal/platform/otel"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	slog.SetDefault(cfg.NewLogger())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := platformotel.Setup(ctx, "signupdesk", cfg.OTELEndpoint)
	if err != nil {
		log.Fatalf("failed to set up tracing: %v", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			slog.Warn("tracing_shutdown_failed", "error", err)
		}
	}()

	// Durable client storage for the teacher session
	db, err := storage.Open(cfg.StorePath)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer db.Close()
	if err := storage.MigrateDB(db); err != nil {
		log.Fatalf("failed to migrate store: %v", err)
	}

	// Performance instrumentation: wrap DB with timing, share the collector with
	// the upstream client and the request middleware
	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector, cfg.SlowQueryMs)

	api := activityapi.New(cfg.APIBaseURL,
		activityapi.WithTimeout(cfg.UpstreamTimeout),
		activityapi.WithCollector(collector),
	)
	ctrl := controller.New(controller.Deps{
		API:       api,
		Store:     localstore.NewSQLiteStore(timedDB),
		Messenger: controller.NewMessenger(cfg.MessageTTL),
	})
	defer ctrl.Messenger().Stop()
	if err := ctrl.Start(ctx); err != nil {
		log.Fatalf("failed to restore session: %v", err)
	}

	csrfKey, err := cfg.CSRFKeyBytes()
	if err != nil {
		log.Fatalf("failed to load CSRF key: %v", err)
	}
	handler, err := web.NewMux(ctrl, collector, web.Options{
		CSRFKey:            csrfKey,
		SecureCookies:      cfg.IsProduction(),
		TrustedOrigins:     cfg.CSRFOrigins(),
		SlowRequestMs:      cfg.SlowRequestMs,
		RateLimitPerSecond: cfg.RateLimit,
	})
	if err != nil {
		log.Fatalf("failed to build handler: %v", err)
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			slog.Error("shutdown_failed", "error", err)
		}
	}()

	slog.Info("signupdesk starting",
		"version", version,
		"addr", cfg.ListenAddr,
		"api", cfg.APIBaseURL,
		"env", cfg.Env,
		"schema", storage.LatestSchemaVersion(),
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server failed: %v", err)
	}
	slog.Info("signupdesk stopped")
}
