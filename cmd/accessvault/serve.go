package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/accessvault/internal/adapter/driven/aesgcm"
	"github.com/ericfisherdev/accessvault/internal/adapter/driven/memory"
	sqliteadapter "github.com/ericfisherdev/accessvault/internal/adapter/driven/sqlite"
	httphandler "github.com/ericfisherdev/accessvault/internal/adapter/driving/http"
	"github.com/ericfisherdev/accessvault/internal/application"
	"github.com/ericfisherdev/accessvault/internal/telemetry"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the daily expiration monitor",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return serve()
		},
	}
}

func serve() error {
	// 1. Load configuration (fail fast on a missing or malformed key).
	cfg, logger, err := loadConfig(true)
	if err != nil {
		return err
	}
	logger.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"alert_window_days", cfg.AlertWindowDays,
		"scan_hour", cfg.ScanHour,
		"identity_header", cfg.IdentityHeader,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Build the cipher from the sealed key.
	var cipher *aesgcm.Engine
	if err := cfg.WithKey(func(key []byte) error {
		var keyErr error
		cipher, keyErr = aesgcm.New(key)
		return keyErr
	}); err != nil {
		return err
	}

	// 4. Open database and run migrations.
	db, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore(db, logger)

	// 5. Wire adapters.
	credentialStore := sqliteadapter.NewCredentialRepo(db)
	userStore := sqliteadapter.NewUserRepo(db)
	auditLog := sqliteadapter.NewAuditRepo(db)
	notificationStore := memory.NewNotificationStore(nil)
	clock := application.SystemClock{}
	metrics := telemetry.New()
	metrics.TrackNotifications(notificationStore.Len)

	// 6. Seed the user directory when a file is configured.
	if cfg.UsersFile != "" {
		n, err := importUserFile(ctx, userStore, cfg.UsersFile, seedActor)
		if err != nil {
			return err
		}
		logger.Info("users imported", "file", cfg.UsersFile, "count", n)
	}

	// 7. Create services and start the expiration monitor.
	vaultSvc := application.NewVaultService(
		credentialStore,
		userStore,
		auditLog,
		cipher,
		clock,
		cfg.AlertWindowDays,
		application.WithVaultLogger(logger),
		application.WithVaultMetrics(metrics),
	)
	monitor := application.NewExpirationMonitor(
		credentialStore,
		notificationStore,
		clock,
		cfg.AlertWindowDays,
		application.WithMonitorLogger(logger),
		application.WithMonitorMetrics(metrics),
		application.WithScanHour(cfg.ScanHour),
	)
	monitorDone := runInBackground(ctx, monitor)

	notificationSvc := application.NewNotificationService(userStore, notificationStore, monitor, logger)
	userSvc := application.NewUserService(userStore, logger)
	healthSvc := application.NewHealthService(db, monitor)

	// 8. Create HTTP handler and server.
	apiHandler := httphandler.NewHandler(vaultSvc, notificationSvc, userSvc, healthSvc, cfg.IdentityHeader, logger)
	handler := httphandler.NewServeMux(apiHandler, logger, metrics.Handler(), metrics)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	logger.Info("accessvault started", "version", version)

	// 9. Wait for shutdown signal or a listener failure.
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-serveErr:
		logger.Error("http server error", "error", err)
		stop()
	}

	// 10. Graceful shutdown with 10s timeout for in-flight requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	// 11. Wait for the monitor so no scan is still reading when the store closes.
	<-monitorDone

	logger.Info("shutdown complete")
	return nil
}

// backgroundTask blocks until its context is canceled.
type backgroundTask interface {
	Start(ctx context.Context)
}

// runInBackground starts task in a goroutine. The returned channel is closed
// once Start returns.
func runInBackground(ctx context.Context, task backgroundTask) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		task.Start(ctx)
	}()
	return done
}
