package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/hris-payroll/internal/config"
	appHTTP "github.com/cmlabs-hris/hris-payroll/internal/handler/http"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/cron"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/i18n"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/sse"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/webhook"
	"github.com/cmlabs-hris/hris-payroll/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/hris-payroll/internal/service/attendance"
	leaveService "github.com/cmlabs-hris/hris-payroll/internal/service/leave"
	notificationService "github.com/cmlabs-hris/hris-payroll/internal/service/notification"
	payrollService "github.com/cmlabs-hris/hris-payroll/internal/service/payroll"
)

const version = "v1.0.0"

func main() {
	if err := run(); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.SlogLevel(),
	})).With(slog.String("app", "hris-payroll"), slog.String("env", cfg.App.Env)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := postgresql.Migrate(ctx, db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		slog.Info("Database schema applied")
	}

	compensationRepo := postgresql.NewCompensationRepository(db)
	payrollRepo := postgresql.NewPayrollRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	leaveRequestRepo := postgresql.NewLeaveRequestRepository(db)
	leaveQuotaRepo := postgresql.NewLeaveQuotaRepository(db)
	notificationRepo := postgresql.NewNotificationRepository(db)

	translator, err := i18n.New(cfg.App.Locale)
	if err != nil {
		return fmt.Errorf("load translations: %w", err)
	}

	hub := sse.NewHub(0)
	defer hub.Close()

	webhookClient := webhook.NewClient(cfg.Notification.WebhookURL, cfg.Notification.WebhookToken, cfg.Notification.WebhookTimeout).
		WithClientCredentials(context.Background(), webhook.ClientCredentials{
			TokenURL:     cfg.Notification.WebhookOAuthTokenURL,
			ClientID:     cfg.Notification.WebhookOAuthClientID,
			ClientSecret: cfg.Notification.WebhookOAuthClientSecret,
			Scopes:       cfg.Notification.WebhookOAuthScopes,
		})
	notifService := notificationService.NewNotificationService(
		notificationRepo,
		hub,
		translator,
		notificationService.NewWebhookDeliverer(webhookClient),
		notificationService.Config{
			BatchSize:     cfg.Notification.BatchSize,
			FlushInterval: cfg.Notification.FlushInterval,
			WorkerCount:   cfg.Notification.Workers,
			QueueSize:     cfg.Notification.QueueSize,
		},
	)
	defer notifService.Stop()

	payrollSvc := payrollService.NewPayrollService(
		compensationRepo,
		payrollRepo,
		attendanceService.NewAggregator(attendanceRepo),
		leaveService.NewAggregator(leaveRequestRepo, leaveQuotaRepo, cfg.Payroll.DefaultLeaveQuota),
		notificationService.NewPayrollNotifier(notifService, cfg.App.Locale),
		payrollService.Options{
			EmployeeTimeout:     cfg.Payroll.EmployeeTimeout,
			DegradeOnFetchError: cfg.Payroll.DegradeOnFetchError,
		},
	)

	if cfg.Payroll.AutoGenerate {
		scheduler := cron.NewScheduler()
		jobs := cron.NewPayrollJobs(payrollSvc, compensationRepo, cfg.Payroll.SystemActor)
		if err := jobs.RegisterJobs(scheduler, cfg.Payroll.AutoGenerateSpec); err != nil {
			return err
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	JWTService := jwt.NewJWTService(cfg.JWT.Secret)
	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{
			Env:            cfg.App.Env,
			Version:        version,
			LogLevel:       cfg.App.SlogLevel(),
			AllowedOrigins: cfg.App.CORSAllowedOrigins,
		},
		JWTService,
		appHTTP.NewPayrollHandler(payrollSvc),
		appHTTP.NewNotificationHandler(notifService, JWTService),
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	// open SSE streams return once the hub closes
	srv.RegisterOnShutdown(hub.Close)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", srv.Addr, "version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	slog.Info("Server stopped")
	return nil
}
