package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/capsulehq/portal-auth/pkg/config"
	"github.com/capsulehq/portal-auth/pkg/enrollment"
	enrollmentapi "github.com/capsulehq/portal-auth/pkg/enrollment/api"
	"github.com/capsulehq/portal-auth/pkg/instancemeta"
	"github.com/capsulehq/portal-auth/pkg/notice"
)

type Config struct {
	Server     config.ServerConfig
	Db         config.DbConfig
	Email      config.EmailConfig
	Enrollment config.EnrollmentConfig
}

func main() {
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		slog.Error("Failed to load config", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var repo enrollment.EnrollmentRepository
	switch cfg.Enrollment.Storage {
	case "memory":
		slog.Warn("Using in-memory enrollment storage, not suitable for multi-instance deployments")
		repo = enrollment.NewInMemEnrollmentRepository()
	default:
		pool, err := pgxpool.New(ctx, cfg.Db.ToDatabaseURL())
		if err != nil {
			slog.Error("Failed to create database pool", "err", err)
			os.Exit(1)
		}
		defer pool.Close()
		repo = enrollment.NewPostgresEnrollmentRepository(pool)
	}

	notificationManager, err := notice.NewNotificationManager(cfg.Email.ToSMTPConfig())
	if err != nil {
		slog.Error("Failed to create notification manager", "err", err)
		os.Exit(1)
	}

	enrollmentService := enrollment.NewService(repo,
		enrollment.WithIssuer(cfg.Enrollment.Issuer),
		enrollment.WithNotificationManager(notificationManager),
	)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Mount("/api/mfa", enrollmentapi.Routes(enrollmentapi.NewHandle(enrollmentService)))
	r.Mount("/api/system-info", instancemeta.Routes(instancemeta.NewClient()))

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	go func() {
		slog.Info("Starting portal service", "addr", cfg.Server.Addr, "issuer", cfg.Enrollment.Issuer)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server error", "err", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeoutDuration())
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Shutdown error", "err", err)
	}
	slog.Info("Portal service stopped")
}
