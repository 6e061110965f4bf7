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
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/capsulehq/portal-auth/pkg/challenge"
	challengeapi "github.com/capsulehq/portal-auth/pkg/challenge/api"
	"github.com/capsulehq/portal-auth/pkg/config"
	"github.com/capsulehq/portal-auth/pkg/notice"
	"github.com/capsulehq/portal-auth/pkg/passcode"
	"github.com/capsulehq/portal-auth/pkg/ratelimit"
)

type Config struct {
	Server    config.ServerConfig
	Redis     config.RedisConfig
	Email     config.EmailConfig
	Passcode  config.PasscodeConfig
	Challenge config.ChallengeConfig
	RateLimit config.RateLimitConfig
}

func main() {
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		slog.Error("Failed to load config", "err", err)
		os.Exit(1)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	notificationManager, err := notice.NewNotificationManager(cfg.Email.ToSMTPConfig())
	if err != nil {
		slog.Error("Failed to create notification manager", "err", err)
		os.Exit(1)
	}

	passcodeService := passcode.NewService(
		passcode.NewRedisCodeStore(rdb),
		notificationManager,
		passcode.WithCodeTTL(cfg.Passcode.CodeTTLDuration()),
		passcode.WithOperationTimeout(cfg.Passcode.OperationTimeoutDuration()),
	)

	sequencerOpts := []challenge.SequencerOption{
		challenge.WithCodeRetries(cfg.Challenge.CodeRetries),
	}
	if cfg.Challenge.PasswordFirstFactor {
		sequencerOpts = append(sequencerOpts, challenge.WithPasswordFirstFactor())
	}
	sequencer := challenge.NewSequencer(sequencerOpts...)

	handle := challengeapi.NewHandle(sequencer, passcodeService)

	limiter := ratelimit.NewRateLimiter(cfg.RateLimit.Burst, cfg.RateLimit.RefillPerSecond(), cfg.RateLimit.IdleTTLDuration())

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(ratelimit.Middleware(limiter, ratelimit.ClientIPKey))
	r.Mount("/auth", challengeapi.Routes(handle))

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("Starting auth challenge service", "addr", cfg.Server.Addr,
			"passwordFirst", cfg.Challenge.PasswordFirstFactor, "codeRetries", cfg.Challenge.CodeRetries)
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
	slog.Info("Auth challenge service stopped")
}
