package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/capsulehq/portal-auth/pkg/notification"
)

// ServerConfig holds HTTP server settings shared by both binaries.
type ServerConfig struct {
	Addr            string `env:"SERVER_ADDR" env-default:":8080"`
	ReadTimeout     string `env:"SERVER_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout    string `env:"SERVER_WRITE_TIMEOUT" env-default:"30s"`
	ShutdownTimeout string `env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

func parseDurationOr(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		slog.Error("Failed to parse duration, using fallback", "value", value, "fallback", fallback, "err", err)
		return fallback
	}
	return d
}

func (c ServerConfig) ReadTimeoutDuration() time.Duration {
	return parseDurationOr(c.ReadTimeout, 10*time.Second)
}

func (c ServerConfig) WriteTimeoutDuration() time.Duration {
	return parseDurationOr(c.WriteTimeout, 30*time.Second)
}

func (c ServerConfig) ShutdownTimeoutDuration() time.Duration {
	return parseDurationOr(c.ShutdownTimeout, 10*time.Second)
}

// RedisConfig holds connection settings for the shared code store.
type RedisConfig struct {
	Host     string `env:"REDIS_HOST" env-default:"localhost"`
	Port     uint16 `env:"REDIS_PORT" env-default:"6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" env-default:"0"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DbConfig holds PostgreSQL settings for the portal's enrollment storage.
type DbConfig struct {
	Host     string `env:"PORTAL_PG_HOST" env-default:"localhost"`
	Port     uint16 `env:"PORTAL_PG_PORT" env-default:"5432"`
	Database string `env:"PORTAL_PG_DATABASE" env-default:"portal_db"`
	User     string `env:"PORTAL_PG_USER" env-default:"portal"`
	Password string `env:"PORTAL_PG_PASSWORD" env-default:"pwd"`
}

func (d DbConfig) ToDatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Database)
}

// EmailConfig holds SMTP settings for outbound notices.
type EmailConfig struct {
	Host     string `env:"EMAIL_HOST" env-default:"localhost"`
	Port     int    `env:"EMAIL_PORT" env-default:"1025"`
	Username string `env:"EMAIL_USERNAME"`
	Password string `env:"EMAIL_PASSWORD"`
	From     string `env:"EMAIL_FROM" env-default:"noreply@capsule-playground.com"`
	TLS      bool   `env:"EMAIL_TLS" env-default:"false"`
}

func (c EmailConfig) ToSMTPConfig() notification.SMTPConfig {
	return notification.SMTPConfig{
		Host:     c.Host,
		Port:     c.Port,
		Username: c.Username,
		Password: c.Password,
		From:     c.From,
		TLS:      c.TLS,
	}
}

// PasscodeConfig holds one-time-code settings.
type PasscodeConfig struct {
	CodeTTL          string `env:"MFA_CODE_TTL" env-default:"5m"`
	OperationTimeout string `env:"MFA_OP_TIMEOUT" env-default:"10s"`
}

func (c PasscodeConfig) CodeTTLDuration() time.Duration {
	return parseDurationOr(c.CodeTTL, 5*time.Minute)
}

func (c PasscodeConfig) OperationTimeoutDuration() time.Duration {
	return parseDurationOr(c.OperationTimeout, 10*time.Second)
}

// RateLimitConfig throttles challenge traffic per caller address.
type RateLimitConfig struct {
	Burst           int     `env:"RATE_LIMIT_BURST" env-default:"10"`
	RefillPerMinute float64 `env:"RATE_LIMIT_REFILL_PER_MINUTE" env-default:"30"`
	IdleTTL         string  `env:"RATE_LIMIT_IDLE_TTL" env-default:"10m"`
}

func (c RateLimitConfig) RefillPerSecond() float64 {
	return c.RefillPerMinute / 60.0
}

func (c RateLimitConfig) IdleTTLDuration() time.Duration {
	return parseDurationOr(c.IdleTTL, 10*time.Minute)
}

// ChallengeConfig fixes the sequencing policy at deployment time.
type ChallengeConfig struct {
	PasswordFirstFactor bool `env:"CHALLENGE_PASSWORD_FIRST" env-default:"false"`
	CodeRetries         int  `env:"CHALLENGE_CODE_RETRIES" env-default:"1"`
}

// EnrollmentConfig holds TOTP setup settings.
type EnrollmentConfig struct {
	Issuer  string `env:"TOTP_ISSUER" env-default:"CAPSULE Portal"`
	Storage string `env:"PORTAL_STORAGE" env-default:"postgres"` // postgres or memory
}
