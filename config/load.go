package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// devSecret signs tokens only when APP_ENV=dev is set explicitly.
const devSecret = "local_dev_secret"

// Load reads the environment, after a .env file when one exists.
func Load() (App, error) {
	_ = godotenv.Load()

	dbURL, err := must("DATABASE_URL")
	if err != nil {
		return App{}, err
	}
	cfg := App{
		Port:        getenv("PORT", getenv("APP_PORT", "8080")),
		DatabaseURL: dbURL,
		JWTSecret:   os.Getenv("JWT_SECRET"),
		RedisURL:    os.Getenv("REDIS_URL"),
		AdminEmails: list(os.Getenv("ADMIN_EMAILS")),
		CORSOrigins: list(getenv("CORS_ORIGINS", "*")),
		Env:         getenv("APP_ENV", "production"),

		MailAPIURL: os.Getenv("MAIL_API_URL"),
		MailAPIKey: os.Getenv("MAIL_API_KEY"),
		MailFrom:   getenv("MAIL_FROM", "Maison Sac <noreply@maisonsac.fr>"),

		WebhookToken: os.Getenv("WEBHOOK_TOKEN"),
	}

	if cfg.MigrateOnStart, err = strconv.ParseBool(getenv("MIGRATE_ON_START", "true")); err != nil {
		return App{}, fmt.Errorf("MIGRATE_ON_START: %w", err)
	}
	if cfg.ReservationTTL, err = time.ParseDuration(getenv("RESERVATION_TTL", "48h")); err != nil {
		return App{}, fmt.Errorf("RESERVATION_TTL: %w", err)
	}
	if cfg.CleanupInterval, err = time.ParseDuration(getenv("CLEANUP_INTERVAL", "15m")); err != nil {
		return App{}, fmt.Errorf("CLEANUP_INTERVAL: %w", err)
	}
	if cfg.RateLimit, err = strconv.Atoi(getenv("PUBLIC_RATE_LIMIT", "30")); err != nil {
		return App{}, fmt.Errorf("PUBLIC_RATE_LIMIT: %w", err)
	}
	if cfg.ReservationTTL <= 0 {
		return App{}, fmt.Errorf("RESERVATION_TTL must be positive")
	}
	if cfg.CleanupInterval <= 0 {
		return App{}, fmt.Errorf("CLEANUP_INTERVAL must be positive")
	}
	if cfg.RateLimit < 0 {
		return App{}, fmt.Errorf("PUBLIC_RATE_LIMIT must not be negative")
	}

	switch {
	case cfg.JWTSecret == "" && cfg.Dev():
		cfg.JWTSecret = devSecret
	case cfg.JWTSecret == "" || cfg.JWTSecret == devSecret:
		return App{}, fmt.Errorf("JWT_SECRET must be set unless APP_ENV=dev")
	}
	return cfg, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func must(k string) (string, error) {
	v := os.Getenv(k)
	if v == "" {
		return "", fmt.Errorf("missing env %s", k)
	}
	return v, nil
}

// list splits a comma separated value, dropping blanks.
func list(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
