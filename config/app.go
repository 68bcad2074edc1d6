package config

import "time"

type App struct {
	Port        string `env:"PORT,APP_PORT" default:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`
	// JWTSecret is required unless Env is dev.
	JWTSecret   string   `env:"JWT_SECRET"`
	RedisURL    string   `env:"REDIS_URL"`
	AdminEmails []string `env:"ADMIN_EMAILS"`
	CORSOrigins []string `env:"CORS_ORIGINS" default:"*"`
	Env         string   `env:"APP_ENV" default:"production"`

	MailAPIURL string `env:"MAIL_API_URL"`
	MailAPIKey string `env:"MAIL_API_KEY"`
	MailFrom   string `env:"MAIL_FROM" default:"Maison Sac <noreply@maisonsac.fr>"`

	WebhookToken   string `env:"WEBHOOK_TOKEN"`
	MigrateOnStart bool   `env:"MIGRATE_ON_START" default:"true"`

	// Pending reservations older than ReservationTTL are released every CleanupInterval.
	ReservationTTL  time.Duration `env:"RESERVATION_TTL" default:"48h"`
	CleanupInterval time.Duration `env:"CLEANUP_INTERVAL" default:"15m"`
	RateLimit       int           `env:"PUBLIC_RATE_LIMIT" default:"30"`
}

func (a App) Dev() bool { return a.Env == "dev" }
