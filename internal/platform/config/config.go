// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds every setting the server reads at startup.
type Config struct {
	Env string `env:"APP_ENV" env-default:"development"`

	HTTP      HTTP
	DB        DB
	Redis     Redis
	Auth      Auth
	Portfolio Portfolio
	Avatar    AvatarStorage
	Resume    ResumeStorage
	Mail      Mail
	RateLimit RateLimit
}

// HTTP configures the listener and the browser-facing origins.
type HTTP struct {
	Addr            string        `env:"HTTP_ADDR" env-default:":8080"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"15s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"60s"`
	IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"10s"`
	MaxUploadBytes  int64         `env:"MAX_UPLOAD_BYTES" env-default:"10485760"`
	PortfolioURL    string        `env:"PORTFOLIO_URL"`
	DashboardURL    string        `env:"DASHBOARD_URL" env-default:"http://localhost:5173"`
}

// AllowedOrigins returns the non-empty front-end origins for CORS.
func (h HTTP) AllowedOrigins() []string {
	var out []string
	for _, o := range []string{h.PortfolioURL, h.DashboardURL} {
		if o != "" {
			out = append(out, o)
		}
	}
	return out
}

// DB configures the Postgres connection.
type DB struct {
	Host           string        `env:"DB_HOST" env-default:"localhost"`
	Port           string        `env:"DB_PORT" env-default:"5432"`
	User           string        `env:"DB_USER" env-default:"postgres"`
	Password       string        `env:"DB_PASSWORD"`
	Name           string        `env:"DB_NAME" env-default:"portfolio"`
	SSLMode        string        `env:"DB_SSLMODE" env-default:"disable"`
	ConnectTimeout time.Duration `env:"DB_CONNECT_TIMEOUT" env-default:"60s"`
	RunMigrations  bool          `env:"RUN_MIGRATIONS" env-default:"false"`
}

// Redis configures the optional Redis instance. An empty host disables Redis.
type Redis struct {
	Host     string `env:"REDIS_HOST"`
	Port     string `env:"REDIS_PORT" env-default:"6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" env-default:"0"`
}

// Enabled reports whether a Redis host was configured.
func (r Redis) Enabled() bool {
	return r.Host != ""
}

// Addr returns host:port.
func (r Redis) Addr() string {
	return r.Host + ":" + r.Port
}

// Auth configures session tokens and reset tokens.
type Auth struct {
	JWTSecret        string        `env:"JWT_SECRET" env-required:"true"`
	SessionTTL       time.Duration `env:"SESSION_TTL" env-default:"168h"`
	ResetTokenSecret string        `env:"RESET_TOKEN_SECRET"`
}

// Portfolio configures the public portfolio read.
type Portfolio struct {
	OwnerID  string        `env:"PORTFOLIO_OWNER_ID"`
	CacheTTL time.Duration `env:"PORTFOLIO_CACHE_TTL" env-default:"10m"`
}

// ObjectStore is the connection to one bucket of an S3-compatible service.
type ObjectStore struct {
	// Endpoint overrides the AWS endpoint and switches to path-style addressing.
	Endpoint      string
	Region        string
	Bucket        string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
	Timeout       time.Duration
}

// Configured reports whether credentials were provided.
func (o ObjectStore) Configured() bool {
	return o.AccessKey != "" && o.SecretKey != ""
}

// AvatarStorage configures the S3-compatible bucket holding avatar images.
type AvatarStorage struct {
	Endpoint      string        `env:"AVATAR_S3_ENDPOINT"`
	Region        string        `env:"AVATAR_S3_REGION" env-default:"us-east-1"`
	Bucket        string        `env:"AVATAR_S3_BUCKET" env-default:"portfolio"`
	AccessKey     string        `env:"AVATAR_S3_ACCESS_KEY"`
	SecretKey     string        `env:"AVATAR_S3_SECRET_KEY"`
	PublicBaseURL string        `env:"AVATAR_PUBLIC_BASE_URL"`
	Timeout       time.Duration `env:"STORAGE_TIMEOUT" env-default:"30s"`
}

// ObjectStore returns the bucket connection for avatars.
func (a AvatarStorage) ObjectStore() ObjectStore {
	return ObjectStore{
		Endpoint:      a.Endpoint,
		Region:        a.Region,
		Bucket:        a.Bucket,
		AccessKey:     a.AccessKey,
		SecretKey:     a.SecretKey,
		PublicBaseURL: a.PublicBaseURL,
		Timeout:       a.Timeout,
	}
}

// ResumeStorage configures the Supabase Storage bucket holding resumes. It is
// reached through the project's S3-compatible endpoint using S3 access keys.
type ResumeStorage struct {
	SupabaseURL string        `env:"SUPABASE_URL"`
	Region      string        `env:"SUPABASE_S3_REGION" env-default:"us-east-1"`
	Bucket      string        `env:"SUPABASE_RESUME_BUCKET" env-default:"resumes"`
	AccessKey   string        `env:"SUPABASE_S3_ACCESS_KEY"`
	SecretKey   string        `env:"SUPABASE_S3_SECRET_KEY"`
	Timeout     time.Duration `env:"STORAGE_TIMEOUT" env-default:"30s"`
}

// ObjectStore returns the bucket connection for resumes. Objects are served
// from the public object route of the same project.
func (r ResumeStorage) ObjectStore() ObjectStore {
	base := strings.TrimRight(r.SupabaseURL, "/")
	o := ObjectStore{
		Region:    r.Region,
		Bucket:    r.Bucket,
		AccessKey: r.AccessKey,
		SecretKey: r.SecretKey,
		Timeout:   r.Timeout,
	}
	if base != "" {
		o.Endpoint = base + "/storage/v1/s3"
		o.PublicBaseURL = base + "/storage/v1/object/public/" + r.Bucket
	}
	return o
}

// Mail configures SMTP delivery.
type Mail struct {
	Host      string        `env:"SMTP_HOST" env-default:"smtp.gmail.com"`
	Port      int           `env:"SMTP_PORT" env-default:"465"`
	From      string        `env:"SMTP_MAIL"`
	Password  string        `env:"SMTP_PASSWORD"`
	Timeout   time.Duration `env:"MAIL_TIMEOUT" env-default:"10s"`
	RateLimit int           `env:"MAIL_RATE_LIMIT" env-default:"20"`
}

// RateLimit configures per-client limits on the credential endpoints.
type RateLimit struct {
	Login  int           `env:"LOGIN_RATE_LIMIT" env-default:"10"`
	Forgot int           `env:"FORGOT_RATE_LIMIT" env-default:"5"`
	Window time.Duration `env:"RATE_LIMIT_WINDOW" env-default:"15m"`
}

// IsProduction reports whether APP_ENV is "production".
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads an optional dotenv file and then the process environment.
// Variables already present in the environment win over the file.
func Load(dotenvPath string) (*Config, error) {
	var cfg Config
	if err := LoadInto(dotenvPath, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadInto is Load for any struct carrying env tags, e.g. a single section.
func LoadInto(dotenvPath string, dst any) error {
	if dotenvPath != "" {
		if err := godotenv.Load(dotenvPath); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("load %s: %w", dotenvPath, err)
			}
			slog.Info("dotenv file not found; using process environment", "path", dotenvPath)
		}
	}

	if err := cleanenv.ReadEnv(dst); err != nil {
		return fmt.Errorf("read environment: %w", err)
	}
	return nil
}
