// Package config reads the server configuration from the environment.
//
// An optional .env file in the working directory is loaded first; variables
// already set in the environment win over the file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/sakif/portfolio/internal/auth"
	"github.com/sakif/portfolio/internal/media"
	"github.com/sakif/portfolio/internal/repository/sqlstore"
)

// Config holds everything the server reads from the environment.
type Config struct {
	Port int

	DBDriver sqlstore.Dialect
	DBDSN    string

	// JWTSecret empty means auth is disabled: every admin route answers 401.
	JWTSecret    string
	SessionTTL   time.Duration
	CookieSecure bool
	CORSOrigins  []string

	Media media.Config

	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string

	LogLevel  slog.Level
	LogFormat string
}

// AuthEnabled reports whether a JWT secret is configured.
func (c *Config) AuthEnabled() bool { return c.JWTSecret != "" }

// GitHubEnabled reports whether GitHub sign-in is configured.
func (c *Config) GitHubEnabled() bool {
	return c.GitHubClientID != "" && c.GitHubClientSecret != ""
}

// Load reads .env (if present) and then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: reading .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv. Every invalid value is reported, not
// just the first.
func FromEnv(getenv func(string) string) (*Config, error) {
	env := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	var errs []error
	cfg := &Config{
		DBDSN:              env("DB_DSN", "data/portfolio.db"),
		JWTSecret:          getenv("JWT_SECRET"),
		GitHubClientID:     env("GITHUB_CLIENT_ID", ""),
		GitHubClientSecret: env("GITHUB_CLIENT_SECRET", ""),
		LogFormat:          strings.ToLower(env("LOG_FORMAT", "text")),
		Media: media.Config{
			Backend:             strings.ToLower(env("MEDIA_BACKEND", media.BackendAuto)),
			CloudinaryCloudName: env("CLOUDINARY_CLOUD_NAME", ""),
			CloudinaryAPIKey:    env("CLOUDINARY_API_KEY", ""),
			CloudinaryAPISecret: env("CLOUDINARY_API_SECRET", ""),
			GCSBucket:           env("GCS_BUCKET", ""),
			GCSPublicBaseURL:    env("GCS_PUBLIC_BASE_URL", ""),
			Folder:              env("MEDIA_FOLDER", "portfolio"),
		},
	}

	port, err := strconv.Atoi(env("PORT", "8080"))
	if err != nil || port <= 0 || port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be a number between 1 and 65535, got %q", getenv("PORT")))
	}
	cfg.Port = port

	if cfg.DBDriver, err = sqlstore.ParseDialect(env("DB_DRIVER", "sqlite")); err != nil {
		errs = append(errs, fmt.Errorf("DB_DRIVER: %w", err))
	}

	if cfg.JWTSecret != "" && len(cfg.JWTSecret) < 16 {
		errs = append(errs, errors.New("JWT_SECRET must be at least 16 characters"))
	}

	if cfg.SessionTTL, err = time.ParseDuration(env("SESSION_TTL", auth.DefaultSessionTTL.String())); err != nil || cfg.SessionTTL <= 0 {
		errs = append(errs, fmt.Errorf("SESSION_TTL must be a positive duration like 24h, got %q", getenv("SESSION_TTL")))
	}

	if raw := env("COOKIE_SECURE", "false"); raw != "" {
		if cfg.CookieSecure, err = strconv.ParseBool(raw); err != nil {
			errs = append(errs, fmt.Errorf("COOKIE_SECURE must be true or false, got %q", raw))
		}
	}

	for _, origin := range strings.Split(getenv("CORS_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
		}
	}

	switch cfg.Media.Backend {
	case media.BackendAuto, media.BackendNone:
	case media.BackendCloudinary:
		if cfg.Media.CloudinaryCloudName == "" || cfg.Media.CloudinaryAPIKey == "" || cfg.Media.CloudinaryAPISecret == "" {
			errs = append(errs, errors.New("MEDIA_BACKEND=cloudinary needs CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET"))
		}
	case media.BackendGCS:
		if cfg.Media.GCSBucket == "" {
			errs = append(errs, errors.New("MEDIA_BACKEND=gcs needs GCS_BUCKET"))
		}
	default:
		errs = append(errs, fmt.Errorf("MEDIA_BACKEND must be auto, cloudinary, gcs or none, got %q", cfg.Media.Backend))
	}

	if !media.ValidFolder(cfg.Media.Folder) {
		errs = append(errs, fmt.Errorf("MEDIA_FOLDER must be a single folder name without '/', got %q", cfg.Media.Folder))
	}

	cfg.GitHubCallbackURL = env("GITHUB_CALLBACK_URL",
		fmt.Sprintf("http://localhost:%d/auth/github/callback", cfg.Port))

	if err := cfg.LogLevel.UnmarshalText([]byte(env("LOG_LEVEL", "info"))); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be debug, info, warn or error, got %q", getenv("LOG_LEVEL")))
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.LogFormat))
	}

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
