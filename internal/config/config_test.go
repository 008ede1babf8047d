package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/portfolio/internal/media"
	"github.com/sakif/portfolio/internal/repository/sqlstore"
)

func envMap(m map[string]string) func(string) string {
	return func(key string) string { return m[key] }
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(envMap(nil))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, sqlstore.SQLite, cfg.DBDriver)
	assert.Equal(t, "data/portfolio.db", cfg.DBDSN)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.False(t, cfg.AuthEnabled())
	assert.False(t, cfg.GitHubEnabled())
	assert.Equal(t, media.BackendAuto, cfg.Media.Backend)
	assert.Equal(t, "portfolio", cfg.Media.Folder)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "http://localhost:8080/auth/github/callback", cfg.GitHubCallbackURL)
	assert.Empty(t, cfg.CORSOrigins)
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{
		"PORT":                  "9000",
		"DB_DRIVER":             "postgres",
		"DB_DSN":                "postgres://u:p@db/portfolio",
		"JWT_SECRET":            "0123456789abcdef0123",
		"SESSION_TTL":           "2h",
		"COOKIE_SECURE":         "true",
		"CORS_ORIGINS":          "https://admin.example.com, https://example.com,",
		"MEDIA_BACKEND":         "GCS",
		"GCS_BUCKET":            "portfolio-media",
		"GITHUB_CLIENT_ID":      "id",
		"GITHUB_CLIENT_SECRET":  "secret",
		"LOG_LEVEL":             "debug",
		"LOG_FORMAT":            "json",
		"CLOUDINARY_CLOUD_NAME": "ignored",
	}))
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, sqlstore.Postgres, cfg.DBDriver)
	assert.True(t, cfg.AuthEnabled())
	assert.True(t, cfg.GitHubEnabled())
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, []string{"https://admin.example.com", "https://example.com"}, cfg.CORSOrigins)
	assert.Equal(t, media.BackendGCS, cfg.Media.Backend)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "http://localhost:9000/auth/github/callback", cfg.GitHubCallbackURL)
}

func TestFromEnv_ReportsEveryInvalidValue(t *testing.T) {
	_, err := FromEnv(envMap(map[string]string{
		"PORT":          "http",
		"DB_DRIVER":     "mysql",
		"JWT_SECRET":    "short",
		"SESSION_TTL":   "forever",
		"MEDIA_BACKEND": "s3",
		"LOG_FORMAT":    "xml",
	}))
	require.Error(t, err)

	msg := err.Error()
	for _, key := range []string{"PORT", "DB_DRIVER", "JWT_SECRET", "SESSION_TTL", "MEDIA_BACKEND", "LOG_FORMAT"} {
		assert.Contains(t, msg, key)
	}
}

func TestFromEnv_MediaBackendNeedsCredentials(t *testing.T) {
	_, err := FromEnv(envMap(map[string]string{"MEDIA_BACKEND": "cloudinary"}))
	assert.ErrorContains(t, err, "CLOUDINARY_API_KEY")

	_, err = FromEnv(envMap(map[string]string{"MEDIA_BACKEND": "gcs"}))
	assert.ErrorContains(t, err, "GCS_BUCKET")
}

func TestFromEnv_MediaFolderMustBeSingleSegment(t *testing.T) {
	_, err := FromEnv(envMap(map[string]string{"MEDIA_FOLDER": "portfolio/projects"}))
	assert.ErrorContains(t, err, "MEDIA_FOLDER")

	cfg, err := FromEnv(envMap(map[string]string{"MEDIA_FOLDER": "site-images"}))
	require.NoError(t, err)
	assert.Equal(t, "site-images", cfg.Media.Folder)
}

func TestLoad_ReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("DB_DSN=from-dotenv.db\n"), 0o600))
	t.Chdir(dir)
	t.Setenv("PORT", "8181")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8181, cfg.Port)
	assert.Equal(t, "from-dotenv.db", cfg.DBDSN)
}
