// Package media stores uploaded images on an external host and deletes them
// again by URL.
//
// Callers never see host object ids: a Store derives them from the public URL
// it handed out on upload, using its own convention.
package media

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/portfolio/internal/apperror"
)

// Store is an image host.
type Store interface {
	// Upload stores data under folder and returns its public HTTPS URL.
	// Failures are apperror.MediaHost.
	Upload(ctx context.Context, data []byte, contentType, folder string) (string, error)
	// Delete removes the object behind url. It fails when the object id cannot
	// be derived from url, when the object does not exist, or when the host
	// reports an error.
	Delete(ctx context.Context, url string) error
	// Manages reports whether url points at an object this store owns.
	// Empty and external URLs are never managed.
	Manages(url string) bool
}

const (
	BackendAuto       = "auto"
	BackendCloudinary = "cloudinary"
	BackendGCS        = "gcs"
	BackendNone       = "none"
)

// Config selects and configures a backend.
type Config struct {
	Backend string

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	GCSBucket        string
	GCSPublicBaseURL string

	// Folder is the default upload folder.
	Folder string
}

// New builds the configured backend. "auto" picks Cloudinary when its
// credentials are present, then GCS when a bucket is set, otherwise none.
// ctx is handed to long-lived clients and must outlive the store.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (Store, error) {
	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))
	if backend == "" || backend == BackendAuto {
		switch {
		case cfg.CloudinaryCloudName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "":
			backend = BackendCloudinary
		case cfg.GCSBucket != "":
			backend = BackendGCS
		default:
			backend = BackendNone
		}
	}

	switch backend {
	case BackendCloudinary:
		logger.Info("media store: cloudinary", "cloud", cfg.CloudinaryCloudName)
		return NewCloudinary(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	case BackendGCS:
		logger.Info("media store: gcs", "bucket", cfg.GCSBucket)
		return NewGCS(ctx, cfg.GCSBucket, cfg.GCSPublicBaseURL)
	case BackendNone:
		logger.Warn("media store: none configured, uploads will fail")
		return None{}, nil
	default:
		return nil, fmt.Errorf("media: unknown backend %q", cfg.Backend)
	}
}

// None is the store used when no host is configured.
type None struct{}

// Upload always fails with apperror.MediaHost.
func (None) Upload(context.Context, []byte, string, string) (string, error) {
	return "", apperror.MediaHost("no media host is configured", nil)
}

// Delete always fails.
func (None) Delete(_ context.Context, url string) error {
	return fmt.Errorf("media: no host configured, cannot delete %s", url)
}

func (None) Manages(string) bool { return false }

// ValidFolder reports whether folder is a single path segment. Deletes
// recover the folder from the second-to-last URL segment, so an upload into
// a nested folder could never be removed again.
func ValidFolder(folder string) bool {
	if folder == "" || folder == "." || folder == ".." {
		return false
	}
	return !strings.ContainsAny(folder, `/\`)
}

// extensionFor maps an image content type to a file extension.
func extensionFor(contentType string) string {
	switch strings.ToLower(strings.TrimSpace(contentType)) {
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	case "image/svg+xml":
		return ".svg"
	case "image/avif":
		return ".avif"
	default:
		return ""
	}
}
