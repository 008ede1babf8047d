package service

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"strings"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/media"
)

// MaxUploadBytes caps a single image upload.
const MaxUploadBytes = 10 << 20

// DefaultUploadFolder is used when neither the request nor the config names one.
const DefaultUploadFolder = "portfolio"

// UploadService proxies admin uploads and deletes to the media store.
type UploadService struct {
	store  media.Store
	folder string
	logger *slog.Logger
}

// NewUploadService creates an UploadService. An empty folder falls back to
// DefaultUploadFolder.
func NewUploadService(store media.Store, folder string, logger *slog.Logger) *UploadService {
	if strings.TrimSpace(folder) == "" {
		folder = DefaultUploadFolder
	}
	return &UploadService{store: store, folder: folder, logger: logger}
}

// Upload stores an image and returns its public URL. Only image/* content is
// accepted. Host failures are surfaced as apperror.MediaHost.
func (s *UploadService) Upload(ctx context.Context, data []byte, contentType, folder string) (string, error) {
	if len(data) == 0 {
		return "", apperror.ValidationFailed("file", "file is empty")
	}
	if len(data) > MaxUploadBytes {
		return "", apperror.ValidationFailed("file",
			fmt.Sprintf("file is larger than %d MiB", MaxUploadBytes>>20))
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "image/") {
		return "", apperror.ValidationFailed("file", "only image files can be uploaded")
	}

	folder = strings.Trim(strings.TrimSpace(folder), "/")
	if folder == "" {
		folder = s.folder
	}
	if !media.ValidFolder(folder) {
		return "", apperror.ValidationFailed("folder", "folder must be a single name without '/'")
	}

	url, err := s.store.Upload(ctx, data, mediaType, folder)
	if err != nil {
		s.logger.Error("upload failed",
			slog.String("contentType", mediaType),
			slog.Int("bytes", len(data)),
			slog.String("error", err.Error()),
		)
		return "", err
	}

	s.logger.Info("image uploaded", slog.String("url", url), slog.Int("bytes", len(data)))
	return url, nil
}

// Delete removes an image by URL. Unlike record cleanup, failures are
// returned: the admin asked for this delete explicitly.
func (s *UploadService) Delete(ctx context.Context, url string) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return apperror.ValidationFailed("url", "url is required")
	}
	if !s.store.Manages(url) {
		return apperror.ValidationFailed("url", "url is not hosted by the configured media store")
	}

	if err := s.store.Delete(ctx, url); err != nil {
		return apperror.MediaHost("deleting image failed", err)
	}

	s.logger.Info("image deleted", slog.String("url", url))
	return nil
}
