package media

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"github.com/sakif/portfolio/internal/apperror"
)

// GCS stores images in a Google Cloud Storage bucket. Objects are named
// folder/<uuid><ext> and served from publicBase.
type GCS struct {
	client     *storage.Client
	bucket     string
	publicBase string
}

// NewGCS uses Application Default Credentials. When publicBase is empty the
// storage.googleapis.com URL of the bucket is used. The client keeps ctx for
// its lifetime, so ctx must not carry a deadline.
func NewGCS(ctx context.Context, bucket, publicBase string) (*GCS, error) {
	if bucket == "" {
		return nil, errors.New("media: GCS bucket is required")
	}
	client, err := storage.NewClient(ctx, option.WithScopes(storage.ScopeReadWrite))
	if err != nil {
		return nil, fmt.Errorf("media: creating storage client: %w", err)
	}
	return newGCS(client, bucket, publicBase), nil
}

func newGCS(client *storage.Client, bucket, publicBase string) *GCS {
	if publicBase == "" {
		publicBase = "https://storage.googleapis.com/" + bucket
	}
	return &GCS{
		client:     client,
		bucket:     bucket,
		publicBase: strings.TrimRight(publicBase, "/"),
	}
}

// Upload writes the image under folder with a random name.
func (g *GCS) Upload(ctx context.Context, data []byte, contentType, folder string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	key := uuid.NewString() + extensionFor(contentType)
	if folder = strings.Trim(folder, "/"); folder != "" {
		key = folder + "/" + key
	}

	w := g.client.Bucket(g.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", apperror.MediaHost("image upload failed", err)
	}
	if err := w.Close(); err != nil {
		return "", apperror.MediaHost("image upload failed", err)
	}
	return g.publicBase + "/" + key, nil
}

// Delete removes the object behind a URL under the public base.
func (g *GCS) Delete(ctx context.Context, rawURL string) error {
	key, ok := g.objectKey(rawURL)
	if !ok {
		return fmt.Errorf("media: %q is not in bucket %s", rawURL, g.bucket)
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := g.client.Bucket(g.bucket).Object(key).Delete(ctx); err != nil {
		return fmt.Errorf("media: deleting gcs object %q: %w", key, err)
	}
	return nil
}

// Manages reports whether the URL lies under the public base.
func (g *GCS) Manages(rawURL string) bool {
	_, ok := g.objectKey(rawURL)
	return ok
}

func (g *GCS) objectKey(rawURL string) (string, bool) {
	key, found := strings.CutPrefix(rawURL, g.publicBase+"/")
	if !found || key == "" {
		return "", false
	}
	if i := strings.IndexAny(key, "?#"); i >= 0 {
		key = key[:i]
	}
	return key, key != ""
}
