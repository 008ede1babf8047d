package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/sakif/portfolio/internal/apperror"
)

// cloudinaryUploader is the part of the Cloudinary upload API this store uses.
type cloudinaryUploader interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
	Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error)
}

// Cloudinary stores images on Cloudinary.
type Cloudinary struct {
	api cloudinaryUploader
}

// NewCloudinary creates a Cloudinary store that returns https URLs.
func NewCloudinary(cloudName, apiKey, apiSecret string) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("media: creating cloudinary client: %w", err)
	}
	cld.Config.URL.Secure = true
	return &Cloudinary{api: &cld.Upload}, nil
}

// Upload sends the image into folder and returns its secure_url.
func (c *Cloudinary) Upload(ctx context.Context, data []byte, _ string, folder string) (string, error) {
	res, err := c.api.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{Folder: folder})
	if err != nil {
		return "", apperror.MediaHost("image upload failed", err)
	}
	if res.Error.Message != "" {
		return "", apperror.MediaHost("image upload failed", errors.New(res.Error.Message))
	}
	if res.SecureURL == "" {
		return "", apperror.MediaHost("image upload failed", errors.New("cloudinary returned no secure_url"))
	}
	return res.SecureURL, nil
}

// Delete destroys the image named by the URL. Anything but an "ok" result
// is an error, including "not found".
func (c *Cloudinary) Delete(ctx context.Context, rawURL string) error {
	publicID, err := CloudinaryPublicID(rawURL)
	if err != nil {
		return err
	}

	res, err := c.api.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("media: destroying %s: %w", publicID, err)
	}
	if res.Error.Message != "" {
		return fmt.Errorf("media: destroying %s: %s", publicID, res.Error.Message)
	}
	if res.Result != "ok" {
		return fmt.Errorf("media: destroying %s: result %q", publicID, res.Result)
	}
	return nil
}

// Manages reports whether the URL is served by Cloudinary.
func (c *Cloudinary) Manages(rawURL string) bool {
	if rawURL == "" {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.Contains(u.Host, "cloudinary.com")
}

// CloudinaryPublicID derives the public id of an uploaded image from its
// delivery URL: the second-to-last path segment is the folder and the last
// segment without its extension is the name.
//
//	https://res.cloudinary.com/demo/image/upload/v1712/portfolio/cat.png -> portfolio/cat
func CloudinaryPublicID(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("media: parsing url: %w", err)
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) < 2 {
		return "", fmt.Errorf("media: cannot derive public id from %q", rawURL)
	}

	last := segments[len(segments)-1]
	name := strings.TrimSuffix(last, path.Ext(last))
	folder := segments[len(segments)-2]
	if name == "" || folder == "" {
		return "", fmt.Errorf("media: cannot derive public id from %q", rawURL)
	}
	return folder + "/" + name, nil
}
