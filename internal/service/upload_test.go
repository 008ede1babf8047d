package service

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/portfolio/internal/apperror"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\nfake")

func TestUploadService_Upload(t *testing.T) {
	store := newMockStore()
	svc := NewUploadService(store, "", testLogger())

	url, err := svc.Upload(context.Background(), pngBytes, "image/png", "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, managedPrefix+DefaultUploadFolder))

	url, err = svc.Upload(context.Background(), pngBytes, "image/png; charset=binary", "/logos/")
	require.NoError(t, err)
	assert.Contains(t, url, "logos")
}

func TestUploadService_UploadValidation(t *testing.T) {
	svc := NewUploadService(newMockStore(), "portfolio", testLogger())

	tests := []struct {
		name        string
		data        []byte
		contentType string
	}{
		{"empty", nil, "image/png"},
		{"not an image", []byte("%PDF-1.4"), "application/pdf"},
		{"bad content type", pngBytes, ";;"},
		{"too large", bytes.Repeat([]byte{1}, MaxUploadBytes+1), "image/png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Upload(context.Background(), tt.data, tt.contentType, "")
			assert.ErrorIs(t, err, apperror.ErrValidation)
		})
	}
}

func TestUploadService_RejectsNestedFolder(t *testing.T) {
	store := newMockStore()
	svc := NewUploadService(store, "", testLogger())

	for _, folder := range []string{"portfolio/projects", "/a/b/", `a\b`, ".."} {
		_, err := svc.Upload(context.Background(), pngBytes, "image/png", folder)
		require.ErrorIs(t, err, apperror.ErrValidation, folder)

		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "folder", appErr.Field)
	}
	assert.Zero(t, store.uploads)
}

func TestUploadService_HostFailureSurfaces(t *testing.T) {
	store := newMockStore()
	store.uploadErr = apperror.MediaHost("upload failed", nil)
	svc := NewUploadService(store, "", testLogger())

	_, err := svc.Upload(context.Background(), pngBytes, "image/png", "")
	assert.ErrorIs(t, err, apperror.ErrMediaHost)
}

func TestUploadService_Delete(t *testing.T) {
	store := newMockStore()
	svc := NewUploadService(store, "", testLogger())
	ctx := context.Background()

	require.NoError(t, svc.Delete(ctx, managed("a.png")))
	assert.Equal(t, []string{managed("a.png")}, store.deletes())

	assert.ErrorIs(t, svc.Delete(ctx, ""), apperror.ErrValidation)
	assert.ErrorIs(t, svc.Delete(ctx, "https://example.com/a.png"), apperror.ErrValidation)

	store.failAll = true
	assert.ErrorIs(t, svc.Delete(ctx, managed("b.png")), apperror.ErrMediaHost)
}
