package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/service"
)

// multipartOverhead leaves room for form boundaries and other fields on top
// of the file itself.
const multipartOverhead = 1 << 20

// UploadHandler serves the admin image upload and delete endpoints.
type UploadHandler struct {
	uploads *service.UploadService
}

// NewUploadHandler creates an UploadHandler.
func NewUploadHandler(uploads *service.UploadService) *UploadHandler {
	return &UploadHandler{uploads: uploads}
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
}

// HandleUpload serves POST /api/upload with the image in the multipart field
// "file" and an optional "folder" field.
func (h *UploadHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, service.MaxUploadBytes+multipartOverhead)

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			writeError(w, r, apperror.ValidationFailed("file", "file is too large"))
		case errors.Is(err, http.ErrMissingFile):
			writeError(w, r, apperror.ValidationFailed("file", "no file provided"))
		default:
			writeError(w, r, apperror.ValidationFailed("file", "request must be multipart/form-data with a file field"))
		}
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, service.MaxUploadBytes+1))
	if err != nil {
		writeError(w, r, apperror.ValidationFailed("file", "could not read the uploaded file"))
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	url, err := h.uploads.Upload(r.Context(), data, contentType, r.FormValue("folder"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, uploadResponse{SecureURL: url})
}

type deleteImageRequest struct {
	URL string `json:"url"`
}

// HandleDelete serves POST /api/upload/delete.
func (h *UploadHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	var req deleteImageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.uploads.Delete(r.Context(), req.URL); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// ===== ADMIN DASHBOARD =====

// AdminHandler serves the admin dashboard data.
type AdminHandler struct {
	dashboard *service.DashboardService
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(dashboard *service.DashboardService) *AdminHandler {
	return &AdminHandler{dashboard: dashboard}
}

// HandleStats serves GET /api/admin/stats.
func (h *AdminHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dashboard.Stats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
