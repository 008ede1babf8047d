package handler

// Every JSON error has the same shape:
//
//	{"error": "not_found", "message": "project not found with id abc123"}
//
// with an optional "field" for validation errors.

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/portfolio/internal/apperror"
)

// maxJSONBody caps admin JSON request bodies.
const maxJSONBody = 1 << 20

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are gone already; all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// errorStatus maps a domain error to its HTTP status and error type.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, apperror.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, apperror.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, apperror.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, apperror.ErrRateLimited):
		return http.StatusTooManyRequests, "rate_limited"
	case errors.Is(err, apperror.ErrMediaHost):
		return http.StatusInternalServerError, "media_error"
	case errors.Is(err, apperror.ErrUnavailable):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// writeError sends err as JSON. Only *AppError messages reach the client;
// anything else becomes a generic 500 and is logged with the request id.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, errorType := errorStatus(err)

	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		slog.Error("unhandled error",
			slog.String("requestID", chimiddleware.GetReqID(r.Context())),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		})
		return
	}

	if status >= http.StatusInternalServerError {
		slog.Error("request failed",
			slog.String("requestID", chimiddleware.GetReqID(r.Context())),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}

	writeJSON(w, status, ErrorResponse{
		Error:   errorType,
		Message: appErr.Message,
		Field:   appErr.Field,
	})
}

// decodeJSON reads a single JSON object into dst. Malformed bodies are
// validation errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return apperror.ValidationFailed("body", "request body is too large")
		case errors.Is(err, io.EOF):
			return apperror.ValidationFailed("body", "request body is empty")
		default:
			return apperror.ValidationFailed("body", fmt.Sprintf("invalid JSON body: %v", err))
		}
	}
	if dec.More() {
		return apperror.ValidationFailed("body", "request body must be a single JSON object")
	}
	return nil
}

func idParam(r *http.Request) string {
	return chi.URLParam(r, "id")
}

// ===== GENERIC CRUD ADAPTERS =====

func handleGet[T any](get func(*http.Request) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := get(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

// handleWrite decodes In and passes it to write, answering with status.
func handleWrite[In, Out any](status int, write func(*http.Request, In) (Out, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in In
		if err := decodeJSON(w, r, &in); err != nil {
			writeError(w, r, err)
			return
		}
		out, err := write(r, in)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, status, out)
	}
}

func handleDelete(del func(*http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := del(r); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
