package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =========================================================================
// MIDDLEWARE TESTS
// =========================================================================

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		_, _ = w.Write([]byte(id.UserID))
	})
}

func TestRequireAdmin(t *testing.T) {
	ts := newTestTokenService(t)
	admin, _ := ts.Generate("u1", "admin")
	viewer, _ := ts.Generate("u2", "viewer")

	tests := []struct {
		name       string
		setup      func(r *http.Request)
		tokens     *TokenService
		wantStatus int
		wantBody   string
	}{
		{
			name:       "cookie",
			setup:      func(r *http.Request) { r.AddCookie(&http.Cookie{Name: CookieName, Value: admin}) },
			tokens:     ts,
			wantStatus: http.StatusOK,
			wantBody:   "u1",
		},
		{
			name:       "bearer header",
			setup:      func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+admin) },
			tokens:     ts,
			wantStatus: http.StatusOK,
			wantBody:   "u1",
		},
		{
			name:       "no token",
			setup:      func(*http.Request) {},
			tokens:     ts,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "non-admin role",
			setup:      func(r *http.Request) { r.AddCookie(&http.Cookie{Name: CookieName, Value: viewer}) },
			tokens:     ts,
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "auth not configured",
			setup:      func(r *http.Request) { r.AddCookie(&http.Cookie{Name: CookieName, Value: admin}) },
			tokens:     nil,
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/projects", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()

			RequireAdmin(tt.tokens)(okHandler()).ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestOptionalAuth_PassesThroughWithoutToken(t *testing.T) {
	ts := newTestTokenService(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	OptionalAuth(ts)(okHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTeapot, rec.Code)
}
