package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/portfolio/internal/auth"
	"github.com/sakif/portfolio/internal/config"
	"github.com/sakif/portfolio/internal/model"
	"github.com/sakif/portfolio/internal/repository/sqlstore"
	"github.com/sakif/portfolio/internal/server"
)

const hostPrefix = "https://media.example.com/portfolio/"

type fakeStore struct {
	mu      sync.Mutex
	deleted []string
}

func (f *fakeStore) Upload(_ context.Context, _ []byte, _, folder string) (string, error) {
	return hostPrefix + folder + "/image.png", nil
}

func (f *fakeStore) Delete(_ context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, url)
	return nil
}

func (f *fakeStore) Manages(url string) bool { return strings.HasPrefix(url, hostPrefix) }

type testServer struct {
	handler http.Handler
	store   *fakeStore
	db      *sqlstore.DB
}

func newTestServer(t *testing.T, env map[string]string) *testServer {
	t.Helper()

	if env == nil {
		env = map[string]string{"JWT_SECRET": "router-test-secret-0123456789"}
	}
	cfg, err := config.FromEnv(func(k string) string { return env[k] })
	require.NoError(t, err)

	db, err := sqlstore.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := &fakeStore{}
	srv, err := server.New(cfg, db, store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	return &testServer{handler: srv.Handler(), store: store, db: db}
}

func (ts *testServer) do(t *testing.T, method, path string, body io.Reader, mutate ...func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, m := range mutate {
		m(req)
	}
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

// login seeds an admin and returns its session cookie.
func (ts *testServer) login(t *testing.T) *http.Cookie {
	t.Helper()

	hash, err := auth.NewPasswordServiceForTest().Hash("correct-horse")
	require.NoError(t, err)
	require.NoError(t, ts.db.Users().Upsert(context.Background(), &model.User{
		Email: "admin@example.com", Name: "Admin", PasswordHash: hash, Role: model.RoleAdmin,
	}))

	rr := ts.do(t, http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"Admin@Example.com","password":"correct-horse"}`))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	for _, c := range rr.Result().Cookies() {
		if c.Name == auth.CookieName {
			assert.True(t, c.HttpOnly)
			return c
		}
	}
	t.Fatal("login did not set a session cookie")
	return nil
}

func withCookie(c *http.Cookie) func(*http.Request) {
	return func(r *http.Request) { r.AddCookie(c) }
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func TestRouter_PublicReadsOnEmptySite(t *testing.T) {
	ts := newTestServer(t, nil)

	for _, path := range []string{"/api/projects", "/api/skills", "/api/general-skills", "/api/experience", "/api/education", "/api/quotes"} {
		rr := ts.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, rr.Code, path)
		assert.JSONEq(t, `[]`, rr.Body.String(), path)
	}

	rr := ts.do(t, http.MethodGet, "/api/profile", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = ts.do(t, http.MethodGet, "/api/about", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "", decode[map[string]any](t, rr)["content"])

	rr = ts.do(t, http.MethodGet, "/api/home", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	home := decode[map[string]any](t, rr)
	assert.Nil(t, home["quote"])
	assert.Empty(t, home["projects"])
}

func TestRouter_AdminRoutesNeedSession(t *testing.T) {
	ts := newTestServer(t, nil)

	cases := []struct{ method, path string }{
		{http.MethodPost, "/api/projects"},
		{http.MethodPut, "/api/projects/abc"},
		{http.MethodDelete, "/api/projects/abc"},
		{http.MethodPost, "/api/skills"},
		{http.MethodPut, "/api/about"},
		{http.MethodPost, "/api/profile"},
		{http.MethodGet, "/api/site-settings"},
		{http.MethodPost, "/api/upload"},
		{http.MethodPost, "/api/upload/delete"},
		{http.MethodGet, "/api/admin/stats"},
		{http.MethodPost, "/api/admin/change-password"},
		{http.MethodGet, "/api/auth/me"},
	}
	for _, tc := range cases {
		rr := ts.do(t, tc.method, tc.path, strings.NewReader(`{}`))
		assert.Equal(t, http.StatusUnauthorized, rr.Code, "%s %s", tc.method, tc.path)
	}
}

func TestRouter_AuthDisabledRejectsAdminAndLogin(t *testing.T) {
	ts := newTestServer(t, map[string]string{})

	rr := ts.do(t, http.MethodGet, "/api/admin/stats", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = ts.do(t, http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"a@b.c","password":"whatever"}`))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRouter_ProjectLifecycle(t *testing.T) {
	ts := newTestServer(t, nil)
	session := ts.login(t)

	rr := ts.do(t, http.MethodPost, "/api/projects", strings.NewReader(`{
		"title": "Portfolio",
		"description": "This site",
		"imageUrl": "`+hostPrefix+`cover.png",
		"featured": true,
		"skills": [{"name": "Go"}, {"name": "React"}]
	}`), withCookie(session))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decode[model.Project](t, rr)
	assert.Len(t, created.Skills, 2)

	rr = ts.do(t, http.MethodGet, "/api/projects?featured=true", nil)
	assert.Len(t, decode[[]model.Project](t, rr), 1)

	rr = ts.do(t, http.MethodGet, "/api/projects?featured=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.do(t, http.MethodPut, "/api/projects/"+created.ID,
		strings.NewReader(`{"imageUrl":"`+hostPrefix+`cover-2.png"}`), withCookie(session))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, hostPrefix+"cover-2.png", decode[model.Project](t, rr).ImageURL)

	rr = ts.do(t, http.MethodDelete, "/api/projects/"+created.ID, nil, withCookie(session))
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = ts.do(t, http.MethodGet, "/api/projects/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "not_found", decode[map[string]any](t, rr)["error"])

	ts.store.mu.Lock()
	defer ts.store.mu.Unlock()
	assert.Contains(t, ts.store.deleted, hostPrefix+"cover.png")
	assert.Contains(t, ts.store.deleted, hostPrefix+"cover-2.png")
}

func TestRouter_ValidationAndConflict(t *testing.T) {
	ts := newTestServer(t, nil)
	session := ts.login(t)

	rr := ts.do(t, http.MethodPost, "/api/projects", strings.NewReader(`{"description":"no title"}`), withCookie(session))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "validation_error", decode[map[string]any](t, rr)["error"])

	rr = ts.do(t, http.MethodPost, "/api/projects", strings.NewReader(`{not json`), withCookie(session))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.do(t, http.MethodPost, "/api/skills", strings.NewReader(`{"name":"Go"}`), withCookie(session))
	require.Equal(t, http.StatusCreated, rr.Code)
	rr = ts.do(t, http.MethodPost, "/api/skills", strings.NewReader(`{"name":"Go"}`), withCookie(session))
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestRouter_UploadAndDelete(t *testing.T) {
	ts := newTestServer(t, nil)
	session := ts.login(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {`form-data; name="file"; filename="a.png"`},
		"Content-Type":        {"image/png"},
	})
	require.NoError(t, err)
	_, _ = part.Write([]byte("\x89PNG\r\n\x1a\n fake image"))
	require.NoError(t, mw.Close())

	rr := ts.do(t, http.MethodPost, "/api/upload", &body, withCookie(session), func(r *http.Request) {
		r.Header.Set("Content-Type", mw.FormDataContentType())
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	url := decode[map[string]string](t, rr)["secure_url"]
	assert.Equal(t, hostPrefix+"portfolio/image.png", url)

	rr = ts.do(t, http.MethodPost, "/api/upload/delete", strings.NewReader(`{"url":"`+url+`"}`), withCookie(session))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true}`, rr.Body.String())

	rr = ts.do(t, http.MethodPost, "/api/upload/delete", strings.NewReader(`{"url":"https://elsewhere.example/x.png"}`), withCookie(session))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRouter_SessionEndpoints(t *testing.T) {
	ts := newTestServer(t, nil)
	session := ts.login(t)

	rr := ts.do(t, http.MethodGet, "/api/auth/me", nil, withCookie(session))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "admin@example.com", decode[model.User](t, rr).Email)
	assert.NotContains(t, rr.Body.String(), "password")

	rr = ts.do(t, http.MethodGet, "/api/auth/me", nil, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+session.Value)
	})
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = ts.do(t, http.MethodGet, "/api/admin/stats", nil, withCookie(session))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"projects":0,"skills":0,"experience":0,"quotes":0}`, rr.Body.String())

	rr = ts.do(t, http.MethodPost, "/api/auth/logout", nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	require.Len(t, rr.Result().Cookies(), 1)
	assert.Negative(t, rr.Result().Cookies()[0].MaxAge)

	rr = ts.do(t, http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"admin@example.com","password":"wrong-horse"}`))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRouter_PagesAndStatic(t *testing.T) {
	ts := newTestServer(t, nil)
	session := ts.login(t)

	rr := ts.do(t, http.MethodPut, "/api/site-settings", strings.NewReader(`{"title":"Sakif Portfolio"}`), withCookie(session))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	rr = ts.do(t, http.MethodPut, "/api/about", strings.NewReader(`{"content":"<p>Hello there</p>"}`), withCookie(session))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	for _, path := range []string{"/", "/projects", "/about"} {
		rr := ts.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, rr.Code, path)
		assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, rr.Body.String(), "<title>Sakif Portfolio</title>", path)
	}

	rr = ts.do(t, http.MethodGet, "/about", nil)
	assert.Contains(t, rr.Body.String(), "<p>Hello there</p>")

	rr = ts.do(t, http.MethodGet, "/static/css/site.css", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRouter_CORS(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"JWT_SECRET":   "router-test-secret-0123456789",
		"CORS_ORIGINS": "https://admin.example.com",
	})

	rr := ts.do(t, http.MethodOptions, "/api/projects", nil, func(r *http.Request) {
		r.Header.Set("Origin", "https://admin.example.com")
		r.Header.Set("Access-Control-Request-Method", http.MethodPost)
	})
	assert.Equal(t, "https://admin.example.com", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))

	rr = ts.do(t, http.MethodGet, "/api/projects", nil, func(r *http.Request) {
		r.Header.Set("Origin", "https://evil.example.com")
	})
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}
