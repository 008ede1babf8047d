package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/auth"
	"github.com/sakif/portfolio/internal/model"
	"github.com/sakif/portfolio/internal/service"
)

const stateCookie = "oauth_state"

// AuthHandler runs admin sign-in: email/password, GitHub OAuth, logout and
// password changes. Sessions live in an HttpOnly cookie.
type AuthHandler struct {
	auth         *service.AuthService
	github       *auth.GitHubProvider // nil when GitHub sign-in is not configured
	sessionTTL   time.Duration
	secureCookie bool
	logger       *slog.Logger
}

// NewAuthHandler creates an AuthHandler. github may be nil, and a zero
// sessionTTL falls back to auth.DefaultSessionTTL.
func NewAuthHandler(
	authService *service.AuthService,
	github *auth.GitHubProvider,
	sessionTTL time.Duration,
	secureCookie bool,
	logger *slog.Logger,
) *AuthHandler {
	if sessionTTL <= 0 {
		sessionTTL = auth.DefaultSessionTTL
	}
	return &AuthHandler{
		auth:         authService,
		github:       github,
		sessionTTL:   sessionTTL,
		secureCookie: secureCookie,
		logger:       logger,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	User      *model.User `json:"user"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

// HandleLogin serves POST /api/auth/login.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.setSession(w, res.Token)
	writeJSON(w, http.StatusOK, sessionResponse{
		User:      res.User,
		ExpiresAt: time.Now().Add(h.sessionTTL).UTC(),
	})
}

// HandleLogout clears the session cookie. The token itself stays valid until
// it expires.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

// HandleMe returns the signed-in admin. Requires RequireAdmin upstream.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, r, apperror.Unauthorized("not signed in"))
		return
	}

	user, err := h.auth.Me(r.Context(), id.UserID)
	if errors.Is(err, apperror.ErrNotFound) {
		// Token outlived its user.
		writeError(w, r, apperror.Unauthorized("session user no longer exists"))
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// HandleChangePassword serves POST /api/admin/change-password.
func (h *AuthHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, r, apperror.Unauthorized("not signed in"))
		return
	}

	var req changePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.auth.ChangePassword(r.Context(), id.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}

// HandleGitHubLogin redirects to GitHub with a single-use state cookie.
//
// HTTP: GET /auth/github/login
func (h *AuthHandler) HandleGitHubLogin(w http.ResponseWriter, r *http.Request) {
	if h.github == nil {
		writeError(w, r, apperror.NotFound("sign-in provider", "github"))
		return
	}

	state := xid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.github.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGitHubCallback checks the state, exchanges the code and signs in the
// admin whose email matches the GitHub account.
//
// HTTP: GET /auth/github/callback?code=xxx&state=yyy
func (h *AuthHandler) HandleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	if h.github == nil {
		writeError(w, r, apperror.NotFound("sign-in provider", "github"))
		return
	}

	cookie, err := r.Cookie(stateCookie)
	if err != nil || cookie.Value == "" || r.URL.Query().Get("state") != cookie.Value {
		h.logger.Warn("auth callback: state mismatch")
		writeError(w, r, apperror.ValidationFailed("state", "invalid OAuth state"))
		return
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Value: "", Path: "/", MaxAge: -1})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("auth callback: authorization denied", slog.String("error", errParam))
		http.Redirect(w, r, "/?auth=denied", http.StatusSeeOther)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, r, apperror.ValidationFailed("code", "missing OAuth code"))
		return
	}

	ghUser, err := h.github.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("auth callback: GitHub exchange failed", slog.String("error", err.Error()))
		writeError(w, r, apperror.Unauthorized("GitHub authentication failed"))
		return
	}

	res, err := h.auth.LoginGitHub(r.Context(), ghUser)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.setSession(w, res.Token)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *AuthHandler) setSession(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.sessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}
