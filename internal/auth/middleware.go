package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sakif/portfolio/internal/model"
)

// CookieName is the session cookie set on login.
const CookieName = "token"

type contextKey string

const identityKey contextKey = "identity"

var errNoToken = errors.New("auth: no session token")

// RequireAdmin rejects requests without a valid admin session. A nil
// TokenService (no secret configured) rejects everything.
func RequireAdmin(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := identify(r, tokens)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "unauthorized", "valid authentication required")
				return
			}
			if id.Role != model.RoleAdmin {
				writeAuthError(w, http.StatusForbidden, "forbidden", "admin role required")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// OptionalAuth attaches the identity when a valid token is present and
// otherwise lets the request through untouched. Public pages use it to show
// admin links.
func OptionalAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id, err := identify(r, tokens); err == nil {
				r = r.WithContext(WithIdentity(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithIdentity stores the signed-in identity in ctx.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the identity set by the session middleware.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey).(*Identity)
	return id, ok && id != nil
}

// identify reads the session from the cookie, falling back to an
// "Authorization: Bearer" header.
func identify(r *http.Request, tokens *TokenService) (*Identity, error) {
	if tokens == nil {
		return nil, errNoToken
	}

	var raw string
	if cookie, err := r.Cookie(CookieName); err == nil && cookie.Value != "" {
		raw = cookie.Value
	} else if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, found := strings.Cut(h, " ")
		if found && strings.EqualFold(scheme, "Bearer") {
			raw = strings.TrimSpace(token)
		}
	}
	if raw == "" {
		return nil, errNoToken
	}

	return tokens.Validate(raw)
}

func writeAuthError(w http.ResponseWriter, status int, kind, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + kind + `","message":"` + message + `"}`))
}
