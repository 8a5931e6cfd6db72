package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/AnshRaj112/journal-backend/internal/services"
)

// SessionCookieName is the cookie the web client sends the session token in.
const SessionCookieName = "session_token"

type contextKey string

const sessionContextKey contextKey = "session"

// SessionValidator resolves a session token.
type SessionValidator interface {
	Validate(ctx context.Context, token string) (*services.Session, error)
}

// TokenFromRequest reads a bearer token, falling back to the session cookie.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
			return strings.TrimSpace(h[7:])
		}
	}
	if c, err := r.Cookie(SessionCookieName); err == nil {
		return c.Value
	}
	return ""
}

// RequireSession rejects requests without a valid session with 401 before the
// handler runs, so the body is never read and nothing is written.
func RequireSession(sessions SessionValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, err := sessions.Validate(r.Context(), TokenFromRequest(r))
			if err != nil || s == nil {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
		})
	}
}

func WithSession(ctx context.Context, s *services.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, s)
}

// SessionFrom returns the session attached by RequireSession.
func SessionFrom(ctx context.Context) (*services.Session, bool) {
	s, ok := ctx.Value(sessionContextKey).(*services.Session)
	return s, ok && s != nil
}

// UserID returns the authenticated user's id, or "".
func UserID(ctx context.Context) string {
	if s, ok := SessionFrom(ctx); ok {
		return s.UserID
	}
	return ""
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"message": message,
	})
}
