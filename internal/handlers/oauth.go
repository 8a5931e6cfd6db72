package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/AnshRaj112/journal-backend/internal/services"
	"github.com/AnshRaj112/journal-backend/internal/store"
)

// Error codes the sign-in page understands.
const (
	oauthErrAccessDenied  = "AccessDenied"
	oauthErrCallback      = "OAuthCallback"
	oauthErrAccountLinked = "OAuthAccountNotLinked"
)

func (h *Handler) frontendRedirect(w http.ResponseWriter, r *http.Request, path string, query url.Values) {
	target := h.FrontendURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	http.Redirect(w, r, target, http.StatusFound)
}

func (h *Handler) oauthFailed(w http.ResponseWriter, r *http.Request, code string) {
	h.frontendRedirect(w, r, "/signin", url.Values{"error": {code}})
}

// OAuthLogin redirects to the provider's consent page.
func (h *Handler) OAuthLogin(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")

	target, err := h.OAuth.AuthURL(r.Context(), provider)
	if errors.Is(err, services.ErrUnknownProvider) {
		writeError(w, http.StatusNotFound, "Unknown sign-in provider")
		return
	}
	if err != nil {
		h.serverError(w, r, "Failed to start sign-in", err)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// OAuthCallback finishes the provider flow, signs the user in and sends the
// browser to the dashboard. Failures go back to the sign-in page with an error code.
func (h *Handler) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	q := r.URL.Query()

	if q.Get("error") != "" {
		h.oauthFailed(w, r, oauthErrAccessDenied)
		return
	}

	ctx := r.Context()
	profile, err := h.OAuth.Exchange(ctx, provider, q.Get("state"), q.Get("code"))
	if errors.Is(err, services.ErrUnknownProvider) {
		writeError(w, http.StatusNotFound, "Unknown sign-in provider")
		return
	}
	if err != nil {
		h.Log.Warnw("oauth exchange failed", "provider", provider, "error", err)
		h.oauthFailed(w, r, oauthErrCallback)
		return
	}

	user, err := h.Users.FindOrCreateOAuthUser(ctx, *profile)
	if errors.Is(err, store.ErrEmailTaken) {
		h.oauthFailed(w, r, oauthErrAccountLinked)
		return
	}
	if err != nil {
		h.Log.Errorw("oauth user lookup failed", "provider", provider, "error", err)
		h.oauthFailed(w, r, oauthErrCallback)
		return
	}

	token, expiresAt, err := h.Sessions.Create(ctx, user.ID)
	if err != nil {
		h.Log.Errorw("session create failed", "userID", user.ID, "error", err)
		h.oauthFailed(w, r, oauthErrCallback)
		return
	}
	h.setSessionCookie(w, token, expiresAt)

	h.Log.Infow("oauth sign-in", "provider", provider, "userID", user.ID)
	h.frontendRedirect(w, r, "/dashboard", nil)
}
