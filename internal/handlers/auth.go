package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/AnshRaj112/journal-backend/internal/middleware"
	"github.com/AnshRaj112/journal-backend/internal/models"
	"github.com/AnshRaj112/journal-backend/internal/store"
	"github.com/AnshRaj112/journal-backend/pkg/clientip"
	"github.com/AnshRaj112/journal-backend/pkg/utils"
)

// SignupRequest is the body of POST /api/auth/signup.
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SigninRequest is the body of POST /api/auth/signin.
type SigninRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse carries the user and, after sign-in, the session token.
type AuthResponse struct {
	Success   bool         `json:"success"`
	Message   string       `json:"message"`
	User      *models.User `json:"user,omitempty"`
	Token     string       `json:"token,omitempty"`
	ExpiresAt *time.Time   `json:"expiresAt,omitempty"`
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// Signup handles user registration. A registered email yields 422 and no new row.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = utils.NormalizeEmail(req.Email)

	fe := utils.FieldErrors{}
	fe.Add(utils.MinLength("name", req.Name, utils.MinNameLength, "Name must be at least 2 characters"))
	fe.Add(utils.ValidateEmail(req.Email))
	fe.Add(utils.MinLength("password", req.Password, utils.MinPasswordLength, "Password must be at least 6 characters"))
	if !fe.Empty() {
		writeValidation(w, fe, "name", "email", "password")
		return
	}

	ctx := r.Context()
	if _, err := h.Users.GetByEmail(ctx, req.Email); err == nil {
		writeError(w, http.StatusUnprocessableEntity, "User already exists")
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		h.serverError(w, r, "Something went wrong", err)
		return
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		h.serverError(w, r, "Something went wrong", err)
		return
	}

	user := &models.User{Name: req.Name, Email: req.Email, PasswordHash: hashedPassword}
	if err := h.Users.Create(ctx, user); err != nil {
		// Lost a race with a concurrent signup for the same address
		if errors.Is(err, store.ErrEmailTaken) {
			writeError(w, http.StatusUnprocessableEntity, "User already exists")
			return
		}
		h.serverError(w, r, "Something went wrong", err)
		return
	}

	h.Log.Infow("user signed up", "userID", user.ID)
	writeJSON(w, http.StatusCreated, AuthResponse{
		Success: true,
		Message: "User created successfully",
		User:    user,
	})
}

// Signin verifies credentials and starts a session. Attempts are limited per
// client address; a successful sign-in clears the address's count.
func (h *Handler) Signin(w http.ResponseWriter, r *http.Request) {
	key := clientip.RealClientIP(r)
	if ok, retryAfter := h.LoginLimiter.Allow(key); !ok {
		w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Round(time.Second).Seconds())))
		writeError(w, http.StatusTooManyRequests, "Too many login attempts. Please try again later.")
		return
	}

	var req SigninRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Email = utils.NormalizeEmail(req.Email)

	fe := utils.FieldErrors{}
	fe.Add(utils.ValidateEmail(req.Email))
	fe.Add(utils.MinLength("password", req.Password, utils.MinPasswordLength, "Password must be at least 6 characters"))
	if !fe.Empty() {
		writeValidation(w, fe, "email", "password")
		return
	}

	ctx := r.Context()
	user, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		h.serverError(w, r, "Something went wrong", err)
		return
	}
	if user == nil || !user.HasPassword() {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	valid, err := utils.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil || !valid {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	h.LoginLimiter.Reset(key)

	token, expiresAt, err := h.Sessions.Create(ctx, user.ID)
	if err != nil {
		h.serverError(w, r, "Failed to create session", err)
		return
	}
	h.setSessionCookie(w, token, expiresAt)

	writeJSON(w, http.StatusOK, AuthResponse{
		Success:   true,
		Message:   "Login successful",
		User:      user,
		Token:     token,
		ExpiresAt: &expiresAt,
	})
}

// Signout revokes the caller's session, if any, and clears the cookie.
func (h *Handler) Signout(w http.ResponseWriter, r *http.Request) {
	if token := middleware.TokenFromRequest(r); token != "" {
		if err := h.Sessions.Revoke(r.Context(), token); err != nil {
			h.serverError(w, r, "Failed to sign out", err)
			return
		}
	}
	h.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "Signed out"})
}

// Session returns the signed-in user. Requires RequireSession.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	s, _ := middleware.SessionFrom(r.Context())

	user, err := h.Users.GetByID(r.Context(), s.UserID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if err != nil {
		h.serverError(w, r, "Failed to load session", err)
		return
	}

	expiresAt := s.ExpiresAt
	writeJSON(w, http.StatusOK, AuthResponse{
		Success:   true,
		Message:   "Authenticated",
		User:      user,
		ExpiresAt: &expiresAt,
	})
}
