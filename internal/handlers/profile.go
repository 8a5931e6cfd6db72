package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/AnshRaj112/journal-backend/internal/middleware"
	"github.com/AnshRaj112/journal-backend/internal/models"
	"github.com/AnshRaj112/journal-backend/internal/store"
	"github.com/AnshRaj112/journal-backend/pkg/utils"
)

type ProfileResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
}

type UserResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	User    *models.User `json:"user"`
}

type UpdateNameRequest struct {
	Name string `json:"name"`
}

type UpdateEmailRequest struct {
	Email string `json:"email"`
}

type UpdatePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := h.Users.GetByID(r.Context(), middleware.UserID(r.Context()))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		h.serverError(w, r, "Failed to fetch profile data", err)
		return
	}
	writeJSON(w, http.StatusOK, ProfileResponse{Success: true, ID: user.ID, Name: user.Name, Email: user.Email})
}

// UpdateName sets the display name. An empty name clears it.
func (h *Handler) UpdateName(w http.ResponseWriter, r *http.Request) {
	var req UpdateNameRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name != "" {
		fe := utils.FieldErrors{}
		fe.Add(utils.MinLength("name", req.Name, utils.MinNameLength, "Name must be at least 2 characters"))
		fe.Add(utils.MaxLength("name", req.Name, utils.MaxTitleLength, "Name must be at most 255 characters"))
		if !fe.Empty() {
			writeValidation(w, fe, "name")
			return
		}
	}

	user, err := h.Users.UpdateName(r.Context(), middleware.UserID(r.Context()), req.Name)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		h.serverError(w, r, "Failed to update name", err)
		return
	}
	writeJSON(w, http.StatusOK, UserResponse{Success: true, Message: "Name updated successfully", User: user})
}

// UpdateEmail changes the sign-in address. An address used by another account yields 409.
func (h *Handler) UpdateEmail(w http.ResponseWriter, r *http.Request) {
	var req UpdateEmailRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Email = utils.NormalizeEmail(req.Email)

	fe := utils.FieldErrors{}
	fe.Add(utils.ValidateEmail(req.Email))
	if !fe.Empty() {
		writeValidation(w, fe, "email")
		return
	}

	user, err := h.Users.UpdateEmail(r.Context(), middleware.UserID(r.Context()), req.Email)
	switch {
	case errors.Is(err, store.ErrEmailTaken):
		writeError(w, http.StatusConflict, "Email address already in use.")
		return
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "User not found")
		return
	case err != nil:
		h.serverError(w, r, "Failed to update email", err)
		return
	}
	writeJSON(w, http.StatusOK, UserResponse{Success: true, Message: "Email updated successfully", User: user})
}

// UpdatePassword sets a new password. Accounts that already have one must
// confirm it; OAuth-only accounts may set a first password without it. Other
// sessions of the user are signed out.
func (h *Handler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	var req UpdatePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	fe := utils.FieldErrors{}
	fe.Add(utils.MinLength("newPassword", req.NewPassword, utils.MinPasswordLength, "Password must be at least 6 characters"))
	if !fe.Empty() {
		writeValidation(w, fe, "newPassword")
		return
	}

	ctx := r.Context()
	session, _ := middleware.SessionFrom(ctx)

	user, err := h.Users.GetByID(ctx, session.UserID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		h.serverError(w, r, "Failed to update password", err)
		return
	}

	if user.HasPassword() {
		if req.OldPassword == "" {
			writeError(w, http.StatusBadRequest, "Current password is required to change the password.")
			return
		}
		valid, err := utils.VerifyPassword(req.OldPassword, user.PasswordHash)
		if err != nil || !valid {
			writeError(w, http.StatusUnauthorized, "Incorrect old password")
			return
		}
	}

	hashedPassword, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		h.serverError(w, r, "Failed to update password", err)
		return
	}
	if err := h.Users.UpdatePassword(ctx, user.ID, hashedPassword); err != nil {
		h.serverError(w, r, "Failed to update password", err)
		return
	}

	if err := h.Sessions.RevokeOthers(ctx, user.ID, session.ID); err != nil {
		h.Log.Warnw("revoking other sessions failed", "userID", user.ID, "error", err)
	}

	writeJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "Password updated successfully"})
}
