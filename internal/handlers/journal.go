package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/AnshRaj112/journal-backend/internal/middleware"
	"github.com/AnshRaj112/journal-backend/internal/models"
	"github.com/AnshRaj112/journal-backend/internal/store"
	"github.com/AnshRaj112/journal-backend/pkg/utils"
)

// JournalRequest is the body of POST /api/journal and PUT /api/journal/{id}.
// A userId in the body is ignored; the owner always comes from the session.
type JournalRequest struct {
	Title       string  `json:"title"`
	Content     string  `json:"content"`
	Category    *string `json:"category,omitempty"`
	Sentiment   *string `json:"sentiment,omitempty"`
	Summary     *string `json:"summary,omitempty"`
	Suggestions *string `json:"suggestions,omitempty"`
}

type JournalResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Journal *models.Journal `json:"journal"`
}

type JournalsResponse struct {
	Success  bool             `json:"success"`
	Journals []models.Journal `json:"journals"`
	Total    int              `json:"total"`
}

var journalFieldOrder = []string{"title", "content", "category", "sentiment"}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

// validate normalizes the request in place and returns its field errors.
// Content is sanitized first so the length rule applies to visible text.
func (req *JournalRequest) validate() utils.FieldErrors {
	req.Title = strings.TrimSpace(req.Title)
	req.Content = utils.SanitizeRichText(req.Content)
	req.Category = trimOptional(req.Category)
	req.Sentiment = trimOptional(req.Sentiment)

	fe := utils.FieldErrors{}
	fe.Add(utils.MinLength("title", req.Title, utils.MinTitleLength, "Title must be at least 3 characters long"))
	fe.Add(utils.MaxLength("title", req.Title, utils.MaxTitleLength, "Title must be at most 255 characters long"))
	fe.Add(utils.MinLength("content", utils.PlainText(req.Content), utils.MinContentLength, "Content must be at least 10 characters long"))
	if req.Category != nil {
		fe.Add(utils.MaxLength("category", *req.Category, utils.MaxLabelLength, "Category must be at most 50 characters long"))
	}
	if req.Sentiment != nil {
		fe.Add(utils.MaxLength("sentiment", *req.Sentiment, utils.MaxLabelLength, "Sentiment must be at most 50 characters long"))
	}
	return fe
}

func (req *JournalRequest) input() models.JournalInput {
	return models.JournalInput{
		Title:       req.Title,
		Content:     req.Content,
		Category:    req.Category,
		Sentiment:   req.Sentiment,
		Summary:     req.Summary,
		Suggestions: req.Suggestions,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ListJournals returns the caller's entries, newest first.
func (h *Handler) ListJournals(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	journals, err := h.Journals.ListByUser(r.Context(), userID)
	if err != nil {
		h.serverError(w, r, "Failed to fetch journal entries", err)
		return
	}
	writeJSON(w, http.StatusOK, JournalsResponse{Success: true, Journals: journals, Total: len(journals)})
}

// CreateJournal creates an entry owned by the caller.
func (h *Handler) CreateJournal(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	var req JournalRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if fe := req.validate(); !fe.Empty() {
		writeValidation(w, fe, journalFieldOrder...)
		return
	}

	journal := &models.Journal{
		UserID:      userID, // From session only; body userId is ignored
		Title:       req.Title,
		Content:     req.Content,
		Category:    deref(req.Category),
		Sentiment:   deref(req.Sentiment),
		Summary:     deref(req.Summary),
		Suggestions: deref(req.Suggestions),
	}
	if err := h.Journals.Create(r.Context(), journal); err != nil {
		h.serverError(w, r, "Failed to create journal entry", err)
		return
	}
	h.invalidateSummary(r.Context(), userID)

	writeJSON(w, http.StatusCreated, JournalResponse{
		Success: true,
		Message: "Journal created successfully",
		Journal: journal,
	})
}

// GetJournal returns one of the caller's entries. Entries owned by someone
// else are indistinguishable from missing ones.
func (h *Handler) GetJournal(w http.ResponseWriter, r *http.Request) {
	journal, err := h.Journals.GetForUser(r.Context(), chi.URLParam(r, "id"), middleware.UserID(r.Context()))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Journal entry not found")
		return
	}
	if err != nil {
		h.serverError(w, r, "Failed to fetch journal entry", err)
		return
	}
	writeJSON(w, http.StatusOK, JournalResponse{Success: true, Journal: journal})
}

// UpdateJournal replaces title and content; optional fields left out of the
// body keep their stored values.
func (h *Handler) UpdateJournal(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	var req JournalRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if fe := req.validate(); !fe.Empty() {
		writeValidation(w, fe, journalFieldOrder...)
		return
	}

	journal, err := h.Journals.UpdateForUser(r.Context(), chi.URLParam(r, "id"), userID, req.input())
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Journal entry not found")
		return
	}
	if err != nil {
		h.serverError(w, r, "Failed to update journal entry", err)
		return
	}
	h.invalidateSummary(r.Context(), userID)

	writeJSON(w, http.StatusOK, JournalResponse{
		Success: true,
		Message: "Journal entry updated successfully",
		Journal: journal,
	})
}

func (h *Handler) DeleteJournal(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	err := h.Journals.DeleteForUser(r.Context(), chi.URLParam(r, "id"), userID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Journal entry not found")
		return
	}
	if err != nil {
		h.serverError(w, r, "Failed to delete journal entry", err)
		return
	}
	h.invalidateSummary(r.Context(), userID)

	writeJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "Journal entry deleted successfully"})
}
