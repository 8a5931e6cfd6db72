package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/AnshRaj112/journal-backend/internal/ai"
	"github.com/AnshRaj112/journal-backend/internal/middleware"
	"github.com/AnshRaj112/journal-backend/internal/models"
	"github.com/AnshRaj112/journal-backend/internal/store"
)

// ProcessAIRequest is the body of POST /api/journal/process-ai.
type ProcessAIRequest struct {
	PromptType string `json:"promptType"`
	Content    string `json:"content"`
}

type ProcessAIResponse struct {
	Success  bool   `json:"success"`
	Result   string `json:"result"`
	Fallback bool   `json:"fallback"`
}

type EnrichResponse struct {
	Success    bool              `json:"success"`
	Message    string            `json:"message"`
	Enrichment models.Enrichment `json:"enrichment"`
	Journal    *models.Journal   `json:"journal"`
}

// ProcessAI runs one prompt over the given text. Model failures are not
// errors: the response carries the fallback result with 200.
func (h *Handler) ProcessAI(w http.ResponseWriter, r *http.Request) {
	var req ProcessAIRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, "Content is required")
		return
	}
	pt, err := ai.ParsePromptType(req.PromptType)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid prompt type")
		return
	}

	res, err := h.Enricher.Process(r.Context(), middleware.UserID(r.Context()), pt, req.Content)
	if errors.Is(err, ai.ErrUnknownPromptType) {
		writeError(w, http.StatusBadRequest, "Invalid prompt type")
		return
	}
	if err != nil {
		h.serverError(w, r, "Failed to process AI request", err)
		return
	}

	writeJSON(w, http.StatusOK, ProcessAIResponse{Success: true, Result: res.Text, Fallback: res.Fallback})
}

// EnrichJournal runs every prompt over a stored entry and saves the results.
// Prompts that fell back leave the stored field unchanged.
func (h *Handler) EnrichJournal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.UserID(ctx)
	id := chi.URLParam(r, "id")

	journal, err := h.Journals.GetForUser(ctx, id, userID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Journal entry not found")
		return
	}
	if err != nil {
		h.serverError(w, r, "Failed to fetch journal entry", err)
		return
	}

	enrichment, err := h.Enricher.EnrichAll(ctx, userID, journal.Content)
	if err != nil {
		h.serverError(w, r, "Failed to process AI request", err)
		return
	}

	journal, err = h.Journals.UpdateEnrichment(ctx, id, userID, enrichment)
	if errors.Is(err, store.ErrNotFound) {
		// Deleted while the model was running
		writeError(w, http.StatusNotFound, "Journal entry not found")
		return
	}
	if err != nil {
		h.serverError(w, r, "Failed to update journal entry", err)
		return
	}
	h.invalidateSummary(ctx, userID)

	writeJSON(w, http.StatusOK, EnrichResponse{
		Success:    true,
		Message:    "Journal entry enriched",
		Enrichment: enrichment,
		Journal:    journal,
	})
}
