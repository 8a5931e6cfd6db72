package handlers

import (
	"net/http"
	"time"

	"github.com/AnshRaj112/journal-backend/internal/analytics"
	"github.com/AnshRaj112/journal-backend/internal/middleware"
)

type SummaryResponse struct {
	Success bool              `json:"success"`
	Cached  bool              `json:"cached"`
	Summary analytics.Summary `json:"summary"`
}

// JournalSummary aggregates the caller's entries for the dashboard.
// Query: from, to (YYYY-MM-DD, inclusive) and tz (IANA name, default UTC).
func (h *Handler) JournalSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.UserID(ctx)
	q := r.URL.Query()

	loc := time.UTC
	if tz := q.Get("tz"); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid time zone")
			return
		}
		loc = l
	}

	rng, err := analytics.ParseRange(q.Get("from"), q.Get("to"), loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date range")
		return
	}
	rangeKey := rng.Key(loc)

	// Resolved before the entries are read, so a write racing this request
	// leaves the result under a generation that is already stale.
	var cacheKey string
	if h.Summaries != nil {
		var cached analytics.Summary
		k, hit, err := h.Summaries.Get(ctx, userID, rangeKey, &cached)
		cacheKey = k
		if err != nil {
			h.Log.Warnw("summary cache read failed", "userID", userID, "error", err)
		}
		if hit {
			writeJSON(w, http.StatusOK, SummaryResponse{Success: true, Cached: true, Summary: cached})
			return
		}
	}

	journals, err := h.Journals.ListByUser(ctx, userID)
	if err != nil {
		h.serverError(w, r, "Failed to fetch journal entries", err)
		return
	}
	summary := analytics.Summarize(journals, rng, loc)

	if cacheKey != "" {
		if err := h.Summaries.Set(ctx, cacheKey, summary); err != nil {
			h.Log.Warnw("summary cache write failed", "userID", userID, "error", err)
		}
	}

	writeJSON(w, http.StatusOK, SummaryResponse{Success: true, Summary: summary})
}
