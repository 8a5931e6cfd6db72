package handlers

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/AnshRaj112/journal-backend/internal/ai"
	"github.com/AnshRaj112/journal-backend/internal/models"
	"github.com/AnshRaj112/journal-backend/internal/store"
)

// Sessions issues and revokes session tokens.
type Sessions interface {
	Create(ctx context.Context, userID string) (string, time.Time, error)
	Revoke(ctx context.Context, token string) error
	RevokeOthers(ctx context.Context, userID, keepID string) error
}

// Enricher runs AI prompts over entry content.
type Enricher interface {
	Process(ctx context.Context, userID string, pt ai.PromptType, content string) (ai.Result, error)
	EnrichAll(ctx context.Context, userID, content string) (models.Enrichment, error)
}

// SummaryCache stores computed summaries per user and range key. Get resolves
// the versioned key that a following Set must write to.
type SummaryCache interface {
	Get(ctx context.Context, userID, rangeKey string, dest interface{}) (string, bool, error)
	Set(ctx context.Context, key string, value interface{}) error
	Invalidate(ctx context.Context, userID string) error
}

// LoginLimiter throttles sign-in attempts per client address.
type LoginLimiter interface {
	Allow(key string) (bool, time.Duration)
	Reset(key string)
}

// OAuth runs the provider redirect flow.
type OAuth interface {
	AuthURL(ctx context.Context, provider string) (string, error)
	Exchange(ctx context.Context, provider, state, code string) (*models.OAuthProfile, error)
}

// Deps are the collaborators a Handler needs. Log defaults to a no-op logger.
type Deps struct {
	Journals     store.JournalStore
	Users        store.UserStore
	Sessions     Sessions
	Enricher     Enricher
	Summaries    SummaryCache
	LoginLimiter LoginLimiter
	OAuth        OAuth
	Log          *zap.SugaredLogger

	// FrontendURL is where OAuth callbacks redirect the browser.
	FrontendURL string
	// SecureCookies marks the session cookie Secure (production, HTTPS).
	SecureCookies bool
}

// Handler serves the JSON API.
type Handler struct {
	Deps
}

func New(d Deps) *Handler {
	if d.Log == nil {
		d.Log = zap.NewNop().Sugar()
	}
	return &Handler{Deps: d}
}

// invalidateSummary drops cached analytics after a mutation. Failures only
// leave a stale summary until the cache entry expires, so they are logged.
func (h *Handler) invalidateSummary(ctx context.Context, userID string) {
	if h.Summaries == nil {
		return
	}
	if err := h.Summaries.Invalidate(ctx, userID); err != nil {
		h.Log.Warnw("summary cache invalidation failed", "userID", userID, "error", err)
	}
}
