package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/AnshRaj112/journal-backend/internal/handlers"
	"github.com/AnshRaj112/journal-backend/internal/middleware"
)

// Options wires the router. AILimiter and GlobalLimiter may be nil.
type Options struct {
	Handler  *handlers.Handler
	Sessions middleware.SessionValidator
	Log      *zap.SugaredLogger

	AllowedOrigins []string
	TrustProxy     bool

	Production    bool
	AllowedHost   string
	GlobalLimiter *middleware.IPRateLimiter
	AILimiter     *middleware.AILimiter

	HealthChecks map[string]handlers.Pinger
}

func New(o Options) *chi.Mux {
	if o.Log == nil {
		o.Log = zap.NewNop().Sugar()
	}
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	if o.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.RequestLogger(o.Log))
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(o.AllowedOrigins))

	if o.Production {
		limiter := o.GlobalLimiter
		if limiter == nil {
			limiter = middleware.NewGlobalRateLimiter()
		}
		for _, mw := range middleware.ProductionSecurity(o.AllowedHost, limiter) {
			r.Use(mw)
		}
	}

	r.Get("/health", handlers.Health(o.HealthChecks))

	SetupRoutes(r, o)
	return r
}

// SetupRoutes mounts the API. Everything outside /api/auth requires a session,
// which is checked before any handler reads the request body.
func SetupRoutes(r chi.Router, o Options) {
	h := o.Handler
	requireSession := middleware.RequireSession(o.Sessions)
	aiLimit := func(next http.Handler) http.Handler { return next }
	if o.AILimiter != nil {
		aiLimit = middleware.AIRateLimit(o.AILimiter)
	}

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/signup", h.Signup)
		r.Post("/signin", h.Signin)
		r.Post("/signout", h.Signout)
		r.With(requireSession).Get("/session", h.Session)
		r.Get("/{provider}/login", h.OAuthLogin)
		r.Get("/{provider}/callback", h.OAuthCallback)
	})

	r.Route("/api/journal", func(r chi.Router) {
		r.Use(requireSession)
		r.Get("/", h.ListJournals)
		r.Post("/", h.CreateJournal)
		r.Get("/summary", h.JournalSummary)
		r.With(aiLimit).Post("/process-ai", h.ProcessAI)
		r.Get("/{id}", h.GetJournal)
		r.Put("/{id}", h.UpdateJournal)
		r.Delete("/{id}", h.DeleteJournal)
		r.With(aiLimit).Post("/{id}/enrich", h.EnrichJournal)
	})

	// Older clients post here
	r.With(requireSession, aiLimit).Post("/api/journals/process-ai", h.ProcessAI)

	r.Route("/api/profile", func(r chi.Router) {
		r.Use(requireSession)
		r.Get("/", h.GetProfile)
		r.Put("/name", h.UpdateName)
		r.Put("/email", h.UpdateEmail)
		r.Put("/password", h.UpdatePassword)
	})
}
