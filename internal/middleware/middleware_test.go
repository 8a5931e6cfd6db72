package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/AnshRaj112/journal-backend/internal/services"
)

type stubSessions map[string]string

func (s stubSessions) Validate(_ context.Context, token string) (*services.Session, error) {
	if uid, ok := s[token]; ok {
		return &services.Session{ID: "sess-" + token, UserID: uid}, nil
	}
	return nil, services.ErrInvalidSession
}

func echoUser(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte(UserID(r.Context())))
}

func TestRequireSession(t *testing.T) {
	h := RequireSession(stubSessions{"good": "user-1"})(http.HandlerFunc(echoUser))

	tests := []struct {
		name   string
		setup  func(r *http.Request)
		status int
		body   string
	}{
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer good") }, http.StatusOK, "user-1"},
		{"lowercase bearer", func(r *http.Request) { r.Header.Set("Authorization", "bearer good") }, http.StatusOK, "user-1"},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "good"}) }, http.StatusOK, "user-1"},
		{"missing", func(r *http.Request) {}, http.StatusUnauthorized, ""},
		{"revoked", func(r *http.Request) { r.Header.Set("Authorization", "Bearer stale") }, http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/journal", nil)
			tt.setup(r)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, r)

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, tt.body, rec.Body.String())
			} else {
				assert.JSONEq(t, `{"success":false,"message":"Unauthorized"}`, rec.Body.String())
			}
		})
	}
}

func TestAIRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	limiter := NewAILimiter(rdb, 2, zap.NewNop().Sugar())
	h := AIRateLimit(limiter)(http.HandlerFunc(echoUser))

	call := func(uid string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, "/api/journal/process-ai", nil)
		r = r.WithContext(WithSession(r.Context(), &services.Session{UserID: uid}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		return rec
	}

	assert.Equal(t, http.StatusOK, call("user-1").Code)
	rec := call("user-1")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	rec = call("user-1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, call("user-2").Code)

	mr.FastForward(AIRateLimitWindow)
	assert.Equal(t, http.StatusOK, call("user-1").Code)
}

func TestAILimiterWindowExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	ctx := context.Background()
	limiter := NewAILimiter(rdb, 2, zap.NewNop().Sugar())
	key := AIRateLimitKeyPrefix + "user-1"

	ok, _ := limiter.Allow(ctx, "user-1")
	require.True(t, ok)
	assert.Equal(t, AIRateLimitWindow, mr.TTL(key))

	// Later calls in the window keep the original deadline
	mr.FastForward(20 * time.Second)
	limiter.Allow(ctx, "user-1")
	assert.Equal(t, AIRateLimitWindow-20*time.Second, mr.TTL(key))

	// A counter that lost its TTL gets one back instead of blocking forever
	require.NoError(t, mr.Set(AIRateLimitKeyPrefix+"user-2", "40"))
	ok, _ = limiter.Allow(ctx, "user-2")
	assert.False(t, ok)
	assert.Equal(t, AIRateLimitWindow, mr.TTL(AIRateLimitKeyPrefix+"user-2"))

	mr.FastForward(AIRateLimitWindow)
	ok, _ = limiter.Allow(ctx, "user-2")
	assert.True(t, ok)
}

func TestAILimiterFailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { rdb.Close() })
	mr.Close()

	ok, remaining := NewAILimiter(rdb, 3, zap.NewNop().Sugar()).Allow(context.Background(), "user-1")
	assert.True(t, ok)
	assert.Equal(t, 3, remaining)
}

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SecurityHeaders(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, rec.Header().Get("Strict-Transport-Security"))
}

func TestHostCheck(t *testing.T) {
	h := HostCheck("api.journal.example.com")(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	r := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.Host = "API.journal.example.com:443"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusOK, rec.Code)

	r.Host = "evil.example.com"
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestIPRateLimiter(t *testing.T) {
	l := NewIPRateLimiter(rate.Limit(0.001), 2)
	t.Cleanup(l.Close)
	h := l.Handler(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	call := func(remote string) int {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = remote
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, call("10.0.0.1:1000"))
	assert.Equal(t, http.StatusOK, call("10.0.0.1:1001"))
	assert.Equal(t, http.StatusTooManyRequests, call("10.0.0.1:1002"))
	assert.Equal(t, http.StatusOK, call("10.0.0.2:1000"))
}

func TestCORSPreflight(t *testing.T) {
	h := CORS([]string{"http://localhost:3000"})(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	r := httptest.NewRequest(http.MethodOptions, "/api/journal", nil)
	r.Header.Set("Origin", "http://localhost:3000")
	r.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	require.Less(t, rec.Code, 300)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	r = httptest.NewRequest(http.MethodOptions, "/api/journal", nil)
	r.Header.Set("Origin", "https://evil.example.com")
	r.Header.Set("Access-Control-Request-Method", "POST")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
