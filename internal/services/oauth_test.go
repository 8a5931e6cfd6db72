package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func fakeProviderServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.Form.Get("code") != "good-code" {
			http.Error(w, `{"error":"bad_verification_code"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok-123","token_type":"bearer"}`))
	})
	mux.HandleFunc("/oauth2/v2/userinfo", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id": "g-42", "email": "ada@example.com", "verified_email": true, "name": "Ada", "picture": "https://img/ada.png",
		})
	})
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id": 9001, "login": "octo", "name": "", "email": "public@example.com", "avatar_url": "https://img/octo.png",
		})
	})
	mux.HandleFunc("/user/emails", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]map[string]interface{}{
			{"email": "old@example.com", "primary": false, "verified": true},
			{"email": "octo@example.com", "primary": true, "verified": true},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testProvider(name, base string) *OAuthProvider {
	return &OAuthProvider{
		Name: name,
		Config: &oauth2.Config{
			ClientID:     "client",
			ClientSecret: "secret",
			Endpoint:     oauth2.Endpoint{AuthURL: base + "/authorize", TokenURL: base + "/token", AuthStyle: oauth2.AuthStyleInParams},
			RedirectURL:  "http://localhost:8080/api/auth/" + name + "/callback",
		},
		APIBase: base,
	}
}

func stateFrom(t *testing.T, authURL string) string {
	t.Helper()
	u, err := url.Parse(authURL)
	require.NoError(t, err)
	state := u.Query().Get("state")
	require.NotEmpty(t, state)
	return state
}

func TestOAuthGoogleFlow(t *testing.T) {
	srv := fakeProviderServer(t)
	mr, rdb := newTestRedis(t)
	s := NewOAuthService(rdb, testProvider(ProviderGoogle, srv.URL))
	ctx := context.Background()

	authURL, err := s.AuthURL(ctx, ProviderGoogle)
	require.NoError(t, err)
	state := stateFrom(t, authURL)
	assert.True(t, mr.Exists(OAuthStateKeyPrefix+state))

	profile, err := s.Exchange(ctx, ProviderGoogle, state, "good-code")
	require.NoError(t, err)
	assert.Equal(t, "g-42", profile.ProviderAccountID)
	assert.Equal(t, "ada@example.com", profile.Email)
	assert.True(t, profile.EmailVerified)
	assert.False(t, mr.Exists(OAuthStateKeyPrefix+state), "state is single use")

	_, err = s.Exchange(ctx, ProviderGoogle, state, "good-code")
	assert.ErrorIs(t, err, ErrInvalidOAuthState)
}

func TestOAuthGitHubPrefersVerifiedPrimaryEmail(t *testing.T) {
	srv := fakeProviderServer(t)
	_, rdb := newTestRedis(t)
	s := NewOAuthService(rdb, testProvider(ProviderGitHub, srv.URL))
	ctx := context.Background()

	authURL, err := s.AuthURL(ctx, ProviderGitHub)
	require.NoError(t, err)

	profile, err := s.Exchange(ctx, ProviderGitHub, stateFrom(t, authURL), "good-code")
	require.NoError(t, err)
	assert.Equal(t, "9001", profile.ProviderAccountID)
	assert.Equal(t, "octo@example.com", profile.Email)
	assert.True(t, profile.EmailVerified)
	assert.Equal(t, "octo", profile.Name)
}

func TestOAuthRejectsStateFromOtherProvider(t *testing.T) {
	srv := fakeProviderServer(t)
	_, rdb := newTestRedis(t)
	s := NewOAuthService(rdb, testProvider(ProviderGoogle, srv.URL), testProvider(ProviderGitHub, srv.URL))
	ctx := context.Background()

	authURL, err := s.AuthURL(ctx, ProviderGoogle)
	require.NoError(t, err)

	_, err = s.Exchange(ctx, ProviderGitHub, stateFrom(t, authURL), "good-code")
	assert.ErrorIs(t, err, ErrInvalidOAuthState)
	_, err = s.Exchange(ctx, ProviderGoogle, "never-issued", "good-code")
	assert.ErrorIs(t, err, ErrInvalidOAuthState)
}

func TestOAuthUnknownProvider(t *testing.T) {
	_, rdb := newTestRedis(t)
	s := NewOAuthService(rdb)

	_, err := s.AuthURL(context.Background(), "myspace")
	assert.ErrorIs(t, err, ErrUnknownProvider)
}
