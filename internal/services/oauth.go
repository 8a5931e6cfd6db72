package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/AnshRaj112/journal-backend/internal/config"
	"github.com/AnshRaj112/journal-backend/internal/models"
	"github.com/redis/go-redis/v9"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

const (
	// OAuthStateKeyPrefix is the Redis key prefix for pending OAuth states
	OAuthStateKeyPrefix = "oauth_state:"
	// OAuthStateTTL is how long a login redirect may take
	OAuthStateTTL = 10 * time.Minute

	ProviderGoogle = "google"
	ProviderGitHub = "github"
)

var (
	ErrUnknownProvider   = errors.New("unknown oauth provider")
	ErrInvalidOAuthState = errors.New("invalid or expired oauth state")
)

// OAuthProvider is one configured identity provider. APIBase is where profile
// requests go (Google userinfo or the GitHub REST API).
type OAuthProvider struct {
	Name    string
	Config  *oauth2.Config
	APIBase string
}

// OAuthProviders builds the providers that have client credentials configured.
func OAuthProviders(cfg *config.Config) []*OAuthProvider {
	var out []*OAuthProvider
	if cfg.GoogleClientID != "" {
		out = append(out, &OAuthProvider{
			Name: ProviderGoogle,
			Config: &oauth2.Config{
				ClientID:     cfg.GoogleClientID,
				ClientSecret: cfg.GoogleClientSecret,
				Endpoint:     endpoints.Google,
				RedirectURL:  cfg.OAuthRedirectURL(ProviderGoogle),
				Scopes:       []string{"openid", "email", "profile"},
			},
			APIBase: "https://www.googleapis.com",
		})
	}
	if cfg.GitHubClientID != "" {
		out = append(out, &OAuthProvider{
			Name: ProviderGitHub,
			Config: &oauth2.Config{
				ClientID:     cfg.GitHubClientID,
				ClientSecret: cfg.GitHubClientSecret,
				Endpoint:     endpoints.GitHub,
				RedirectURL:  cfg.OAuthRedirectURL(ProviderGitHub),
				Scopes:       []string{"read:user", "user:email"},
			},
			APIBase: "https://api.github.com",
		})
	}
	return out
}

// OAuthService runs the authorization code flow with state kept in Redis.
type OAuthService struct {
	rdb       *redis.Client
	providers map[string]*OAuthProvider
}

func NewOAuthService(rdb *redis.Client, providers ...*OAuthProvider) *OAuthService {
	s := &OAuthService{rdb: rdb, providers: make(map[string]*OAuthProvider, len(providers))}
	for _, p := range providers {
		s.providers[p.Name] = p
	}
	return s
}

// AuthURL stores a fresh state and returns the provider's consent URL.
func (s *OAuthService) AuthURL(ctx context.Context, provider string) (string, error) {
	p, ok := s.providers[provider]
	if !ok {
		return "", ErrUnknownProvider
	}

	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	state := base64.RawURLEncoding.EncodeToString(buf)

	if err := s.rdb.Set(ctx, OAuthStateKeyPrefix+state, provider, OAuthStateTTL).Err(); err != nil {
		return "", fmt.Errorf("store state: %w", err)
	}
	return p.Config.AuthCodeURL(state), nil
}

// Exchange consumes state, trades code for a token and fetches the user's profile.
func (s *OAuthService) Exchange(ctx context.Context, provider, state, code string) (*models.OAuthProfile, error) {
	p, ok := s.providers[provider]
	if !ok {
		return nil, ErrUnknownProvider
	}
	if state == "" || code == "" {
		return nil, ErrInvalidOAuthState
	}

	owner, err := s.rdb.GetDel(ctx, OAuthStateKeyPrefix+state).Result()
	if errors.Is(err, redis.Nil) || (err == nil && owner != provider) {
		return nil, ErrInvalidOAuthState
	}
	if err != nil {
		return nil, fmt.Errorf("consume state: %w", err)
	}

	tok, err := p.Config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	client := p.Config.Client(ctx, tok)

	switch provider {
	case ProviderGoogle:
		return fetchGoogleProfile(ctx, client, p.APIBase)
	case ProviderGitHub:
		return fetchGitHubProfile(ctx, client, p.APIBase)
	}
	return nil, ErrUnknownProvider
}

func getJSON(ctx context.Context, client *http.Client, url string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("GET %s: status %d: %s", url, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}

func fetchGoogleProfile(ctx context.Context, client *http.Client, base string) (*models.OAuthProfile, error) {
	var info struct {
		ID            string `json:"id"`
		Email         string `json:"email"`
		VerifiedEmail bool   `json:"verified_email"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
	}
	if err := getJSON(ctx, client, strings.TrimRight(base, "/")+"/oauth2/v2/userinfo", &info); err != nil {
		return nil, fmt.Errorf("google profile: %w", err)
	}
	if info.ID == "" || info.Email == "" {
		return nil, errors.New("google profile: missing id or email")
	}
	return &models.OAuthProfile{
		Provider:          ProviderGoogle,
		ProviderAccountID: info.ID,
		Email:             info.Email,
		EmailVerified:     info.VerifiedEmail,
		Name:              info.Name,
		Image:             info.Picture,
	}, nil
}

func fetchGitHubProfile(ctx context.Context, client *http.Client, base string) (*models.OAuthProfile, error) {
	base = strings.TrimRight(base, "/")

	var user struct {
		ID        int64  `json:"id"`
		Login     string `json:"login"`
		Name      string `json:"name"`
		Email     string `json:"email"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := getJSON(ctx, client, base+"/user", &user); err != nil {
		return nil, fmt.Errorf("github profile: %w", err)
	}

	// The public email on /user may be empty or unverified; prefer the verified primary address.
	var emails []struct {
		Email    string `json:"email"`
		Primary  bool   `json:"primary"`
		Verified bool   `json:"verified"`
	}
	if err := getJSON(ctx, client, base+"/user/emails", &emails); err != nil {
		return nil, fmt.Errorf("github emails: %w", err)
	}

	profile := &models.OAuthProfile{
		Provider:          ProviderGitHub,
		ProviderAccountID: strconv.FormatInt(user.ID, 10),
		Email:             user.Email,
		Name:              user.Name,
		Image:             user.AvatarURL,
	}
	if profile.Name == "" {
		profile.Name = user.Login
	}
	for _, e := range emails {
		if e.Primary && e.Verified {
			profile.Email = e.Email
			profile.EmailVerified = true
			break
		}
	}
	if user.ID == 0 || profile.Email == "" {
		return nil, errors.New("github profile: missing id or email")
	}
	return profile, nil
}
