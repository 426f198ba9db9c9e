package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/nightowl/sleepsite/internal/models"
)

var (
	ErrEmailNotVerified = errors.New("user email not available or not verified by provider")
	ErrDomainNotAllowed = errors.New("account is outside the allowed domain")
)

// OAuthProvider is the three-step login handshake: authorization redirect,
// code exchange, profile fetch. No retries; the provider answers or the
// flow fails closed.
type OAuthProvider interface {
	AuthCodeURL(ctx context.Context, redirectURI string) (string, error)
	Exchange(ctx context.Context, redirectURI, code string) (*models.GoogleProfile, error)
}

type GoogleOAuth struct {
	ClientID      string
	ClientSecret  string
	DiscoveryURL  string
	AllowedDomain string
	HTTPClient    *http.Client
}

func NewGoogleOAuth(clientID, clientSecret, discoveryURL, allowedDomain string) *GoogleOAuth {
	return &GoogleOAuth{
		ClientID:      clientID,
		ClientSecret:  clientSecret,
		DiscoveryURL:  discoveryURL,
		AllowedDomain: allowedDomain,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type providerConfig struct {
	AuthorizationEndpoint string `json:"authorization_endpoint"`
	TokenEndpoint         string `json:"token_endpoint"`
	UserinfoEndpoint      string `json:"userinfo_endpoint"`
}

// discover fetches the provider configuration on every login, like the
// upstream discovery document recommends. Nothing is cached.
func (g *GoogleOAuth) discover(ctx context.Context) (*providerConfig, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.DiscoveryURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch discovery document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("discovery document returned status %d", resp.StatusCode)
	}

	var cfg providerConfig
	if err := json.NewDecoder(resp.Body).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode discovery document: %w", err)
	}
	return &cfg, nil
}

func (g *GoogleOAuth) oauthConfig(pc *providerConfig, redirectURI string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     g.ClientID,
		ClientSecret: g.ClientSecret,
		RedirectURL:  redirectURI,
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint: oauth2.Endpoint{
			AuthURL:  pc.AuthorizationEndpoint,
			TokenURL: pc.TokenEndpoint,
		},
	}
}

func (g *GoogleOAuth) AuthCodeURL(ctx context.Context, redirectURI string) (string, error) {
	pc, err := g.discover(ctx)
	if err != nil {
		return "", err
	}

	conf := g.oauthConfig(pc, redirectURI)
	return conf.AuthCodeURL("", oauth2.SetAuthURLParam("prompt", "select_account")), nil
}

// Exchange trades the authorization code for tokens, fetches the profile,
// and applies the verified-email and hosted-domain gates. Callers only see
// a profile when both gates pass.
func (g *GoogleOAuth) Exchange(ctx context.Context, redirectURI, code string) (*models.GoogleProfile, error) {
	pc, err := g.discover(ctx)
	if err != nil {
		return nil, err
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, g.HTTPClient)
	conf := g.oauthConfig(pc, redirectURI)

	token, err := conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("token exchange: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pc.UserinfoEndpoint, nil)
	if err != nil {
		return nil, err
	}
	token.SetAuthHeader(req)

	resp, err := g.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo returned status %d", resp.StatusCode)
	}

	var profile models.GoogleProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}

	if !profile.EmailVerified || profile.Email == "" {
		return nil, ErrEmailNotVerified
	}
	// The domain gate applies regardless of whether the account already
	// exists locally.
	if profile.HostedDomain != g.AllowedDomain {
		return nil, ErrDomainNotAllowed
	}

	return &profile, nil
}
