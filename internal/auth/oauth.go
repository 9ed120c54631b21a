package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// Google endpoints. Overridable in GatewayConfig so tests can point the
// gateway at a local fake provider.
const (
	googleAuthURL     = "https://accounts.google.com/o/oauth2/v2/auth"
	googleTokenURL    = "https://oauth2.googleapis.com/token"
	googleUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"
)

// Profile carries the verified identity attributes fetched from the provider.
type Profile struct {
	Subject       string `json:"sub"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
}

// GatewayConfig configures the external identity provider exchange.
type GatewayConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	// Endpoint overrides, empty in production.
	AuthURL     string
	TokenURL    string
	UserInfoURL string

	// Timeout bounds each outbound call to the provider.
	Timeout time.Duration
}

// Gateway performs the OAuth2 authorization-code exchange against the
// external identity provider and fetches the profile attributes the directory
// needs to resolve a local account. The only server-side state across the two
// halves of the flow is the one-shot anti-forgery record in StateStore.
type Gateway struct {
	conf        *oauth2.Config
	userInfoURL string
	states      *StateStore
	client      *http.Client
	timeout     time.Duration
}

// NewGateway constructs a Gateway.
func NewGateway(cfg GatewayConfig, states *StateStore) *Gateway {
	if cfg.AuthURL == "" {
		cfg.AuthURL = googleAuthURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = googleTokenURL
	}
	if cfg.UserInfoURL == "" {
		cfg.UserInfoURL = googleUserInfoURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Gateway{
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthURL,
				TokenURL: cfg.TokenURL,
			},
		},
		userInfoURL: cfg.UserInfoURL,
		states:      states,
		client:      &http.Client{Timeout: cfg.Timeout},
		timeout:     cfg.Timeout,
	}
}

// Start issues a fresh anti-forgery state token with a PKCE verifier and
// builds the provider authorization URL to redirect the caller to.
func (g *Gateway) Start(ctx context.Context) (string, error) {
	state := uuid.NewString()
	verifier := oauth2.GenerateVerifier()
	if err := g.states.Put(ctx, state, verifier); err != nil {
		return "", err
	}
	url := g.conf.AuthCodeURL(state,
		oauth2.AccessTypeOnline,
		oauth2.S256ChallengeOption(verifier),
	)
	return url, nil
}

// Complete handles the provider callback: verifies and consumes the state
// token, exchanges the authorization code, and fetches the profile resource.
func (g *Gateway) Complete(ctx context.Context, code, state string) (Profile, error) {
	if code == "" || state == "" {
		return Profile{}, ErrMissingParameter
	}

	verifier, err := g.states.Consume(ctx, state)
	if err != nil {
		return Profile{}, err
	}

	exchangeCtx, cancel := context.WithTimeout(
		context.WithValue(ctx, oauth2.HTTPClient, g.client), g.timeout)
	defer cancel()

	token, err := g.conf.Exchange(exchangeCtx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return Profile{}, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}

	return g.fetchProfile(ctx, token.AccessToken)
}

func (g *Gateway) fetchProfile(ctx context.Context, accessToken string) (Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userInfoURL, nil)
	if err != nil {
		return Profile{}, fmt.Errorf("%w: %v", ErrProfileFetchFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := g.client.Do(req)
	if err != nil {
		return Profile{}, fmt.Errorf("%w: %v", ErrProfileFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Profile{}, fmt.Errorf("%w: status %d", ErrProfileFetchFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Profile{}, fmt.Errorf("%w: %v", ErrProfileFetchFailed, err)
	}

	var profile Profile
	if err := json.Unmarshal(body, &profile); err != nil {
		return Profile{}, fmt.Errorf("%w: %v", ErrProfileParseFailed, err)
	}
	if profile.Email == "" {
		return Profile{}, fmt.Errorf("%w: missing email", ErrProfileParseFailed)
	}
	return profile, nil
}
