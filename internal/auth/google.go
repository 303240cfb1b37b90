package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserinfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

// GoogleConfig holds the OAuth client registration.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// GoogleProfile is the subset of OIDC userinfo the app stores.
type GoogleProfile struct {
	Subject string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
}

// Google runs the authorization code flow against Google.
type Google struct {
	oauth       *oauth2.Config
	userinfoURL string
}

// NewGoogle returns nil when no client ID is configured.
func NewGoogle(cfg GoogleConfig) *Google {
	if cfg.ClientID == "" {
		return nil
	}
	return &Google{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		userinfoURL: googleUserinfoURL,
	}
}

// AuthCodeURL returns the consent page URL carrying state.
func (g *Google) AuthCodeURL(state string) string {
	return g.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Profile exchanges code for a token and fetches the user's profile.
func (g *Google) Profile(ctx context.Context, code string) (GoogleProfile, error) {
	tok, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return GoogleProfile{}, fmt.Errorf("exchange code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userinfoURL, nil)
	if err != nil {
		return GoogleProfile{}, fmt.Errorf("build userinfo request: %w", err)
	}
	resp, err := g.oauth.Client(ctx, tok).Do(req)
	if err != nil {
		return GoogleProfile{}, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return GoogleProfile{}, fmt.Errorf("fetch userinfo: status %d", resp.StatusCode)
	}

	var p GoogleProfile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return GoogleProfile{}, fmt.Errorf("decode userinfo: %w", err)
	}
	if p.Subject == "" {
		return GoogleProfile{}, fmt.Errorf("userinfo has no subject")
	}
	return p, nil
}
