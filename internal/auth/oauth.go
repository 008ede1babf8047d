package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

// GitHubUser is the part of the GitHub profile used to match an admin account.
type GitHubUser struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
	Name  string `json:"name"`
	// Email is the primary verified address, looked up separately when the
	// public profile hides it.
	Email string `json:"email"`
}

// GitHubProvider runs the OAuth authorization-code flow against GitHub.
type GitHubProvider struct {
	config  *oauth2.Config
	apiBase string
}

// NewGitHubProvider creates a GitHubProvider asking for the profile and email
// scopes.
func NewGitHubProvider(clientID, clientSecret, callbackURL string) *GitHubProvider {
	return &GitHubProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     github.Endpoint,
		},
		apiBase: "https://api.github.com",
	}
}

// AuthURL is the GitHub consent page URL carrying state.
func (p *GitHubProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades the callback code for a token and fetches the profile.
func (p *GitHubProvider) Exchange(ctx context.Context, code string) (*GitHubUser, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("auth: exchanging OAuth code: %w", err)
	}
	client := p.config.Client(ctx, token)

	var user GitHubUser
	if err := p.getJSON(ctx, client, "/user", &user); err != nil {
		return nil, err
	}
	if user.ID == 0 {
		return nil, errors.New("auth: GitHub returned an invalid user (ID = 0)")
	}

	if user.Email == "" {
		email, err := p.primaryEmail(ctx, client)
		if err != nil {
			return nil, err
		}
		user.Email = email
	}

	return &user, nil
}

func (p *GitHubProvider) primaryEmail(ctx context.Context, client *http.Client) (string, error) {
	var emails []struct {
		Email    string `json:"email"`
		Primary  bool   `json:"primary"`
		Verified bool   `json:"verified"`
	}
	if err := p.getJSON(ctx, client, "/user/emails", &emails); err != nil {
		return "", err
	}
	for _, e := range emails {
		if e.Primary && e.Verified {
			return strings.ToLower(e.Email), nil
		}
	}
	return "", errors.New("auth: GitHub account has no verified primary email")
}

func (p *GitHubProvider) getJSON(ctx context.Context, client *http.Client, path string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiBase+path, nil)
	if err != nil {
		return fmt.Errorf("auth: building GitHub request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("auth: calling GitHub %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("auth: GitHub %s returned status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("auth: decoding GitHub %s response: %w", path, err)
	}
	return nil
}
