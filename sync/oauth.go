// ABOUTME: OAuth configuration and token management for Google APIs
// ABOUTME: Builds the client config, runs the code exchange, and refreshes and persists tokens
package sync

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	gosync "sync"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/harperreed/gcalsync/config"
)

// Scopes requested at login. Changing them requires logging in again.
var Scopes = []string{
	// read contacts
	"https://www.googleapis.com/auth/contacts.readonly",
	// find calendars
	"https://www.googleapis.com/auth/calendar.calendarlist.readonly",
	"https://www.googleapis.com/auth/calendar.readonly",
	// write calendar events
	"https://www.googleapis.com/auth/calendar.events",
	// create calendars
	"https://www.googleapis.com/auth/calendar.calendars",
}

// NewOAuthConfig creates the OAuth2 config for Google APIs. Explicit client
// ID and secret win over the downloaded client secret file.
func NewOAuthConfig(cfg *config.Config) (*oauth2.Config, error) {
	if cfg.ClientID != "" && cfg.ClientSecret != "" {
		return &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Scopes:       Scopes,
			Endpoint:     google.Endpoint,
		}, nil
	}

	if cfg.ClientSecretFile == "" {
		return nil, ErrNoClientCredentials
	}

	data, err := os.ReadFile(cfg.ClientSecretFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w (looked for %s)", ErrNoClientCredentials, cfg.ClientSecretFile)
		}
		return nil, fmt.Errorf("failed to read client secret file: %w", err)
	}

	oauthConfig, err := google.ConfigFromJSON(data, Scopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse client secret file %s: %w", cfg.ClientSecretFile, err)
	}

	return oauthConfig, nil
}

// Authenticator owns the OAuth client config and the token store.
type Authenticator struct {
	oauth  *oauth2.Config
	store  TokenStore
	logger *log.Logger
}

// NewAuthenticator creates an Authenticator.
func NewAuthenticator(oauthConfig *oauth2.Config, store TokenStore, logger *log.Logger) *Authenticator {
	return &Authenticator{
		oauth:  oauthConfig,
		store:  store,
		logger: logger.With("component", "auth"),
	}
}

// Store returns the token store.
func (a *Authenticator) Store() TokenStore {
	return a.store
}

// TokenSource loads the saved token and returns a source that refreshes it
// on expiry and writes refreshed tokens back to the store. It fails with
// ErrReauthenticate when no usable token exists.
func (a *Authenticator) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	token, err := a.store.Load()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReauthenticate, err)
	}

	src := &persistingTokenSource{
		base:   a.oauth.TokenSource(ctx, token),
		store:  a.store,
		last:   token,
		logger: a.logger,
	}

	current, err := src.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReauthenticate, err)
	}

	return oauth2.ReuseTokenSource(current, src), nil
}

// Client returns an HTTP client authorized with the saved token.
func (a *Authenticator) Client(ctx context.Context) (*http.Client, error) {
	ts, err := a.TokenSource(ctx)
	if err != nil {
		return nil, err
	}
	return oauth2.NewClient(ctx, ts), nil
}

// AuthCodeURL returns the consent URL for a login redirected to
// redirectURL, and the PKCE verifier to pass to Exchange.
func (a *Authenticator) AuthCodeURL(redirectURL, state string) (string, string) {
	verifier := oauth2.GenerateVerifier()
	authURL := a.withRedirect(redirectURL).AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.ApprovalForce,
		oauth2.S256ChallengeOption(verifier),
	)
	return authURL, verifier
}

// Exchange trades an authorization code for a token and saves it.
func (a *Authenticator) Exchange(ctx context.Context, redirectURL, code, verifier string) (*oauth2.Token, error) {
	token, err := a.withRedirect(redirectURL).Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}

	if err := a.store.Save(token); err != nil {
		return nil, fmt.Errorf("failed to save token: %w", err)
	}

	a.logger.Debug("token saved", "store", a.store.Location())
	return token, nil
}

func (a *Authenticator) withRedirect(redirectURL string) *oauth2.Config {
	cfg := *a.oauth
	cfg.RedirectURL = redirectURL
	return &cfg
}

// persistingTokenSource saves every newly issued token.
type persistingTokenSource struct {
	mu     gosync.Mutex
	base   oauth2.TokenSource
	store  TokenStore
	last   *oauth2.Token
	logger *log.Logger
}

func (s *persistingTokenSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, err := s.base.Token()
	if err != nil {
		return nil, err
	}

	if s.last == nil || token.AccessToken != s.last.AccessToken {
		if err := s.store.Save(token); err != nil {
			s.logger.Warn("failed to persist refreshed token", "err", err)
		} else {
			s.logger.Debug("refreshed token saved", "store", s.store.Location())
		}
		s.last = token
	}

	return token, nil
}
