package services

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/desertthunder/prepx/internal/shared"
	"golang.org/x/oauth2"
)

const defaultProvider = "prepx"

// TokenStore persists OAuth tokens between runs.
type TokenStore interface {
	LoadToken(provider string) (*oauth2.Token, error)
	SaveToken(provider string, token *oauth2.Token) error
	DeleteToken(provider string) error
}

// Session manages the OAuth2 login for the backend and keeps the stored token fresh.
//
// Session implements [oauth2.TokenSource].
type Session struct {
	config   *oauth2.Config
	store    TokenStore
	provider string
	ctx      context.Context

	mu      sync.Mutex
	source  oauth2.TokenSource
	current *oauth2.Token
}

var _ oauth2.TokenSource = (*Session)(nil)

// NewSession creates a [Session] from the configured OAuth registration.
func NewSession(cfg shared.OAuthConfig, store TokenStore) (*Session, error) {
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("%w: missing oauth client_id", shared.ErrMissingCredentials)
	}
	if cfg.AuthURL == "" || cfg.TokenURL == "" {
		return nil, fmt.Errorf("%w: missing oauth endpoints", shared.ErrInvalidConfig)
	}
	if store == nil {
		return nil, fmt.Errorf("%w: token store is required", shared.ErrInvalidConfig)
	}

	redirectURI := cfg.RedirectURI
	if redirectURI == "" {
		redirectURI = "http://localhost:3000/callback"
	}

	return &Session{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  redirectURI,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthURL,
				TokenURL: cfg.TokenURL,
			},
		},
		store:    store,
		provider: defaultProvider,
		ctx:      context.Background(),
	}, nil
}

// WithHTTPClient makes token exchange and refresh go through client.
func (s *Session) WithHTTPClient(client *http.Client) *Session {
	s.ctx = context.WithValue(context.Background(), oauth2.HTTPClient, client)
	return s
}

// Config returns the underlying OAuth2 configuration.
func (s *Session) Config() *oauth2.Config {
	return s.config
}

// AuthCodeURL returns the URL the user visits to log in.
func (s *Session) AuthCodeURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange trades an authorization code for a token and stores it.
func (s *Session) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := s.config.Exchange(s.exchangeContext(ctx), code)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to exchange auth code: %v", shared.ErrAuthFailed, err)
	}
	if err := s.Login(token); err != nil {
		return nil, err
	}
	return token, nil
}

// Login stores token and makes it the active credential.
func (s *Session) Login(token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("%w: empty token", shared.ErrAuthFailed)
	}
	if err := s.store.SaveToken(s.provider, token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.use(token)
	return nil
}

// Logout forgets the active token and removes it from the store.
func (s *Session) Logout() error {
	s.mu.Lock()
	s.source, s.current = nil, nil
	s.mu.Unlock()

	if err := s.store.DeleteToken(s.provider); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}

// Token returns a valid access token, refreshing and persisting it when it has expired.
func (s *Session) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.source == nil {
		token, err := s.store.LoadToken(s.provider)
		if err != nil || token == nil {
			return nil, shared.ErrNotAuthenticated
		}
		s.use(token)
	}

	token, err := s.source.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}

	if token.AccessToken != s.current.AccessToken {
		if err := s.store.SaveToken(s.provider, token); err != nil {
			return nil, fmt.Errorf("failed to save refreshed token: %w", err)
		}
		s.current = token
	}

	return token, nil
}

// Authenticated reports whether a usable token is available, refreshing it if due.
func (s *Session) Authenticated() bool {
	_, err := s.Token()
	return err == nil
}

// Client returns an [http.Client] that authorizes requests with the session token.
func (s *Session) Client(ctx context.Context, timeout time.Duration) *http.Client {
	client := oauth2.NewClient(s.exchangeContext(ctx), s)
	client.Timeout = timeout
	return client
}

// use must be called with mu held.
func (s *Session) use(token *oauth2.Token) {
	s.current = token
	s.source = oauth2.ReuseTokenSource(token, s.config.TokenSource(s.ctx, token))
}

// exchangeContext carries the session's HTTP client override into ctx.
func (s *Session) exchangeContext(ctx context.Context) context.Context {
	if client, ok := s.ctx.Value(oauth2.HTTPClient).(*http.Client); ok {
		return context.WithValue(ctx, oauth2.HTTPClient, client)
	}
	return ctx
}
