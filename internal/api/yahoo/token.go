package yahoo

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

const (
	authURL  = "https://api.login.yahoo.com/oauth2/request_auth"
	tokenURL = "https://api.login.yahoo.com/oauth2/get_token"
)

// OAuthConfig builds the Yahoo OAuth2 client configuration. An empty
// tokenEndpoint uses the public Yahoo endpoint.
func OAuthConfig(clientID, clientSecret, tokenEndpoint string) *oauth2.Config {
	if tokenEndpoint == "" {
		tokenEndpoint = tokenURL
	}
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:   authURL,
			TokenURL:  tokenEndpoint,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
		RedirectURL: "oob",
	}
}

// TokenSource hands out the bearer token for each request. It checks the
// current token before every request and refreshes it in place when it has
// expired, so the refreshed token is the one used by the in-flight request.
type TokenSource struct {
	mu        sync.Mutex
	conf      *oauth2.Config
	ctx       context.Context
	current   *oauth2.Token
	refreshes int
	onRefresh func()
}

// NewTokenSource seeds the source with caller-supplied credentials. An access
// token without a refresh token is used until the upstream rejects it.
func NewTokenSource(ctx context.Context, conf *oauth2.Config, accessToken, refreshToken string) *TokenSource {
	tok := &oauth2.Token{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
	}
	if accessToken == "" {
		tok.Expiry = time.Unix(1, 0)
	}
	return &TokenSource{conf: conf, ctx: context.WithoutCancel(ctx), current: tok}
}

// Token returns a valid token, refreshing first when the current one is no
// longer valid.
func (s *TokenSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current.Valid() {
		return s.current, nil
	}
	return s.refreshLocked()
}

// Invalidate marks the current token expired after the upstream rejected it.
// It reports whether a refresh is possible at all.
func (s *TokenSource) Invalidate(rejectedAccessToken string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current.RefreshToken == "" {
		return false
	}
	if s.current.AccessToken == rejectedAccessToken {
		s.current.Expiry = time.Unix(1, 0)
	}
	return true
}

func (s *TokenSource) refreshLocked() (*oauth2.Token, error) {
	if s.current.RefreshToken == "" || s.conf == nil {
		return nil, ErrAuth
	}
	seed := &oauth2.Token{RefreshToken: s.current.RefreshToken, Expiry: time.Unix(1, 0)}
	tok, err := s.conf.TokenSource(s.ctx, seed).Token()
	if err != nil {
		return nil, fmt.Errorf("%w: refreshing token: %v", ErrAuth, err)
	}
	if tok.RefreshToken == "" {
		tok.RefreshToken = s.current.RefreshToken
	}
	s.current = tok
	s.refreshes++
	if s.onRefresh != nil {
		s.onRefresh()
	}
	slog.Debug("Refreshed upstream access token", "expiry", tok.Expiry)
	return tok, nil
}

func (s *TokenSource) Refreshes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshes
}
