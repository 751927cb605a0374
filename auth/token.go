package auth

import (
	"context"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// expiryDelta is the minimum remaining lifetime required to reuse a cached
// token; anything closer to expiry is refreshed before the outbound call.
const expiryDelta = time.Minute

// defaultLifetime applies when the token endpoint returns no expiry and the
// access token carries no exp claim.
const defaultLifetime = time.Hour

// TokenSource lazily acquires a bearer token with the client credential
// grant and caches it until it nears expiry.
type TokenSource struct {
	config *Config
	mu     sync.Mutex
	token  *oauth2.Token
	now    func() time.Time
}

// NewTokenSource creates a token source for the given config.
func NewTokenSource(config *Config) *TokenSource {
	return &TokenSource{config: config, now: time.Now}
}

// Token returns the cached token, refreshing it when it is missing or
// valid for less than the expiry delta.
func (s *TokenSource) Token(ctx context.Context) (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token != nil && s.token.Expiry.After(s.now().Add(expiryDelta)) {
		return s.token, nil
	}
	grant := &clientcredentials.Config{
		ClientID:     s.config.ClientID,
		ClientSecret: s.config.ClientSecret,
		TokenURL:     s.config.TokenURL,
		Scopes:       s.config.Scopes,
	}
	token, err := grant.Token(ctx)
	if err != nil {
		return nil, err
	}
	if token.Expiry.IsZero() {
		token.Expiry = s.expiry(token.AccessToken)
	}
	s.token = token
	return token, nil
}

// expiry falls back to the exp claim of the (unverified) JWT access token.
func (s *TokenSource) expiry(accessToken string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err == nil {
		if expiresAt, err := claims.GetExpirationTime(); err == nil && expiresAt != nil {
			return expiresAt.Time
		}
	}
	return s.now().Add(defaultLifetime)
}
