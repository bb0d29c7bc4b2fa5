package session

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

type storeTokenSource struct {
	ctx   context.Context
	store TokenStore
	sid   string
	ch    Channel
}

// TokenSource adapts a session's token to oauth2 so the API client's
// transport can attach it as a bearer token.
func TokenSource(ctx context.Context, store TokenStore, sid string, ch Channel) oauth2.TokenSource {
	return &storeTokenSource{ctx: ctx, store: store, sid: sid, ch: ch}
}

// ContextTokenSource resolves the session id from each request context.
// It plugs into apiclient.Client.WithTokenSourceFunc.
func ContextTokenSource(store TokenStore, ch Channel) func(ctx context.Context) oauth2.TokenSource {
	return func(ctx context.Context) oauth2.TokenSource {
		return TokenSource(ctx, store, IDFromContext(ctx), ch)
	}
}

// StaticToken wraps an already known token
func StaticToken(token string) oauth2.TokenSource {
	if token == "" {
		return emptySource{}
	}
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
}

type emptySource struct{}

func (emptySource) Token() (*oauth2.Token, error) { return nil, ErrNoToken }

func (s *storeTokenSource) Token() (*oauth2.Token, error) {
	if s.sid == "" {
		return nil, ErrNoToken
	}
	raw, err := s.store.Get(s.ctx, s.sid, s.ch)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, ErrNoToken
	}
	tok := &oauth2.Token{AccessToken: raw, TokenType: "Bearer"}
	if exp, ok := TokenExpiry(raw); ok {
		tok.Expiry = exp
	}
	return tok, nil
}

// TokenExpiry reads the exp claim of a JWT without verifying its signature;
// the API verifies tokens, the console only avoids sending dead ones.
// Opaque tokens report ok=false.
func TokenExpiry(raw string) (time.Time, bool) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// Expired reports whether raw is a JWT whose exp lies before now
func Expired(raw string, now time.Time) bool {
	exp, ok := TokenExpiry(raw)
	return ok && !now.Before(exp)
}
