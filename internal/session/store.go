// Package session keeps the bearer tokens of browser sessions. A session is
// identified by an opaque id carried in a cookie; each session has one token
// per authentication channel.
package session

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Channel selects which bearer token of a session is meant
type Channel string

const (
	// ChannelUser is the regular voter/admin login
	ChannelUser Channel = "token"
	// ChannelAdmin is the separate admin OTP login
	ChannelAdmin Channel = "adminToken"
)

// ErrNoToken is returned by token sources when the session has no token.
var ErrNoToken = errors.New("session: no token")

// TokenStore holds one bearer token per (session, channel)
type TokenStore interface {
	// Get returns "" when no token is stored
	Get(ctx context.Context, sid string, ch Channel) (string, error)
	Set(ctx context.Context, sid string, ch Channel, token string) error
	Clear(ctx context.Context, sid string, ch Channel) error
}

// NewID returns a fresh session id
func NewID() string {
	return uuid.NewString()
}

// ValidID reports whether id looks like one issued by NewID
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

type ctxKey struct{}

// WithID stores the session id in ctx
func WithID(ctx context.Context, sid string) context.Context {
	return context.WithValue(ctx, ctxKey{}, sid)
}

// IDFromContext returns the session id stored by WithID, or ""
func IDFromContext(ctx context.Context) string {
	sid, _ := ctx.Value(ctxKey{}).(string)
	return sid
}
