package middleware

import (
	"context"
	"net/http"
	"time"

	"votedesk/internal/session"
	"votedesk/pkg/logger"
)

// SessionConfig configures the browser session cookie
type SessionConfig struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// Session makes sure every request carries a session id. The id comes from
// the cookie or, when missing or malformed, is freshly issued; either way it
// is stored in the request context for the token store and the workspace.
func Session(cfg SessionConfig, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var sid string
			fresh := false
			if cookie, err := r.Cookie(cfg.CookieName); err == nil && session.ValidID(cookie.Value) {
				sid = cookie.Value
			} else {
				sid = session.NewID()
				fresh = true
			}
			reqLog := LoggerFrom(r.Context(), log).WithSession(sid)
			if fresh {
				reqLog.Debug("Issuing new session")
			}

			// Refresh on every request so an active session does not expire
			http.SetCookie(w, &http.Cookie{
				Name:     cfg.CookieName,
				Value:    sid,
				Path:     "/",
				MaxAge:   int(cfg.TTL.Seconds()),
				HttpOnly: true,
				Secure:   cfg.Secure,
				SameSite: http.SameSiteLaxMode,
			})

			ctx := session.WithID(r.Context(), sid)
			ctx = context.WithValue(ctx, LoggerContextKey, reqLog)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// NoStore keeps browsers from caching pages that show session data
func NoStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}
