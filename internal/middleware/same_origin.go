package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"votedesk/pkg/logger"
)

// SameOriginConfig controls how the request's own origin is resolved
type SameOriginConfig struct {
	// TrustForwardedProto reads the scheme from X-Forwarded-Proto. Enable only
	// behind a proxy that sets it.
	TrustForwardedProto bool
}

// SameOrigin refuses state-changing requests that cannot prove they were
// sent by a page of this console. Sec-Fetch-Site is used when the browser
// sends it, otherwise Origin, then Referer. A request carrying none of them
// is refused.
func SameOrigin(cfg SameOriginConfig, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !isMutation(r.Method) || hasSameOriginProof(r, cfg) {
				next.ServeHTTP(w, r)
				return
			}
			LoggerFrom(r.Context(), log).WithFields(map[string]interface{}{
				"method":         r.Method,
				"path":           r.URL.Path,
				"origin":         r.Header.Get("Origin"),
				"sec_fetch_site": r.Header.Get("Sec-Fetch-Site"),
			}).Warn("Cross-origin form submission refused")
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		})
	}
}

func isMutation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}

func hasSameOriginProof(r *http.Request, cfg SameOriginConfig) bool {
	if site := strings.ToLower(strings.TrimSpace(r.Header.Get("Sec-Fetch-Site"))); site != "" {
		return site == "same-origin" || site == "none"
	}
	scheme := requestScheme(r, cfg)
	host, port := hostParts(r.Host)
	if host == "" {
		return false
	}
	if port == "" {
		port = defaultPort(scheme)
	}
	if origin := strings.TrimSpace(r.Header.Get("Origin")); origin != "" {
		return matchesOrigin(origin, scheme, host, port)
	}
	if referer := strings.TrimSpace(r.Referer()); referer != "" {
		return matchesOrigin(referer, scheme, host, port)
	}
	return false
}

func matchesOrigin(raw, scheme, host, port string) bool {
	if raw == "null" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	s := strings.ToLower(u.Scheme)
	if s != scheme || strings.ToLower(u.Hostname()) != host {
		return false
	}
	p := u.Port()
	if p == "" {
		p = defaultPort(s)
	}
	return p != "" && p == port
}

func requestScheme(r *http.Request, cfg SameOriginConfig) string {
	if cfg.TrustForwardedProto {
		if p := strings.ToLower(strings.TrimSpace(r.Header.Get("X-Forwarded-Proto"))); p == "http" || p == "https" {
			return p
		}
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}

func hostParts(raw string) (string, string) {
	u, err := url.Parse("//" + strings.TrimSpace(raw))
	if err != nil {
		return "", ""
	}
	return strings.ToLower(u.Hostname()), u.Port()
}

func defaultPort(scheme string) string {
	switch scheme {
	case "https":
		return "443"
	case "http":
		return "80"
	default:
		return ""
	}
}
