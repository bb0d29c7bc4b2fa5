package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"votedesk/pkg/logger"
)

// CORSConfig describes who may read the console's JSON helpers from
// another origin. The helpers are read-only, so only GET is ever offered.
type CORSConfig struct {
	AllowedOrigins []string
	AllowedHeaders []string
	MaxAge         time.Duration
}

// DefaultCORSConfig allows no origin until AllowedOrigins is set
func DefaultCORSConfig() *CORSConfig {
	return &CORSConfig{
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         24 * time.Hour,
	}
}

func (c *CORSConfig) allows(origin string) bool {
	for _, o := range c.AllowedOrigins {
		if o == "*" || strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}

// CORS answers preflights for the JSON helpers and stamps the allow headers
// on their responses. Requests from origins that are not listed still reach
// the handler, the browser just cannot read the answer.
func CORS(config *CORSConfig, log *logger.Logger) func(http.Handler) http.Handler {
	if config == nil {
		config = DefaultCORSConfig()
	}
	headers := strings.Join(config.AllowedHeaders, ", ")
	maxAge := strconv.Itoa(int(config.MaxAge / time.Second))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			w.Header().Add("Vary", "Origin")
			preflight := r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""

			if origin == "" || !config.allows(origin) {
				if origin != "" {
					LoggerFrom(r.Context(), log).WithFields(map[string]interface{}{
						"origin": origin,
						"path":   r.URL.Path,
					}).Debug("Cross-origin request from unlisted origin")
				}
				if preflight {
					w.WriteHeader(http.StatusForbidden)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")
			if !preflight {
				next.ServeHTTP(w, r)
				return
			}

			if m := r.Header.Get("Access-Control-Request-Method"); m != http.MethodGet {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			if headers != "" {
				w.Header().Set("Access-Control-Allow-Headers", headers)
			}
			w.Header().Set("Access-Control-Max-Age", maxAge)
			w.WriteHeader(http.StatusNoContent)
		})
	}
}
