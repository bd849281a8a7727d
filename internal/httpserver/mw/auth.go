package mw

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/tabvault/tabvault/internal/logger"
)

// Auth requires a Bearer token on every request. An empty expected
// token disables the server entirely rather than running open.
func Auth(token string, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				log.Error("auth middleware configured without a token, rejecting request")
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}

			got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				w.Header().Set("WWW-Authenticate", `Bearer realm="tabvault"`)
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
