package server

import (
	"crypto/subtle"
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

const apiKeyHeader = "x-api-key"

func (s *Server) requireAccess(level Access) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(apiKeyHeader)

			switch level {
			case AccessSearchKey:
				if s.Config.SearchAPIKey != "" && !keysEqual(key, s.Config.SearchAPIKey) {
					writeError(w, http.StatusUnauthorized, "Unauthorized")
					return
				}
			case AccessAdmin:
				if !s.adminKeyValid(key) {
					writeError(w, http.StatusUnauthorized, "Unauthorized")
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// adminKeyValid accepts the key when it matches the bcrypt hash or the
// plain rebuild key. With neither configured nothing is accepted.
func (s *Server) adminKeyValid(key string) bool {
	if key == "" {
		return false
	}
	if s.Config.RebuildAPIKeyHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(s.Config.RebuildAPIKeyHash), []byte(key)) == nil
	}
	if s.Config.RebuildAPIKey != "" {
		return keysEqual(key, s.Config.RebuildAPIKey)
	}
	return false
}

func keysEqual(got, want string) bool {
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
