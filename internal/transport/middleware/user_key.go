package middleware

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/heartmarshall/hustle-xp/internal/domain"
	"github.com/heartmarshall/hustle-xp/pkg/ctxutil"
)

const (
	// UserKeyHeader identifies the caller when the query has no userId.
	UserKeyHeader = "X-User-Id"
	// UserKeyParam is the query parameter that selects the caller.
	UserKeyParam = "userId"

	maxUserKeyLen = 128
)

// UserKey resolves the caller's opaque user key from ?userId=, then the
// X-User-Id header, then domain.DefaultUserKey, and stores it in the context.
// There is no authentication: the key only partitions state.
func UserKey() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := strings.TrimSpace(r.URL.Query().Get(UserKeyParam))
			if key == "" {
				key = strings.TrimSpace(r.Header.Get(UserKeyHeader))
			}
			if key == "" {
				key = domain.DefaultUserKey
			}
			if utf8.RuneCountInString(key) > maxUserKeyLen {
				writeError(w, http.StatusBadRequest, "user key is too long")
				return
			}

			next.ServeHTTP(w, r.WithContext(ctxutil.WithUserKey(r.Context(), key)))
		})
	}
}
