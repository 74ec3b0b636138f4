package session

import (
	"net/http"
	"strings"
)

// FromRequest recovers a raw session token from the request: the named
// cookie wins, the Authorization header (with an optional "Bearer " prefix)
// is the fallback. Pure over the request, no I/O.
func FromRequest(r *http.Request, cookieName string) (string, bool) {
	if ck, err := r.Cookie(cookieName); err == nil && ck.Value != "" {
		return ck.Value, true
	}

	auth := r.Header.Get("Authorization")
	auth = strings.TrimPrefix(auth, "Bearer ")
	if auth == "" {
		return "", false
	}
	return auth, true
}
