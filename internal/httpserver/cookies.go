package httpserver

import (
	"net/http"
	"time"
)

const (
	UserCookie       = "token"
	InstructorCookie = "instructor_token"
)

// SessionCookie is always HttpOnly; Secure plus cross-site SameSite=None is
// reserved for production deployments so local HTTP setups keep working.
func SessionCookie(name, value string, expiresAt time.Time, production bool) *http.Cookie {
	cookie := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if production {
		cookie.Secure = true
		cookie.SameSite = http.SameSiteNoneMode
	}
	return cookie
}
