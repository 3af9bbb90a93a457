package auth

import (
	"net/http"
	"time"
)

// CookieName is the cookie carrying the session token.
const CookieName = "token"

// SetSessionCookie stores the token in an HTTP-only cookie.
func SetSessionCookie(w http.ResponseWriter, token string, expires time.Time, secure bool) {
	http.SetCookie(w, sessionCookie(token, expires, secure))
}

// ClearSessionCookie expires the cookie immediately. The token itself stays
// valid until expiry; logout is client-side only.
func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	c := sessionCookie("", time.Unix(0, 0), secure)
	c.MaxAge = -1
	http.SetCookie(w, c)
}

func sessionCookie(value string, expires time.Time, secure bool) *http.Cookie {
	sameSite := http.SameSiteStrictMode
	if secure {
		sameSite = http.SameSiteNoneMode
	}
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite,
	}
}
