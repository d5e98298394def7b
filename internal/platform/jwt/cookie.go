package jwtmw

import (
	"net/http"
	"time"
)

// SetSessionCookie writes the session cookie expiring with the token.
func SetSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, sessionCookie(token, expires))
}

// ClearSessionCookie overwrites the session cookie with an empty, already expired one.
func ClearSessionCookie(w http.ResponseWriter) {
	c := sessionCookie("", time.Unix(0, 0))
	c.MaxAge = -1
	http.SetCookie(w, c)
}

func sessionCookie(value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	}
}
