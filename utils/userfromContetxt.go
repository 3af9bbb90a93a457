package utils

import (
	"net/http"

	"homedish/globals"
)

// GetEmailFromRequest returns the email attached by the session resolver, or "".
func GetEmailFromRequest(r *http.Request) string {
	email, ok := r.Context().Value(globals.EmailKey).(string)
	if !ok {
		return ""
	}
	return email
}
