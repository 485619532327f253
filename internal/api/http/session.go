package apihttp

import (
	"net/http"

	"mediadownloader/web/internal/notify"
)

const sessionCookie = "mediaweb_session"

func readSession(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil || !notify.ValidSessionID(cookie.Value) {
		return "", false
	}
	return cookie.Value, true
}

// ensureSession returns the caller's session id, issuing a new cookie when
// the request carries none.
func ensureSession(w http.ResponseWriter, r *http.Request) string {
	if id, ok := readSession(r); ok {
		return id
	}
	id := notify.NewSessionID()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}
