package models

import "time"

// Session is the client-observed authentication state resolved from a
// bearer token. Nothing is stored server-side; the session lives only for
// the duration of the request it was resolved on.
type Session struct {
	Username  string    `json:"username"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}
