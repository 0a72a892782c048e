package models

import "time"

type AuthEventType string

const (
	AuthEventLoginSuccess AuthEventType = "login_success"
	AuthEventLoginFailure AuthEventType = "login_failure"
	AuthEventLogout       AuthEventType = "logout"
)

// AuthEvent is a single entry in the persistent auth audit trail.
type AuthEvent struct {
	ID         string        `json:"id"`
	Type       AuthEventType `json:"type"`
	Username   string        `json:"username"`
	RemoteAddr string        `json:"remoteAddr"`
	CreatedAt  time.Time     `json:"createdAt"`
}
