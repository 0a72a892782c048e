package models

// Credential is a single username/password pair loaded at startup.
// Credentials are never mutated after load.
type Credential struct {
	Username string `json:"username"`
	Password string `json:"-"`
}
