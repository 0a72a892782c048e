package core

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/docmill/docgate/models"
)

// Keys recognized in the credential env file.
const (
	AdminUsernameKey = "MANAGEMENT_ADMIN_USERNAME"
	AdminPasswordKey = "MANAGEMENT_ADMIN_PASSWORD"
)

// Fallback credential used when no env file is found or the admin keys are
// missing from it. This is a deployment convenience carried over from the
// original system; LoadCredentials reports whether it was used so the caller
// can log it loudly.
const (
	FallbackUsername = "admin"
	FallbackPassword = "docgate123"
)

// CredentialSet is the immutable username -> password mapping established at
// startup. It is safe for concurrent reads; it is never mutated after load.
type CredentialSet struct {
	entries map[string]string
}

// NewCredentialSet builds a set from explicit entries. Usernames are unique;
// the last value wins on duplicates.
func NewCredentialSet(creds ...models.Credential) *CredentialSet {
	entries := make(map[string]string, len(creds))
	for _, c := range creds {
		entries[c.Username] = c.Password
	}
	return &CredentialSet{entries: entries}
}

// LoadCredentials reads the admin credential pair from a KEY=VALUE env file.
// Blank lines and lines starting with # are ignored. When the file is absent
// or does not carry both admin keys, the built-in fallback entry is used and
// fallback is returned true.
func LoadCredentials(path string) (set *CredentialSet, fallback bool, err error) {
	if _, serr := os.Stat(path); serr != nil {
		if os.IsNotExist(serr) {
			return fallbackSet(), true, nil
		}
		return nil, false, fmt.Errorf("stat credential file: %w", serr)
	}

	values, err := godotenv.Read(path)
	if err != nil {
		return nil, false, fmt.Errorf("read credential file: %w", err)
	}

	username, password := values[AdminUsernameKey], values[AdminPasswordKey]
	if username == "" || password == "" {
		return fallbackSet(), true, nil
	}

	return NewCredentialSet(models.Credential{Username: username, Password: password}), false, nil
}

func fallbackSet() *CredentialSet {
	return NewCredentialSet(models.Credential{Username: FallbackUsername, Password: FallbackPassword})
}

// Verify reports whether the pair matches a loaded entry exactly. Unknown
// usernames verify false; Verify never fails.
func (s *CredentialSet) Verify(username, password string) bool {
	stored, ok := s.entries[username]
	return ok && stored == password
}

// Len returns the number of loaded entries.
func (s *CredentialSet) Len() int {
	return len(s.entries)
}
