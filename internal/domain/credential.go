package domain

import (
	"encoding/json"
	"fmt"

	"golang.org/x/oauth2"
)

// Credential holds the OAuth2 token material required to call the platform API.
type Credential struct {
	Token *oauth2.Token
}

// Empty returns true if the credential carries no token.
func (c Credential) Empty() bool {
	return c.Token == nil || (c.Token.AccessToken == "" && c.Token.RefreshToken == "")
}

// Serialize encodes the credential for persistence.
// The empty credential serializes to the empty string.
func (c Credential) Serialize() (string, error) {
	if c.Empty() {
		return "", nil
	}
	b, err := json.Marshal(c.Token)
	if err != nil {
		return "", fmt.Errorf("serialize credential: %w", err)
	}
	return string(b), nil
}

// ParseCredential decodes a credential previously produced by Serialize.
// Returns ErrNoCredential for the empty string.
func ParseCredential(raw string) (Credential, error) {
	if raw == "" {
		return Credential{}, ErrNoCredential
	}
	var tok oauth2.Token
	if err := json.Unmarshal([]byte(raw), &tok); err != nil {
		return Credential{}, fmt.Errorf("parse credential: %w", err)
	}
	c := Credential{Token: &tok}
	if c.Empty() {
		return Credential{}, ErrNoCredential
	}
	return c, nil
}
