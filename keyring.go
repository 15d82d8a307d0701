package main

import (
	"fmt"
	"os"

	gokeyring "github.com/zalando/go-keyring"
)

const (
	keyringService  = "works.moa.moa-cli"
	keyringTokenKey = "session_token"
)

// SaveTokenToKeyring securely stores the backend session token in the OS keyring
func SaveTokenToKeyring(token string) error {
	if err := gokeyring.Set(keyringService, keyringTokenKey, token); err != nil {
		return fmt.Errorf("failed to store token in keyring: %w", err)
	}
	return nil
}

// GetTokenFromKeyring retrieves the session token from the MOA_TOKEN
// environment variable or the OS keyring. A missing token is not an error.
func GetTokenFromKeyring() (string, error) {
	if token := os.Getenv("MOA_TOKEN"); token != "" {
		return token, nil
	}

	token, err := gokeyring.Get(keyringService, keyringTokenKey)
	if err != nil {
		if err == gokeyring.ErrNotFound {
			return "", nil
		}
		return "", fmt.Errorf("failed to retrieve token from keyring: %w", err)
	}
	return token, nil
}

// DeleteTokenFromKeyring removes the session token from the OS keyring on logout
func DeleteTokenFromKeyring() error {
	err := gokeyring.Delete(keyringService, keyringTokenKey)
	if err != nil && err != gokeyring.ErrNotFound {
		return fmt.Errorf("failed to delete token from keyring: %w", err)
	}
	return nil
}
