package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
)

const kvKeyUser = "user"

// user types as the backend reports them
const (
	userTypeCompany = "COMPANY"
	userTypePerson  = "PERSON"
)

// AuthSession keeps the signed-in user across runs. The profile lives in
// the key-value store under "user"; the session token goes to the OS
// keyring, never to the database.
type AuthSession struct {
	kv     KeyValue
	logger *slog.Logger
	user   *User
}

// NewAuthSession restores the previous session, if any. A corrupt user
// record or an unreadable keyring falls back to signed-out.
func NewAuthSession(kv KeyValue, logger *slog.Logger) *AuthSession {
	s := &AuthSession{kv: kv, logger: logger}

	raw, ok, err := kv.Get(kvKeyUser)
	if err != nil {
		logger.Warn("failed to read stored user", "error", err)
		return s
	}
	if !ok {
		return s
	}

	var user User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		logger.Warn("stored user record is corrupt, clearing it", "error", err)
		if err := kv.Delete(kvKeyUser); err != nil {
			logger.Warn("failed to clear corrupt user record", "error", err)
		}
		return s
	}

	token, err := GetTokenFromKeyring()
	if err != nil {
		logger.Warn("failed to read session token", "error", err)
	}
	user.Token = token
	s.user = &user
	return s
}

// SignIn stores the user profile and the session token
func (s *AuthSession) SignIn(user User) error {
	token := user.Token
	user.Token = ""

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	if err := s.kv.Set(kvKeyUser, string(data)); err != nil {
		return fmt.Errorf("failed to store user: %w", err)
	}

	if token != "" {
		if err := SaveTokenToKeyring(token); err != nil {
			// The session still works for this run; it just won't survive
			// a restart.
			s.logger.Warn("failed to store session token", "error", err)
		}
	}

	user.Token = token
	s.user = &user
	return nil
}

// SignOut clears the stored profile and token
func (s *AuthSession) SignOut() error {
	if err := s.kv.Delete(kvKeyUser); err != nil {
		return fmt.Errorf("failed to clear user: %w", err)
	}
	if err := DeleteTokenFromKeyring(); err != nil {
		s.logger.Warn("failed to clear session token", "error", err)
	}
	s.user = nil
	return nil
}

// User returns the signed-in user, or nil
func (s *AuthSession) User() *User {
	return s.user
}

// SignedIn reports whether a user session is active
func (s *AuthSession) SignedIn() bool {
	return s.user != nil
}

// Token returns the session token for API calls, or ""
func (s *AuthSession) Token() string {
	if s.user == nil {
		return ""
	}
	return s.user.Token
}

// IsCompany reports whether the signed-in user is a company account
func (s *AuthSession) IsCompany() bool {
	return s.user != nil && s.user.UserType == userTypeCompany
}

// IsPerson reports whether the signed-in user is an individual account
func (s *AuthSession) IsPerson() bool {
	return s.user != nil && s.user.UserType == userTypePerson
}
