// Package auth resolves the current user's identity for sync purposes.
//
// Identity is a session file holding the logged-in email; the email is
// used directly as the sync key. When no session exists the fixed
// default identifier is used, a known simplification carried over from
// the product this replaces. Credentials are not hardened here.
package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultUserID is the fallback sync key when no session email exists.
const DefaultUserID = "user-1"

// Identity resolves the current authenticated user.
type Identity interface {
	// UserID returns the sync key for the current user, falling back to
	// DefaultUserID when no email is available.
	UserID() string

	// IsAuthenticated reports whether a valid session exists.
	IsAuthenticated() bool
}

// Session is the persisted session file contents.
type Session struct {
	Email     string `json:"email"`
	CreatedAt int64  `json:"createdAt"`
}

// FileIdentity reads the session from a JSON file on every call, so a
// login or logout by another process is visible immediately.
type FileIdentity struct {
	path string
}

// NewFileIdentity creates an identity backed by the session file at path.
func NewFileIdentity(path string) *FileIdentity {
	return &FileIdentity{path: path}
}

// Path returns the session file location.
func (f *FileIdentity) Path() string {
	return f.path
}

// IsAuthenticated implements Identity.
func (f *FileIdentity) IsAuthenticated() bool {
	s, err := readSession(f.path)
	return err == nil && s.Email != ""
}

// UserID implements Identity.
func (f *FileIdentity) UserID() string {
	s, err := readSession(f.path)
	if err != nil || s.Email == "" {
		return DefaultUserID
	}
	return s.Email
}

// Login writes a session file for email.
func Login(path, email string) error {
	if email == "" {
		return fmt.Errorf("email must not be empty")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	blob, err := json.Marshal(Session{
		Email:     email,
		CreatedAt: time.Now().UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	if err := os.WriteFile(path, blob, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// Logout removes the session file. A missing file is not an error.
func Logout(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

func readSession(path string) (*Session, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Session
	if err := json.Unmarshal(blob, &s); err != nil {
		return nil, fmt.Errorf("malformed session file: %w", err)
	}
	return &s, nil
}
