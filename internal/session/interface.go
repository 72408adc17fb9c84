// Copyright (c) 2025 @AmarnathCJD

package session

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

// CSRFCookie is the cookie whose value doubles as the csrfKey query
// parameter on authenticated API calls.
const CSRFCookie = "NTESSTUDYSI"

// Store is the interface which allows you to keep credentials in different
// storages (filesystem, memory, ...).
type Store interface {
	Load() (*Credential, error)
	Store(*Credential) error
	Path() string
	Delete() error
}

// Credential is what a successful login leaves behind: the cookie header
// and the csrf key taken from it.
type Credential struct {
	Cookie     string    `json:"cookie"`
	CSRFKey    string    `json:"csrfKey"`
	ObtainedAt time.Time `json:"obtainedAt"`
	ExpiresAt  time.Time `json:"expiresAt,omitempty"`
}

// Valid reports whether c can be tried against the API. A zero ExpiresAt
// never expires; the server is the final judge.
func (c *Credential) Valid(now time.Time) bool {
	if c == nil || c.Cookie == "" || c.CSRFKey == "" {
		return false
	}
	return c.ExpiresAt.IsZero() || now.Before(c.ExpiresAt)
}

var (
	ErrSessionNotFound = errors.New("session: no cached credential")
	ErrCorrupted       = errors.New("session: cache file is corrupted")
	ErrNoCSRFKey       = errors.New("session: cookie has no " + CSRFCookie)
)

// ExtractCSRFKey pulls the NTESSTUDYSI value out of a Cookie header.
func ExtractCSRFKey(cookie string) (string, error) {
	for _, part := range strings.Split(cookie, ";") {
		name, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if ok && name == CSRFCookie && value != "" {
			return value, nil
		}
	}
	return "", errors.WithStack(ErrNoCSRFKey)
}

// NewCredential builds a credential from a cookie header, extracting the
// csrf key from it.
func NewCredential(cookie string, now time.Time, ttl time.Duration) (*Credential, error) {
	key, err := ExtractCSRFKey(cookie)
	if err != nil {
		return nil, err
	}
	c := &Credential{Cookie: cookie, CSRFKey: key, ObtainedAt: now}
	if ttl > 0 {
		c.ExpiresAt = now.Add(ttl)
	}
	return c, nil
}
