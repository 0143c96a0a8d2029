// Package auth holds the authentication provider boundary: verifying
// provider-issued identity tokens and broadcasting sign-in/sign-out
// transitions to the rest of the application. The session controller
// registers a watcher here to drive its Bound/Unbound state machine.
package auth

import (
	"fmt"
	"sync"

	"github.com/golang-jwt/jwt/v5"
)

// Identity describes the authenticated user as reported by the provider.
type Identity struct {
	UID         string `json:"uid"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
}

// Watcher is notified with the new user ID on every identity change.
// Sign-out delivers the empty string.
type Watcher func(userID string)

// Manager tracks the current identity and notifies watchers on transitions.
// Tokens are HS256 JWTs issued by the external authentication provider;
// Manager only verifies them, it never mints credentials.
type Manager struct {
	secret []byte

	mu       sync.Mutex
	current  *Identity
	watchers []Watcher
}

// NewManager constructs a Manager verifying tokens against the given
// provider signing secret.
func NewManager(secret []byte) *Manager {
	return &Manager{secret: secret}
}

// SignIn verifies the token and, on success, binds the carried identity as
// the current user. Watchers fire only when the user actually changes.
func (m *Manager) SignIn(token string) (Identity, error) {
	id, err := m.verify(token)
	if err != nil {
		return Identity{}, fmt.Errorf("auth.Manager.SignIn: %w", err)
	}

	m.mu.Lock()
	changed := m.current == nil || m.current.UID != id.UID
	m.current = &id
	watchers := m.snapshotWatchers()
	m.mu.Unlock()

	if changed {
		for _, w := range watchers {
			w(id.UID)
		}
	}
	return id, nil
}

// SignOut clears the current identity and notifies watchers with "".
// Signing out while already unbound is a no-op.
func (m *Manager) SignOut() {
	m.mu.Lock()
	wasBound := m.current != nil
	m.current = nil
	watchers := m.snapshotWatchers()
	m.mu.Unlock()

	if wasBound {
		for _, w := range watchers {
			w("")
		}
	}
}

// Current returns the bound identity, if any.
func (m *Manager) Current() (Identity, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return Identity{}, false
	}
	return *m.current, true
}

// Watch registers a change watcher. Registration is permanent for the life
// of the Manager; the process owns exactly one session, so watchers never
// need to unregister.
func (m *Manager) Watch(w Watcher) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.watchers = append(m.watchers, w)
}

// snapshotWatchers copies the watcher list so callbacks run outside the lock.
// Callers must hold m.mu.
func (m *Manager) snapshotWatchers() []Watcher {
	out := make([]Watcher, len(m.watchers))
	copy(out, m.watchers)
	return out
}

// verify parses and validates the token, extracting the identity claims.
// Expired or otherwise invalid tokens are rejected; a token without a
// subject claim carries no usable identity and is also rejected.
func (m *Manager) verify(token string) (Identity, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return m.secret, nil
	})
	if err != nil {
		return Identity{}, err
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return Identity{}, fmt.Errorf("token has no subject claim")
	}

	id := Identity{UID: sub}
	id.Email, _ = claims["email"].(string)
	id.DisplayName, _ = claims["name"].(string)
	return id, nil
}
