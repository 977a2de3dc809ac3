// Package identity tracks the signed-in account and resolves the changemaker
// its initiatives are published under.
package identity

import (
	"context"
	"fmt"
	"sync"

	"changemakers/pkg/types"
)

type ProfileSource interface {
	Profile(ctx context.Context, accountID string) (*types.Profile, error)
}

// Session is created on sign-in and handed explicitly to whatever needs the
// caller's identity. It is invalidated on sign-out and refreshed after writes
// that change profile facts.
type Session struct {
	mu sync.RWMutex

	key       string
	accountID string
	email     string
	profile   *types.Profile
	valid     bool

	source ProfileSource
}

func NewSession(key, accountID, email string, source ProfileSource) *Session {
	return &Session{
		key:       key,
		accountID: accountID,
		email:     email,
		source:    source,
		valid:     true,
	}
}

// Key identifies the session for per-caller state such as autosaved drafts.
func (s *Session) Key() string {
	return s.key
}

func (s *Session) AccountID() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.valid {
		return "", types.ErrSessionInvalid
	}

	return s.accountID, nil
}

func (s *Session) Email() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.email
}

// Profile returns the derived profile, loading it on first use.
func (s *Session) Profile(ctx context.Context) (*types.Profile, error) {
	s.mu.RLock()
	profile, valid := s.profile, s.valid
	s.mu.RUnlock()

	if !valid {
		return nil, types.ErrSessionInvalid
	}

	if profile != nil {
		return profile, nil
	}

	return s.Refresh(ctx)
}

// Refresh re-derives the profile from the profile source.
func (s *Session) Refresh(ctx context.Context) (*types.Profile, error) {
	s.mu.RLock()
	accountID, email, valid := s.accountID, s.email, s.valid
	s.mu.RUnlock()

	if !valid {
		return nil, types.ErrSessionInvalid
	}

	profile := &types.Profile{AccountID: accountID}
	if s.source != nil {
		loaded, err := s.source.Profile(ctx, accountID)
		if err != nil {
			return nil, fmt.Errorf("failed to load profile for account %s: %w", accountID, err)
		}
		if loaded != nil {
			profile = loaded
		}
	}

	if profile.Email == "" {
		profile.Email = email
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.valid {
		return nil, types.ErrSessionInvalid
	}
	s.profile = profile

	return profile, nil
}

func (s *Session) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.valid = false
	s.profile = nil
}

func (s *Session) Valid() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.valid
}
