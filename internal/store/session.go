package store

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/velora-shop/storefront/internal/api"
)

// Login exchanges credentials for a session. On success the user, token,
// and profile are committed together; on failure nothing changes and the
// error propagates so the caller can present it. The returned result
// carries the role the caller routes on.
func (s *Store) Login(ctx context.Context, creds api.Credentials) (*api.LoginResponse, error) {
	resp, err := s.backend.Login(ctx, creds)
	if err != nil {
		return nil, err
	}

	user := resp.User
	s.mu.Lock()
	s.session = Session{User: &user, Token: resp.Token, Profile: resp.Profile}
	delete(s.stale, SliceProfile)
	s.mu.Unlock()

	s.save(ctx)
	s.logg.Info(s.logg.WithUserID(ctx, user.ID), "session established")
	return resp, nil
}

// FetchProfile refreshes the profile for the current token. Without a
// token it is a no-op. Concurrent calls collapse into a single backend
// request; on failure the previous profile is retained and the profile
// slice is marked stale.
func (s *Store) FetchProfile(ctx context.Context) error {
	s.mu.Lock()
	token := s.session.Token
	s.mu.Unlock()
	if token == "" {
		return nil
	}

	_, err, _ := s.profileFlight.Do(token, func() (any, error) {
		s.setProfileLoading(true)
		defer s.setProfileLoading(false)

		profile, err := s.backend.Profile(ctx, token)
		if err != nil {
			s.markStale(SliceProfile)
			s.logg.Warn(ctx, "profile refresh failed, keeping previous profile")
			return nil, err
		}

		s.mu.Lock()
		// The token may have rotated (logout/login) while the request was
		// in flight; only commit if it still matches.
		if s.session.Token == token {
			s.session.Profile = profile
			delete(s.stale, SliceProfile)
		}
		s.mu.Unlock()
		s.save(ctx)
		return nil, nil
	})
	return err
}

// ProfileLoading reports whether a profile refresh is in flight.
func (s *Store) ProfileLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profileLoading
}

func (s *Store) setProfileLoading(loading bool) {
	s.mu.Lock()
	s.profileLoading = loading
	s.mu.Unlock()
}

// Role returns the caller's role. The bearer token is inspected without
// signature verification: the client holds no signing secret, and the
// backend remains the authority on every request. When the token carries
// no role claim, the login response's user role is used.
func (s *Store) Role() string {
	s.mu.Lock()
	token := s.session.Token
	var fallback string
	if s.session.User != nil {
		fallback = s.session.User.Role
	}
	s.mu.Unlock()

	if claims := parseClaims(token); claims != nil {
		if role, ok := claims["role"].(string); ok && role != "" {
			return role
		}
	}
	return fallback
}

// TokenExpiry returns the token's exp claim when present.
func (s *Store) TokenExpiry() (time.Time, bool) {
	s.mu.Lock()
	token := s.session.Token
	s.mu.Unlock()

	claims := parseClaims(token)
	if claims == nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

func parseClaims(token string) jwt.MapClaims {
	if token == "" {
		return nil
	}
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil
	}
	return claims
}
