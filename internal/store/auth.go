package store

import (
	"golang.org/x/crypto/bcrypt"

	"gtodo/internal/service"
)

// CurrentUser implements service.Service.
func (s *Store) CurrentUser() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Login implements service.Service. Passwords are checked against the
// bcrypt hashes of the configured user table.
func (s *Store) Login(user, password string) error {
	hash, ok := s.users[user]
	if !ok || bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return service.ErrInvalidCredentials
	}
	if err := s.adapter.SaveUser(s.ctx, user); err != nil {
		return err
	}

	s.mu.Lock()
	s.user = user
	s.mu.Unlock()

	s.stateBus.Publish(struct{}{})
	return nil
}

// Logout implements service.Service.
func (s *Store) Logout() error {
	if err := s.adapter.ClearUser(s.ctx); err != nil {
		return err
	}

	s.mu.Lock()
	s.user = ""
	s.mu.Unlock()

	s.stateBus.Publish(struct{}{})
	return nil
}
