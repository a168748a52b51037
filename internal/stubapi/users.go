package stubapi

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/fatim-sangare/frontend-test-nan/internal/domain"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

// Register creates a user with a hashed password.
func (s *Store) Register(email, password string) (domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return domain.User{}, fail(ErrBadRequest, "Email et mot de passe requis")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}
	return s.createUser(email, string(hash))
}

// ValidateCredentials checks email and password; returns the user if valid.
func (s *Store) ValidateCredentials(email, password string) (domain.User, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return domain.User{}, ErrInvalidCredentials
	}
	u, ok := s.userByEmail(email)
	if !ok {
		return domain.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return domain.User{}, ErrInvalidCredentials
	}
	return u.User, nil
}

// Seed registers accounts given as "email:password", so a fresh stub can be
// signed into right away.
func (s *Store) Seed(accounts []string) error {
	for _, a := range accounts {
		email, password, ok := strings.Cut(a, ":")
		if !ok {
			return fmt.Errorf("seed account %q: want email:password", a)
		}
		if _, err := s.Register(email, password); err != nil {
			return fmt.Errorf("seed account %s: %w", email, err)
		}
	}
	return nil
}
