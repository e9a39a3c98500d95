package services

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"watchflip/internal/domain"
	"watchflip/internal/validate"
)

var (
	ErrBadCreds     = errors.New("invalid username or password")
	ErrWeakPassword = errors.New("password must be 8-72 characters with upper, lower, digit and symbol")
)

// AuthService guards mutating routes with a single operator account.
type AuthService struct {
	Operator domain.Operator
}

func NewAuthService(username, hash string) *AuthService {
	if username == "" {
		username = "operator"
	}
	return &AuthService{Operator: domain.Operator{Username: username, Hash: hash}}
}

// Open reports whether no operator password is configured.
func (s *AuthService) Open() bool { return s.Operator.Open() }

func (s *AuthService) Check(username, password string) error {
	if username != s.Operator.Username {
		return ErrBadCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(s.Operator.Hash), []byte(password)) != nil {
		return ErrBadCreds
	}
	return nil
}

// HashPassword produces the value for OPERATOR_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	if !validate.Password(password) {
		return "", ErrWeakPassword
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
