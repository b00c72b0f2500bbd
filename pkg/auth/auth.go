// Package auth issues and verifies the bearer tokens protecting the API.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/fluxo-hq/fluxo/pkg/models"
	"github.com/fluxo-hq/fluxo/pkg/persistence"
)

var (
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrInvalidToken         = errors.New("invalid or expired token")
	ErrInactiveUser         = errors.New("user is inactive")
	ErrUnsupportedAlgorithm = errors.New("unsupported signing algorithm")
)

var signingMethods = map[string]jwt.SigningMethod{
	"HS256": jwt.SigningMethodHS256,
	"HS384": jwt.SigningMethodHS384,
	"HS512": jwt.SigningMethodHS512,
}

// Service signs and verifies JWTs and checks user credentials against the
// user repository.
type Service struct {
	users     persistence.UserRepository
	secret    []byte
	method    jwt.SigningMethod
	algorithm string
	expiry    time.Duration
}

func NewService(users persistence.UserRepository, secret, algorithm string, expiry time.Duration) (*Service, error) {
	method, ok := signingMethods[algorithm]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, algorithm)
	}

	return &Service{
		users:     users,
		secret:    []byte(secret),
		method:    method,
		algorithm: algorithm,
		expiry:    expiry,
	}, nil
}

// HashPassword hashes a plaintext password for storage.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	return string(hashed), nil
}

// Authenticate checks the credentials and returns the matching active user.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.users.UserByUsername(ctx, username)
	if err != nil {
		if persistence.IsUserNotFound(err) {
			return nil, ErrInvalidCredentials
		}

		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrInactiveUser
	}

	return user, nil
}

// CreateToken issues a signed token for the user.
func (s *Service) CreateToken(user *models.User) (string, error) {
	now := time.Now().UTC()

	claims := jwt.RegisteredClaims{
		Subject:   user.Username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
	}

	return jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
}

// CurrentUser verifies the token and resolves its subject to an active user.
func (s *Service) CurrentUser(ctx context.Context, tokenString string) (*models.User, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != s.algorithm {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, token.Method.Alg())
		}

		return s.secret, nil
	}, jwt.WithValidMethods([]string{s.algorithm}))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	user, err := s.users.UserByUsername(ctx, claims.Subject)
	if err != nil {
		if persistence.IsUserNotFound(err) {
			return nil, ErrInvalidToken
		}

		return nil, err
	}

	if !user.IsActive {
		return nil, ErrInactiveUser
	}

	return user, nil
}
