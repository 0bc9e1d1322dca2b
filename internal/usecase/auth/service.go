package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domuser "example.com/storefront/internal/domain/user"
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash string, password string) error
}

type Claims struct {
	UserID int64
	Email  string
	Name   string
}

type TokenService interface {
	GenerateToken(u *domuser.User) (string, error)
	ParseToken(token string) (*Claims, error)
}

// Service authenticates against a local user repository and issues a bearer
// token with every identity it returns.
type Service struct {
	userRepo domuser.Repository
	hasher   PasswordHasher
	tokens   TokenService
}

func NewService(
	userRepo domuser.Repository,
	hasher PasswordHasher,
	tokens TokenService,
) *Service {
	return &Service{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
	}
}

func (s *Service) Login(ctx context.Context, email, password string) (*domuser.Identity, error) {
	email = domuser.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, domuser.ErrInvalidCredentials
	}

	u, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domuser.ErrUserNotFound) {
			return nil, domuser.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		return nil, domuser.ErrInvalidCredentials
	}

	return s.identity(u)
}

func (s *Service) Register(ctx context.Context, name, email, password string) (*domuser.Identity, error) {
	name = strings.TrimSpace(name)
	email = domuser.NormalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return nil, domuser.ErrRegistrationFailed
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domuser.ErrRegistrationFailed, err)
	}

	u, err := s.userRepo.Create(ctx, &domuser.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, domuser.ErrEmailAlreadyUsed) {
			return nil, fmt.Errorf("%w: %w", domuser.ErrRegistrationFailed, err)
		}
		return nil, err
	}

	return s.identity(u)
}

// Verify resolves a bearer token back to an identity.
func (s *Service) Verify(token string) (*domuser.Identity, error) {
	claims, err := s.tokens.ParseToken(token)
	if err != nil {
		return nil, domuser.ErrNotAuthenticated
	}
	return &domuser.Identity{
		ID:    claims.UserID,
		Name:  claims.Name,
		Email: claims.Email,
		Token: token,
	}, nil
}

func (s *Service) identity(u *domuser.User) (*domuser.Identity, error) {
	token, err := s.tokens.GenerateToken(u)
	if err != nil {
		return nil, err
	}
	return u.Identity(token), nil
}
