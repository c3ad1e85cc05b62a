package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gendata/gendata-api/internal/dto"
	"github.com/gendata/gendata-api/internal/models"
	"github.com/gendata/gendata-api/internal/store"
)

var ErrInvalidCredentials = errors.New("incorrect login or password")

type AuthService struct {
	users    UserStore
	hasher   PasswordHasher
	tokens   *TokenIssuer
	validity time.Duration

	// dummyHash is checked when the login is unknown so every failure path
	// costs one hash comparison.
	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(users UserStore, hasher PasswordHasher, tokens *TokenIssuer, validity time.Duration) *AuthService {
	return &AuthService{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		validity: validity,
	}
}

// Authenticate returns the user owning login when password matches.
// Unknown logins, wrong passwords and deactivated accounts all yield ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, login, password string) (*models.User, error) {
	if login == "" {
		s.burnCheck(password)
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByLogin(ctx, login)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("failed to look up user: %w", err)
		}
		s.burnCheck(password)
		return nil, ErrInvalidCredentials
	}

	if !s.hasher.Check(password, user.HashedPassword) || !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *AuthService) burnCheck(password string) {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("gendata-dummy-password")
	})
	s.hasher.Check(password, s.dummyHash)
}

// Login authenticates and issues an access token for the user.
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := s.Authenticate(ctx, req.Login, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			slog.Warn("login failed", "action", "login", "login", req.Login)
		}
		return nil, err
	}

	token, err := s.tokens.Issue(user.Login, s.validity)
	if err != nil {
		return nil, err
	}

	slog.Info("login succeeded", "action", "login", "login", user.Login)
	return &dto.TokenResponse{AccessToken: token, TokenType: "bearer"}, nil
}
