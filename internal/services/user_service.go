package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gendata/gendata-api/internal/dto"
	"github.com/gendata/gendata-api/internal/models"
	"github.com/gendata/gendata-api/internal/store"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrLoginTaken       = errors.New("user with this login already exists")
	ErrLoginRequired    = errors.New("login is required")
	ErrPasswordRequired = errors.New("password is required")
	ErrInvalidRole      = errors.New("role must be one of client, employee, investor, admin")
)

const (
	DefaultListLimit = 100
	MaxListLimit     = 1000
)

type UserService struct {
	users  UserStore
	hasher PasswordHasher
}

func NewUserService(users UserStore, hasher PasswordHasher) *UserService {
	return &UserService{users: users, hasher: hasher}
}

func (s *UserService) Create(ctx context.Context, req *dto.CreateUserRequest) (*models.User, error) {
	login := strings.TrimSpace(req.Login)
	if login == "" {
		return nil, ErrLoginRequired
	}
	if req.Password == "" {
		return nil, ErrPasswordRequired
	}
	role := req.Role
	if role == "" {
		role = models.RoleClient
	}
	if !models.IsValidRole(role) {
		return nil, ErrInvalidRole
	}

	if _, err := s.users.GetByLogin(ctx, login); err == nil {
		return nil, ErrLoginTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Login:          login,
		HashedPassword: hash,
		FullName:       req.FullName,
		CompanyName:    req.CompanyName,
		Role:           role,
		IsActive:       true,
	}
	user.SetMetadata(req.Metadata)

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicateLogin) {
			return nil, ErrLoginTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("user created", "action", "user_create", "login", user.Login, "user_id", user.ID)
	return user, nil
}

// List returns a page of users. Limits outside (0, MaxListLimit] are clamped.
func (s *UserService) List(ctx context.Context, skip, limit int) ([]models.User, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	return s.users.List(ctx, skip, limit)
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// Update applies the fields present in req. Metadata, when present, replaces the stored mapping.
func (s *UserService) Update(ctx context.Context, id uint, req *dto.UpdateUserRequest) (*models.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Role != nil && !models.IsValidRole(*req.Role) {
		return nil, ErrInvalidRole
	}

	if req.FullName != nil {
		user.FullName = req.FullName
	}
	if req.CompanyName != nil {
		user.CompanyName = req.CompanyName
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.Metadata != nil {
		user.SetMetadata(*req.Metadata)
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.Password != nil {
		if *req.Password == "" {
			return nil, ErrPasswordRequired
		}
		hash, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return nil, err
		}
		user.HashedPassword = hash
	}

	if err := s.users.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	slog.Info("user updated", "action", "user_update", "login", user.Login, "user_id", user.ID)
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, id uint) error {
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	slog.Info("user deleted", "action", "user_delete", "user_id", id)
	return nil
}

// EnsureAdmin creates the "admin" account with password unless it already exists.
// It reports whether an account was created.
func (s *UserService) EnsureAdmin(ctx context.Context, password string) (bool, error) {
	const login = "admin"

	if _, err := s.users.GetByLogin(ctx, login); err == nil {
		return false, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return false, fmt.Errorf("failed to look up admin: %w", err)
	}

	fullName := "Administrator"
	_, err := s.Create(ctx, &dto.CreateUserRequest{
		Login:    login,
		Password: password,
		FullName: &fullName,
		Role:     models.RoleAdmin,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
