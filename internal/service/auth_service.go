package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xxxsen/fieldorder/internal/model"
	appErr "github.com/xxxsen/fieldorder/internal/pkg/errors"
	"github.com/xxxsen/fieldorder/internal/pkg/jwt"
	"github.com/xxxsen/fieldorder/internal/pkg/password"
	"github.com/xxxsen/fieldorder/internal/pkg/timeutil"
)

type userStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

type AuthService struct {
	users     userStore
	jwtSecret []byte
	jwtTTL    time.Duration
}

func NewAuthService(users userStore, secret []byte, ttl time.Duration) *AuthService {
	return &AuthService{users: users, jwtSecret: secret, jwtTTL: ttl}
}

type CreateUserInput struct {
	Email       string
	Password    string
	DisplayName string
	Role        string
}

func (s *AuthService) CreateUser(ctx context.Context, input CreateUserInput) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, appErr.ErrInvalid
	}
	if err := password.Validate(input.Password); err != nil {
		return nil, fmt.Errorf("%w: %v", appErr.ErrInvalid, err)
	}
	role := input.Role
	if role == "" {
		role = model.RoleTechnician
	}
	if role != model.RoleAdmin && role != model.RoleTechnician {
		return nil, appErr.ErrInvalid
	}
	hash, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}
	now := timeutil.NowUnix()
	user := &model.User{
		ID:           newID(),
		Email:        email,
		DisplayName:  strings.TrimSpace(input.DisplayName),
		PasswordHash: hash,
		Role:         role,
		Ctime:        now,
		Mtime:        now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, email, plainPassword string) (*model.User, string, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if appErr.IsNotFound(err) {
			return nil, "", appErr.ErrUnauthorized
		}
		return nil, "", err
	}
	if err := password.Compare(user.PasswordHash, plainPassword); err != nil {
		return nil, "", appErr.ErrUnauthorized
	}
	token, err := jwt.GenerateToken(user.ID, user.Role, s.jwtSecret, s.jwtTTL)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}
