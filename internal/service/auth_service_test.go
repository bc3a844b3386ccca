package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/fieldorder/internal/model"
	appErr "github.com/xxxsen/fieldorder/internal/pkg/errors"
	"github.com/xxxsen/fieldorder/internal/pkg/jwt"
)

func TestCreateUserAndLogin(t *testing.T) {
	users := newFakeUsers()
	secret := []byte("test-secret")
	auth := NewAuthService(users, secret, time.Hour)
	ctx := context.Background()

	user, err := auth.CreateUser(ctx, CreateUserInput{Email: " Tech@Example.com ", Password: "s3cret-pass", DisplayName: "Tech", Role: model.RoleAdmin})
	require.NoError(t, err)
	require.Equal(t, "tech@example.com", user.Email)
	require.NotEqual(t, "s3cret-pass", user.PasswordHash)

	logged, token, err := auth.Login(ctx, "tech@example.com", "s3cret-pass")
	require.NoError(t, err)
	require.Equal(t, user.ID, logged.ID)
	claims, err := jwt.ParseToken(token, secret)
	require.NoError(t, err)
	require.Equal(t, user.ID, claims.UserID)
	require.Equal(t, model.RoleAdmin, claims.Role)

	_, _, err = auth.Login(ctx, "tech@example.com", "wrong-pass")
	require.ErrorIs(t, err, appErr.ErrUnauthorized)
	_, _, err = auth.Login(ctx, "nobody@example.com", "s3cret-pass")
	require.ErrorIs(t, err, appErr.ErrUnauthorized)

	_, err = auth.CreateUser(ctx, CreateUserInput{Email: "tech@example.com", Password: "another-pass"})
	require.ErrorIs(t, err, appErr.ErrConflict)
}

func TestCreateUserValidation(t *testing.T) {
	auth := NewAuthService(newFakeUsers(), []byte("k"), time.Hour)
	ctx := context.Background()

	_, err := auth.CreateUser(ctx, CreateUserInput{Email: "", Password: "long-enough"})
	require.ErrorIs(t, err, appErr.ErrInvalid)
	_, err = auth.CreateUser(ctx, CreateUserInput{Email: "a@b.c", Password: "short"})
	require.ErrorIs(t, err, appErr.ErrInvalid)
	_, err = auth.CreateUser(ctx, CreateUserInput{Email: "a@b.c", Password: strings.Repeat("p", 73)})
	require.ErrorIs(t, err, appErr.ErrInvalid)
	_, err = auth.CreateUser(ctx, CreateUserInput{Email: "a@b.c", Password: "long-enough", Role: "owner"})
	require.ErrorIs(t, err, appErr.ErrInvalid)

	user, err := auth.CreateUser(ctx, CreateUserInput{Email: "a@b.c", Password: "long-enough"})
	require.NoError(t, err)
	require.Equal(t, model.RoleTechnician, user.Role)
}
