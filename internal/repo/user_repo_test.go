package repo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/fieldorder/internal/model"
	appErr "github.com/xxxsen/fieldorder/internal/pkg/errors"
	"github.com/xxxsen/fieldorder/internal/pkg/timeutil"
	"github.com/xxxsen/fieldorder/internal/repo"
	"github.com/xxxsen/fieldorder/internal/testutil"
)

func TestUserRepoCreateAndLookup(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	ctx := context.Background()

	users := repo.NewUserRepo(db)
	now := timeutil.NowUnix()
	user := &model.User{
		ID:           testutil.NewID("user"),
		Email:        testutil.NewID("mail") + "@example.com",
		DisplayName:  "Ana",
		PasswordHash: "hash",
		Role:         model.RoleTechnician,
		Ctime:        now,
		Mtime:        now,
	}
	require.NoError(t, users.Create(ctx, user))

	dup := *user
	dup.ID = testutil.NewID("user")
	require.ErrorIs(t, users.Create(ctx, &dup), appErr.ErrConflict)

	byEmail, err := users.GetByEmail(ctx, user.Email)
	require.NoError(t, err)
	require.Equal(t, user.ID, byEmail.ID)

	listed, err := users.ListByIDs(ctx, []string{user.ID, testutil.NewID("user")})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, "Ana", listed[0].DisplayName)

	_, err = users.GetByID(ctx, testutil.NewID("user"))
	require.ErrorIs(t, err, appErr.ErrNotFound)
}
