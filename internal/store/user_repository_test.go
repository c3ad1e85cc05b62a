package store_test

import (
	"context"
	"testing"

	"github.com/gendata/gendata-api/internal/database/dbtest"
	"github.com/gendata/gendata-api/internal/models"
	"github.com/gendata/gendata-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUser(login string) *models.User {
	return &models.User{
		Login:          login,
		HashedPassword: "hash",
		Role:           models.RoleEmployee,
		IsActive:       true,
	}
}

func TestUserRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := store.NewUserRepository(dbtest.Open(t))

	u := newUser("alice")
	u.SetMetadata(models.Metadata{"city": "Oslo"})
	require.NoError(t, repo.Create(ctx, u))
	require.NotZero(t, u.ID)
	assert.False(t, u.CreatedAt.IsZero())

	byID, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Login)
	assert.Equal(t, models.Metadata{"city": "Oslo"}, byID.MetadataMap())

	byLogin, err := repo.GetByLogin(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byLogin.ID)
}

func TestUserRepository_LoginIsCaseSensitive(t *testing.T) {
	ctx := context.Background()
	repo := store.NewUserRepository(dbtest.Open(t))
	require.NoError(t, repo.Create(ctx, newUser("alice")))

	_, err := repo.GetByLogin(ctx, "Alice")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUserRepository_MetadataNeverNull(t *testing.T) {
	ctx := context.Background()
	repo := store.NewUserRepository(dbtest.Open(t))

	u := newUser("bob")
	require.NoError(t, repo.Create(ctx, u))

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.Metadata.Data())
	assert.Empty(t, got.MetadataMap())
}

func TestUserRepository_InvalidRoleIsNormalizedOnWrite(t *testing.T) {
	ctx := context.Background()
	repo := store.NewUserRepository(dbtest.Open(t))

	u := newUser("carol")
	u.Role = "superuser"
	require.NoError(t, repo.Create(ctx, u))

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleClient, got.Role)
}

func TestUserRepository_DuplicateLogin(t *testing.T) {
	ctx := context.Background()
	repo := store.NewUserRepository(dbtest.Open(t))

	require.NoError(t, repo.Create(ctx, newUser("dave")))
	err := repo.Create(ctx, newUser("dave"))
	assert.ErrorIs(t, err, store.ErrDuplicateLogin)
}

func TestUserRepository_SaveAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := store.NewUserRepository(dbtest.Open(t))

	u := newUser("erin")
	require.NoError(t, repo.Create(ctx, u))

	u.IsActive = false
	name := "Erin E"
	u.FullName = &name
	require.NoError(t, repo.Save(ctx, u))

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	require.NotNil(t, got.FullName)
	assert.Equal(t, "Erin E", *got.FullName)

	require.NoError(t, repo.Delete(ctx, u.ID))
	_, err = repo.GetByID(ctx, u.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, u.ID), store.ErrNotFound)
}

func TestUserRepository_ListPaginates(t *testing.T) {
	ctx := context.Background()
	repo := store.NewUserRepository(dbtest.Open(t))
	for _, login := range []string{"u1", "u2", "u3"} {
		require.NoError(t, repo.Create(ctx, newUser(login)))
	}

	page, err := repo.List(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "u2", page[0].Login)

	all, err := repo.List(ctx, 0, 100)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
