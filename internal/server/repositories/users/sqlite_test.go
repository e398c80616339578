package users

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/smartstudy/internal/common"
	"github.com/dmitrijs2005/smartstudy/internal/server/models"
	"github.com/dmitrijs2005/smartstudy/internal/server/repositories/repotest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteRepository_CreateAndGet(t *testing.T) {
	r := NewSQLiteRepository(repotest.NewSQLite(t))
	ctx := context.Background()

	u, err := r.Create(ctx, &models.User{Email: "ann@example.com", PasswordHash: "hash"})
	require.NoError(t, err)
	require.NotZero(t, u.ID)

	byEmail, err := r.GetByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)
	assert.Equal(t, "hash", byEmail.PasswordHash)
	assert.False(t, byEmail.CreatedAt.IsZero())

	byID, err := r.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", byID.Email)
}

func TestSQLiteRepository_DuplicateEmail(t *testing.T) {
	r := NewSQLiteRepository(repotest.NewSQLite(t))
	ctx := context.Background()

	_, err := r.Create(ctx, &models.User{Email: "ann@example.com", PasswordHash: "h1"})
	require.NoError(t, err)

	_, err = r.Create(ctx, &models.User{Email: "ann@example.com", PasswordHash: "h2"})
	require.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestSQLiteRepository_NotFound(t *testing.T) {
	r := NewSQLiteRepository(repotest.NewSQLite(t))
	ctx := context.Background()

	_, err := r.GetByEmail(ctx, "ghost@example.com")
	require.ErrorIs(t, err, common.ErrorNotFound)

	_, err = r.GetByID(ctx, 999)
	require.ErrorIs(t, err, common.ErrorNotFound)
}
