package repository

import (
	"context"
	"testing"
	"time"

	"hackarena/internal/models"
	"hackarena/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanctionRepository_ExpireDue(t *testing.T) {
	t.Parallel()
	db := testutil.OpenTestDB(t)
	repo := NewSanctionRepository(db)
	ctx := context.Background()

	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	expired := models.Sanction{UserID: 1, Type: models.SanctionSuspension, Reason: "r", AppliedBy: 9, IsActive: true, ExpiresAt: &past}
	live := models.Sanction{UserID: 2, Type: models.SanctionRestriction, Reason: "r", AppliedBy: 9, IsActive: true, ExpiresAt: &future}
	permanent := models.Sanction{UserID: 3, Type: models.SanctionBan, Reason: "r", AppliedBy: 9, IsActive: true}
	require.NoError(t, repo.Create(ctx, &expired))
	require.NoError(t, repo.Create(ctx, &live))
	require.NoError(t, repo.Create(ctx, &permanent))

	userIDs, err := repo.ExpireDue(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, []uint{1}, userIDs)

	got, err := repo.GetByID(ctx, expired.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	got, err = repo.GetByID(ctx, live.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActive)

	got, err = repo.GetByID(ctx, permanent.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActive)

	// Nothing left due; no users touched.
	userIDs, err = repo.ExpireDue(ctx, now)
	require.NoError(t, err)
	assert.Empty(t, userIDs)
}

func TestSanctionRepository_ListActiveByUser(t *testing.T) {
	t.Parallel()
	db := testutil.OpenTestDB(t)
	repo := NewSanctionRepository(db)
	ctx := context.Background()

	active := models.Sanction{UserID: 1, Type: models.SanctionWarning, Reason: "a", AppliedBy: 9, IsActive: true}
	revoked := models.Sanction{UserID: 1, Type: models.SanctionBan, Reason: "b", AppliedBy: 9, IsActive: false}
	other := models.Sanction{UserID: 2, Type: models.SanctionBan, Reason: "c", AppliedBy: 9, IsActive: true}
	require.NoError(t, repo.Create(ctx, &active))
	require.NoError(t, repo.Create(ctx, &revoked))
	require.NoError(t, repo.Create(ctx, &other))

	got, err := repo.ListActiveByUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, active.ID, got[0].ID)

	all, err := repo.ListByUser(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
