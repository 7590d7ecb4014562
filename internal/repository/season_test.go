package repository

import (
	"context"
	"testing"
	"time"

	"hackarena/internal/models"
	"hackarena/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeasonRepository_GetActive(t *testing.T) {
	t.Parallel()
	db := testutil.OpenTestDB(t)
	repo := NewSeasonRepository(db)
	ctx := context.Background()

	active, err := repo.GetActive(ctx)
	require.NoError(t, err)
	assert.Nil(t, active, "no season yet")

	require.NoError(t, repo.Create(ctx, &models.Season{
		Name:     "Season 1",
		StartsAt: time.Now(),
		State:    models.SeasonActive,
		IsActive: true,
	}))
	require.NoError(t, repo.Create(ctx, &models.Season{
		Name:     "Season 2",
		StartsAt: time.Now().Add(30 * 24 * time.Hour),
		State:    models.SeasonPlanned,
	}))

	active, err = repo.GetActive(ctx)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, "Season 1", active.Name)
}

func TestSeasonRepository_Create_DuplicateName(t *testing.T) {
	t.Parallel()
	db := testutil.OpenTestDB(t)
	repo := NewSeasonRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Season{Name: "Season 1", StartsAt: time.Now()}))

	err := repo.Create(ctx, &models.Season{Name: "Season 1", StartsAt: time.Now()})
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "CONFLICT", appErr.Code)
}

func TestSeasonRepository_UpsertParticipant(t *testing.T) {
	t.Parallel()
	db := testutil.OpenTestDB(t)
	repo := NewSeasonRepository(db)
	ctx := context.Background()

	user := models.User{Username: "neo", Email: "neo@example.com", Password: "x"}
	require.NoError(t, db.Create(&user).Error)
	season := models.Season{Name: "Season 1", StartsAt: time.Now()}
	require.NoError(t, repo.Create(ctx, &season))

	require.NoError(t, repo.UpsertParticipant(ctx, &models.SeasonParticipant{
		SeasonID: season.ID, UserID: user.ID, Score: 100, Rank: 2, JoinedAt: time.Now(),
	}))
	// Second upsert refreshes the snapshot instead of conflicting.
	require.NoError(t, repo.UpsertParticipant(ctx, &models.SeasonParticipant{
		SeasonID: season.ID, UserID: user.ID, Score: 250, Rank: 1, JoinedAt: time.Now(),
	}))

	count, err := repo.CountParticipants(ctx, season.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	participants, err := repo.ListParticipants(ctx, season.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, participants, 1)
	assert.Equal(t, 250, participants[0].Score)
	assert.Equal(t, 1, participants[0].Rank)
	assert.Equal(t, "neo", participants[0].User.Username)
}

func TestSeasonRepository_ResetRuns(t *testing.T) {
	t.Parallel()
	db := testutil.OpenTestDB(t)
	repo := NewSeasonRepository(db)
	ctx := context.Background()

	season := models.Season{Name: "Season 1", StartsAt: time.Now()}
	require.NoError(t, repo.Create(ctx, &season))

	latest, err := repo.GetLatestResetRun(ctx, season.ID)
	require.NoError(t, err)
	assert.Nil(t, latest)

	run := models.SeasonResetRun{
		RunID:      uuid.NewString(),
		SeasonID:   season.ID,
		Status:     models.ResetRunning,
		TotalUsers: 100,
		StartedAt:  time.Now(),
	}
	require.NoError(t, repo.CreateResetRun(ctx, &run))

	run.ProcessedUsers = 100
	run.Status = models.ResetCompleted
	now := time.Now()
	run.FinishedAt = &now
	require.NoError(t, repo.UpdateResetRun(ctx, &run))

	got, err := repo.GetResetRun(ctx, run.RunID)
	require.NoError(t, err)
	assert.Equal(t, models.ResetCompleted, got.Status)
	assert.Equal(t, int64(100), got.ProcessedUsers)

	latest, err = repo.GetLatestResetRun(ctx, season.ID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, run.RunID, latest.RunID)
}
