package repository

import (
	"context"
	"testing"

	"hackarena/internal/models"
	"hackarena/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContestRepository_CreateSolve_OncePerUser(t *testing.T) {
	t.Parallel()
	db := testutil.OpenTestDB(t)
	repo := NewContestRepository(db)
	ctx := context.Background()

	contest := models.Contest{Title: "Spring CTF", Category: models.ContestCtf, CreatedBy: 1}
	require.NoError(t, repo.Create(ctx, &contest))
	challenge := models.Challenge{ContestID: contest.ID, Title: "warmup", Points: 100, FlagHash: "ab"}
	require.NoError(t, repo.CreateChallenge(ctx, &challenge))

	inserted, err := repo.CreateSolve(ctx, &models.Solve{
		ChallengeID: challenge.ID, UserID: 7, ContestID: contest.ID, Points: 100,
	})
	require.NoError(t, err)
	assert.True(t, inserted)

	// re-submitting the same flag is not a second solve
	inserted, err = repo.CreateSolve(ctx, &models.Solve{
		ChallengeID: challenge.ID, UserID: 7, ContestID: contest.ID, Points: 100,
	})
	require.NoError(t, err)
	assert.False(t, inserted)

	got, err := repo.GetChallenge(ctx, challenge.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.SolveCount)

	count, err := repo.CountSolves(ctx, contest.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestContestRepository_Join_Idempotent(t *testing.T) {
	t.Parallel()
	db := testutil.OpenTestDB(t)
	repo := NewContestRepository(db)
	ctx := context.Background()

	contest := models.Contest{Title: "Spring CTF", CreatedBy: 1}
	require.NoError(t, repo.Create(ctx, &contest))

	is, err := repo.IsParticipant(ctx, contest.ID, 7)
	require.NoError(t, err)
	assert.False(t, is)

	require.NoError(t, repo.Join(ctx, contest.ID, 7))
	require.NoError(t, repo.Join(ctx, contest.ID, 7))

	is, err = repo.IsParticipant(ctx, contest.ID, 7)
	require.NoError(t, err)
	assert.True(t, is)
}

func TestContestRepository_List_FilterByCategory(t *testing.T) {
	t.Parallel()
	db := testutil.OpenTestDB(t)
	repo := NewContestRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Contest{Title: "Spring CTF", Category: models.ContestCtf, CreatedBy: 1}))
	require.NoError(t, repo.Create(ctx, &models.Contest{Title: "Pwnable Lab", Category: models.ContestWargame, CreatedBy: 1}))

	all, err := repo.List(ctx, "", 10, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	wargames, err := repo.List(ctx, models.ContestWargame, 10, 0)
	require.NoError(t, err)
	require.Len(t, wargames, 1)
	assert.Equal(t, "Pwnable Lab", wargames[0].Title)
}
