package service

import (
	"context"
	"testing"
	"time"

	"hackarena/internal/models"
	"hackarena/internal/repository"
	"hackarena/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scoreAdjusterStub struct {
	adjustFn func(context.Context, AdjustScoreInput) (*models.User, error)
	calls    []AdjustScoreInput
}

func (s *scoreAdjusterStub) AdjustScore(ctx context.Context, in AdjustScoreInput) (*models.User, error) {
	s.calls = append(s.calls, in)
	if s.adjustFn != nil {
		return s.adjustFn(ctx, in)
	}
	return &models.User{ID: in.UserID}, nil
}

func newContestFixture(t *testing.T) (*ContestService, *scoreAdjusterStub) {
	t.Helper()
	db := testutil.OpenTestDB(t)
	scores := &scoreAdjusterStub{}
	svc := NewContestService(repository.NewContestRepository(db), scores)
	return svc, scores
}

func TestContestService_SubmitFlag(t *testing.T) {
	t.Parallel()
	svc, scores := newContestFixture(t)
	ctx := context.Background()

	contest, err := svc.CreateContest(ctx, CreateContestInput{Title: "Spring CTF", CreatedBy: 1})
	require.NoError(t, err)
	challenge, err := svc.CreateChallenge(ctx, CreateChallengeInput{
		ContestID: contest.ID, Title: "warmup", Points: 100, Flag: "flag{hello}",
	})
	require.NoError(t, err)
	assert.Equal(t, HashFlag("flag{hello}"), challenge.FlagHash)

	t.Run("wrong flag", func(t *testing.T) {
		result, err := svc.SubmitFlag(ctx, challenge.ID, 7, "flag{nope}")
		require.NoError(t, err)
		assert.False(t, result.Correct)
		assert.Empty(t, scores.calls)
	})

	t.Run("correct flag awards points", func(t *testing.T) {
		result, err := svc.SubmitFlag(ctx, challenge.ID, 7, "flag{hello}")
		require.NoError(t, err)
		assert.True(t, result.Correct)
		assert.False(t, result.AlreadySolved)
		assert.Equal(t, 100, result.PointsAwarded)

		require.Len(t, scores.calls, 1)
		call := scores.calls[0]
		assert.Equal(t, uint(7), call.UserID)
		assert.Equal(t, models.CategoryCtf, call.Category)
		assert.Equal(t, 100, call.Delta)
		assert.Zero(t, call.AdminID, "system award")
	})

	t.Run("resubmission does not double award", func(t *testing.T) {
		result, err := svc.SubmitFlag(ctx, challenge.ID, 7, "flag{hello}")
		require.NoError(t, err)
		assert.True(t, result.Correct)
		assert.True(t, result.AlreadySolved)
		assert.Zero(t, result.PointsAwarded)
		assert.Len(t, scores.calls, 1)
	})

	t.Run("flag with surrounding whitespace still matches", func(t *testing.T) {
		result, err := svc.SubmitFlag(ctx, challenge.ID, 8, "  flag{hello}\n")
		require.NoError(t, err)
		assert.True(t, result.Correct)
	})
}

func TestContestService_SubmitFlag_WargameCategory(t *testing.T) {
	t.Parallel()
	svc, scores := newContestFixture(t)
	ctx := context.Background()

	contest, err := svc.CreateContest(ctx, CreateContestInput{
		Title: "Pwnable Lab", Category: models.ContestWargame, CreatedBy: 1,
	})
	require.NoError(t, err)
	challenge, err := svc.CreateChallenge(ctx, CreateChallengeInput{
		ContestID: contest.ID, Title: "bof", Points: 50, Flag: "flag{bof}",
	})
	require.NoError(t, err)

	_, err = svc.SubmitFlag(ctx, challenge.ID, 7, "flag{bof}")
	require.NoError(t, err)
	require.Len(t, scores.calls, 1)
	assert.Equal(t, models.CategoryWargame, scores.calls[0].Category)
}

func TestContestService_SubmitFlag_OutsideWindow(t *testing.T) {
	t.Parallel()
	svc, scores := newContestFixture(t)
	ctx := context.Background()

	start := time.Now().Add(-2 * time.Hour)
	end := time.Now().Add(-time.Hour)
	contest, err := svc.CreateContest(ctx, CreateContestInput{
		Title: "Past CTF", StartsAt: &start, EndsAt: &end, CreatedBy: 1,
	})
	require.NoError(t, err)
	challenge, err := svc.CreateChallenge(ctx, CreateChallengeInput{
		ContestID: contest.ID, Title: "late", Points: 100, Flag: "flag{late}",
	})
	require.NoError(t, err)

	_, err = svc.SubmitFlag(ctx, challenge.ID, 7, "flag{late}")
	assertValidationError(t, err)
	assert.Empty(t, scores.calls)
}

func TestContestService_CreateContest_Validation(t *testing.T) {
	t.Parallel()
	svc, _ := newContestFixture(t)
	ctx := context.Background()

	_, err := svc.CreateContest(ctx, CreateContestInput{CreatedBy: 1})
	assertValidationError(t, err)

	_, err = svc.CreateContest(ctx, CreateContestInput{Title: "x", Category: "quiz", CreatedBy: 1})
	assertValidationError(t, err)

	start := time.Now()
	end := start.Add(-time.Hour)
	_, err = svc.CreateContest(ctx, CreateContestInput{Title: "x", StartsAt: &start, EndsAt: &end, CreatedBy: 1})
	assertValidationError(t, err)
}

func TestContestService_CreateChallenge_Validation(t *testing.T) {
	t.Parallel()
	svc, _ := newContestFixture(t)
	ctx := context.Background()

	contest, err := svc.CreateContest(ctx, CreateContestInput{Title: "Spring CTF", CreatedBy: 1})
	require.NoError(t, err)

	_, err = svc.CreateChallenge(ctx, CreateChallengeInput{ContestID: contest.ID, Points: 10, Flag: "f"})
	assertValidationError(t, err)

	_, err = svc.CreateChallenge(ctx, CreateChallengeInput{ContestID: contest.ID, Title: "t", Points: 0, Flag: "f"})
	assertValidationError(t, err)

	_, err = svc.CreateChallenge(ctx, CreateChallengeInput{ContestID: contest.ID, Title: "t", Points: 10, Flag: "   "})
	assertValidationError(t, err)
}
