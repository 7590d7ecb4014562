package service

import (
	"context"
	"testing"

	"hackarena/internal/models"
	"hackarena/internal/repository"
	"hackarena/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func newScoreFixture(t *testing.T) (*gorm.DB, *ScoreService, *models.User) {
	t.Helper()
	db := testutil.OpenTestDB(t)
	svc := NewScoreService(db, repository.NewScoreHistoryRepository(db), nil)
	user := &models.User{Username: "neo", Email: "neo@example.com", Password: "x", Level: 1, Tier: "Bronze"}
	require.NoError(t, db.Create(user).Error)
	return db, svc, user
}

func TestScoreService_AdjustScore_Category(t *testing.T) {
	t.Parallel()
	_, svc, user := newScoreFixture(t)
	ctx := context.Background()

	updated, err := svc.AdjustScore(ctx, AdjustScoreInput{
		UserID:    user.ID,
		Category:  models.CategoryWargame,
		Delta:     150,
		Reason:    "manual correction",
		AdminID:   42,
		AdminName: "op",
	})
	require.NoError(t, err)

	assert.Equal(t, 150, updated.WargameScore)
	assert.Equal(t, 150, updated.Points)
	assert.Equal(t, updated.WargameScore+updated.CtfScore+updated.CurriculumScore+updated.BonusPoints, updated.Points)
	assert.Equal(t, "Bronze", updated.Tier)
}

func TestScoreService_AdjustScore_TotalGoesToBonus(t *testing.T) {
	t.Parallel()
	_, svc, user := newScoreFixture(t)
	ctx := context.Background()

	updated, err := svc.AdjustScore(ctx, AdjustScoreInput{
		UserID:   user.ID,
		Category: models.CategoryTotal,
		Delta:    1200,
		Reason:   "event bonus",
		AdminID:  42,
	})
	require.NoError(t, err)

	assert.Equal(t, 1200, updated.BonusPoints)
	assert.Equal(t, 1200, updated.Points)
	assert.Equal(t, 0, updated.WargameScore)
	// 1200 points crosses the Silver threshold
	assert.Equal(t, "Silver", updated.Tier)
	assert.Equal(t, 11, updated.Level)
}

func TestScoreService_AdjustScore_WritesAudit(t *testing.T) {
	t.Parallel()
	db, svc, user := newScoreFixture(t)
	ctx := context.Background()

	_, err := svc.AdjustScore(ctx, AdjustScoreInput{
		UserID:    user.ID,
		Category:  models.CategoryCtf,
		Delta:     100,
		Reason:    "first",
		AdminID:   42,
		AdminName: "op",
	})
	require.NoError(t, err)
	_, err = svc.AdjustScore(ctx, AdjustScoreInput{
		UserID:   user.ID,
		Category: models.CategoryCtf,
		Delta:    -30,
		Reason:   "penalty",
		AdminID:  42,
	})
	require.NoError(t, err)

	entries, total, err := svc.History(ctx, user.ID, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, entries, 2)

	// newest first
	assert.Equal(t, -30, entries[0].Points)
	assert.Equal(t, 100, entries[0].Before)
	assert.Equal(t, 70, entries[0].After)
	assert.Equal(t, "penalty", entries[0].Reason)

	assert.Equal(t, 100, entries[1].Points)
	assert.Equal(t, 0, entries[1].Before)
	assert.Equal(t, 100, entries[1].After)
	assert.Equal(t, "neo", entries[1].Username)

	var count int64
	require.NoError(t, db.Model(&models.ScoreHistory{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestScoreService_AdjustScore_RoundTrip(t *testing.T) {
	t.Parallel()
	_, svc, user := newScoreFixture(t)
	ctx := context.Background()

	seeded, err := svc.AdjustScore(ctx, AdjustScoreInput{
		UserID: user.ID, Category: models.CategoryCurriculum, Delta: 300, Reason: "seed", AdminID: 1,
	})
	require.NoError(t, err)

	_, err = svc.AdjustScore(ctx, AdjustScoreInput{
		UserID: user.ID, Category: models.CategoryCurriculum, Delta: 75, Reason: "grant", AdminID: 1,
	})
	require.NoError(t, err)
	reverted, err := svc.AdjustScore(ctx, AdjustScoreInput{
		UserID: user.ID, Category: models.CategoryCurriculum, Delta: -75, Reason: "revert", AdminID: 1,
	})
	require.NoError(t, err)

	assert.Equal(t, seeded.CurriculumScore, reverted.CurriculumScore)
	assert.Equal(t, seeded.Points, reverted.Points)
	assert.Equal(t, seeded.Tier, reverted.Tier)
	assert.Equal(t, seeded.Level, reverted.Level)
}

func TestScoreService_AdjustScore_Validation(t *testing.T) {
	t.Parallel()
	_, svc, user := newScoreFixture(t)
	ctx := context.Background()

	_, err := svc.AdjustScore(ctx, AdjustScoreInput{UserID: user.ID, Category: "bogus", Delta: 10, Reason: "r"})
	assertValidationError(t, err)

	_, err = svc.AdjustScore(ctx, AdjustScoreInput{UserID: user.ID, Category: models.CategoryCtf, Delta: 0, Reason: "r"})
	assertValidationError(t, err)

	_, err = svc.AdjustScore(ctx, AdjustScoreInput{UserID: user.ID, Category: models.CategoryCtf, Delta: 10})
	assertValidationError(t, err)
}

func TestScoreService_AdjustScore_RejectsOverDeduction(t *testing.T) {
	t.Parallel()
	db, svc, user := newScoreFixture(t)
	ctx := context.Background()

	_, err := svc.AdjustScore(ctx, AdjustScoreInput{
		UserID: user.ID, Category: models.CategoryCtf, Delta: 100, Reason: "seed", AdminID: 1,
	})
	require.NoError(t, err)

	_, err = svc.AdjustScore(ctx, AdjustScoreInput{
		UserID: user.ID, Category: models.CategoryCtf, Delta: -500, Reason: "too deep", AdminID: 1,
	})
	assertValidationError(t, err)

	var stored models.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	assert.Equal(t, 100, stored.CtfScore)
	assert.Equal(t, 100, stored.Points)

	// the rejected adjustment leaves no audit row
	_, total, err := svc.History(ctx, user.ID, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestScoreService_AdjustScore_UserNotFound(t *testing.T) {
	t.Parallel()
	_, svc, _ := newScoreFixture(t)

	_, err := svc.AdjustScore(context.Background(), AdjustScoreInput{
		UserID: 9999, Category: models.CategoryCtf, Delta: 10, Reason: "r",
	})
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestScoreService_AdjustScore_BumpsVersion(t *testing.T) {
	t.Parallel()
	db, svc, user := newScoreFixture(t)
	ctx := context.Background()

	_, err := svc.AdjustScore(ctx, AdjustScoreInput{
		UserID: user.ID, Category: models.CategoryCtf, Delta: 10, Reason: "r", AdminID: 1,
	})
	require.NoError(t, err)

	var stored models.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	assert.Equal(t, user.Version+1, stored.Version)
}
