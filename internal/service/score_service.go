// Package service contains the business logic between handlers and repositories.
package service

import (
	"context"
	"time"

	"hackarena/internal/cache"
	"hackarena/internal/models"
	"hackarena/internal/observability"
	"hackarena/internal/scoring"

	"gorm.io/gorm"
)

// adjustRetries bounds optimistic-lock retries on concurrent score writes.
const adjustRetries = 3

// ScoreService owns every write to user score fields. All adjustments go
// through AdjustScore so the sum invariant, level, and tier stay consistent
// with the audit log.
type ScoreService struct {
	db          *gorm.DB
	historyRepo scoreHistoryStore
	tiers       *scoring.TierTable
}

// scoreHistoryStore is the subset of ScoreHistoryRepository this service needs.
// Audit writes happen inside the adjustment transaction, so only reads go
// through the repository here.
type scoreHistoryStore interface {
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.ScoreHistory, error)
	CountByUser(ctx context.Context, userID uint) (int64, error)
}

// AdjustScoreInput describes one score adjustment.
type AdjustScoreInput struct {
	UserID    uint
	Category  models.ScoreCategory
	Delta     int
	Reason    string
	AdminID   uint
	AdminName string
}

// NewScoreService returns a new ScoreService.
func NewScoreService(db *gorm.DB, historyRepo scoreHistoryStore, tiers *scoring.TierTable) *ScoreService {
	if tiers == nil {
		tiers = scoring.DefaultTierTable()
	}
	return &ScoreService{db: db, historyRepo: historyRepo, tiers: tiers}
}

// AdjustScore applies a delta to one score category, rederives the total,
// level, and tier, and appends an audit entry, all in one transaction.
//
// A "total" adjustment lands in BonusPoints so the category sum invariant
// holds. Concurrent adjustments to the same user are serialized by the
// user's version column.
func (s *ScoreService) AdjustScore(ctx context.Context, in AdjustScoreInput) (*models.User, error) {
	ctx, span := observability.TraceServiceCall(ctx, "ScoreService", "AdjustScore")
	defer span.End()

	if !models.ValidScoreCategory(in.Category) {
		return nil, models.NewValidationError("Unknown score category")
	}
	if in.Delta == 0 {
		return nil, models.NewValidationError("Adjustment delta cannot be zero")
	}
	if in.Reason == "" {
		return nil, models.NewValidationError("Adjustment reason is required")
	}

	var result *models.User
	var err error
	for attempt := 0; attempt < adjustRetries; attempt++ {
		result, err = s.adjustOnce(ctx, in)
		if err == nil || !isVersionConflict(err) {
			break
		}
	}
	if err != nil {
		return nil, err
	}

	direction := "up"
	if in.Delta < 0 {
		direction = "down"
	}
	observability.ScoreAdjustments.WithLabelValues(string(in.Category), direction).Inc()

	cache.InvalidateUser(ctx, in.UserID)
	cache.InvalidateRankingPages(ctx)

	return result, nil
}

// versionConflictError marks a lost optimistic-lock race; AdjustScore retries it.
type versionConflictError struct{}

func (versionConflictError) Error() string { return "user row changed concurrently" }

func isVersionConflict(err error) bool {
	_, ok := err.(versionConflictError)
	return ok
}

func (s *ScoreService) adjustOnce(ctx context.Context, in AdjustScoreInput) (*models.User, error) {
	var user models.User

	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, in.UserID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return models.NewNotFoundError("User", in.UserID)
			}
			return models.NewInternalError(err)
		}

		before := user.CategoryScore(in.Category)

		switch in.Category {
		case models.CategoryWargame:
			user.WargameScore += in.Delta
		case models.CategoryCtf:
			user.CtfScore += in.Delta
		case models.CategoryCurriculum:
			user.CurriculumScore += in.Delta
		default:
			user.BonusPoints += in.Delta
		}

		user.Points = user.WargameScore + user.CtfScore + user.CurriculumScore + user.BonusPoints

		after := user.CategoryScore(in.Category)
		if after < 0 || user.Points < 0 {
			return models.NewValidationError("Adjustment would make the score negative")
		}

		user.Level = scoring.Level(user.Points)
		user.Tier = s.tiers.ForScore(user.Points)

		res := tx.Model(&models.User{}).
			Where("id = ? AND version = ?", user.ID, user.Version).
			Updates(map[string]interface{}{
				"wargame_score":    user.WargameScore,
				"ctf_score":        user.CtfScore,
				"curriculum_score": user.CurriculumScore,
				"bonus_points":     user.BonusPoints,
				"points":           user.Points,
				"level":            user.Level,
				"tier":             user.Tier,
				"version":          user.Version + 1,
			})
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			return versionConflictError{}
		}
		user.Version++

		entry := &models.ScoreHistory{
			UserID:    user.ID,
			Username:  user.Username,
			ScoreType: in.Category,
			Points:    in.Delta,
			Before:    before,
			After:     after,
			Reason:    in.Reason,
			AdminID:   in.AdminID,
			AdminName: in.AdminName,
			CreatedAt: time.Now(),
		}
		if err := tx.Create(entry).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return &user, nil
}

// History returns a user's score audit entries, newest first.
func (s *ScoreService) History(ctx context.Context, userID uint, limit, offset int) ([]models.ScoreHistory, int64, error) {
	entries, err := s.historyRepo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.historyRepo.CountByUser(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
