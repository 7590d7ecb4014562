package repository

import (
	"context"

	"hackarena/internal/models"

	"gorm.io/gorm"
)

// ScoreHistoryRepository persists the append-only score audit log.
type ScoreHistoryRepository interface {
	Create(ctx context.Context, entry *models.ScoreHistory) error
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.ScoreHistory, error)
	List(ctx context.Context, limit, offset int) ([]models.ScoreHistory, error)
	CountByUser(ctx context.Context, userID uint) (int64, error)
}

type scoreHistoryRepository struct {
	db *gorm.DB
}

// NewScoreHistoryRepository returns a new ScoreHistoryRepository implementation.
func NewScoreHistoryRepository(db *gorm.DB) ScoreHistoryRepository {
	return &scoreHistoryRepository{db: db}
}

func (r *scoreHistoryRepository) Create(ctx context.Context, entry *models.ScoreHistory) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *scoreHistoryRepository) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.ScoreHistory, error) {
	var entries []models.ScoreHistory
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return entries, nil
}

func (r *scoreHistoryRepository) List(ctx context.Context, limit, offset int) ([]models.ScoreHistory, error) {
	var entries []models.ScoreHistory
	err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return entries, nil
}

func (r *scoreHistoryRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ScoreHistory{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
