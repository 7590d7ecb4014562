package repository

import (
	"context"
	"errors"
	"time"

	"hackarena/internal/models"

	"gorm.io/gorm"
)

// SanctionRepository persists disciplinary records.
type SanctionRepository interface {
	Create(ctx context.Context, sanction *models.Sanction) error
	GetByID(ctx context.Context, id uint) (*models.Sanction, error)
	Update(ctx context.Context, sanction *models.Sanction) error
	ListByUser(ctx context.Context, userID uint) ([]models.Sanction, error)
	ListActiveByUser(ctx context.Context, userID uint) ([]models.Sanction, error)
	// ExpireDue deactivates sanctions whose expiry has passed and returns the
	// affected user IDs so their status can be recomputed.
	ExpireDue(ctx context.Context, now time.Time) ([]uint, error)
}

type sanctionRepository struct {
	db *gorm.DB
}

// NewSanctionRepository returns a new SanctionRepository implementation.
func NewSanctionRepository(db *gorm.DB) SanctionRepository {
	return &sanctionRepository{db: db}
}

func (r *sanctionRepository) Create(ctx context.Context, sanction *models.Sanction) error {
	if err := r.db.WithContext(ctx).Create(sanction).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *sanctionRepository) GetByID(ctx context.Context, id uint) (*models.Sanction, error) {
	var sanction models.Sanction
	if err := r.db.WithContext(ctx).First(&sanction, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Sanction", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &sanction, nil
}

func (r *sanctionRepository) Update(ctx context.Context, sanction *models.Sanction) error {
	if err := r.db.WithContext(ctx).Save(sanction).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *sanctionRepository) ListByUser(ctx context.Context, userID uint) ([]models.Sanction, error) {
	var sanctions []models.Sanction
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&sanctions).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return sanctions, nil
}

func (r *sanctionRepository) ListActiveByUser(ctx context.Context, userID uint) ([]models.Sanction, error) {
	var sanctions []models.Sanction
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at DESC, id DESC").
		Find(&sanctions).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return sanctions, nil
}

func (r *sanctionRepository) ExpireDue(ctx context.Context, now time.Time) ([]uint, error) {
	var userIDs []uint
	err := r.db.WithContext(ctx).
		Model(&models.Sanction{}).
		Where("is_active = ? AND expires_at IS NOT NULL AND expires_at <= ?", true, now).
		Distinct().
		Pluck("user_id", &userIDs).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if len(userIDs) == 0 {
		return nil, nil
	}

	err = r.db.WithContext(ctx).
		Model(&models.Sanction{}).
		Where("is_active = ? AND expires_at IS NOT NULL AND expires_at <= ?", true, now).
		Update("is_active", false).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return userIDs, nil
}
