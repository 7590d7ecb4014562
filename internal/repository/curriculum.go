package repository

import (
	"context"
	"errors"

	"hackarena/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CurriculumRepository persists learning tracks and per-user progress.
type CurriculumRepository interface {
	Create(ctx context.Context, curriculum *models.Curriculum) error
	GetByID(ctx context.Context, id uint) (*models.Curriculum, error)
	Update(ctx context.Context, curriculum *models.Curriculum) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, limit, offset int) ([]models.Curriculum, error)

	GetProgress(ctx context.Context, curriculumID, userID uint) (*models.CurriculumProgress, error)
	SaveProgress(ctx context.Context, progress *models.CurriculumProgress) error
	ListProgressByUser(ctx context.Context, userID uint) ([]models.CurriculumProgress, error)
}

type curriculumRepository struct {
	db *gorm.DB
}

// NewCurriculumRepository returns a new CurriculumRepository implementation.
func NewCurriculumRepository(db *gorm.DB) CurriculumRepository {
	return &curriculumRepository{db: db}
}

func (r *curriculumRepository) Create(ctx context.Context, curriculum *models.Curriculum) error {
	if err := r.db.WithContext(ctx).Create(curriculum).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *curriculumRepository) GetByID(ctx context.Context, id uint) (*models.Curriculum, error) {
	var curriculum models.Curriculum
	if err := r.db.WithContext(ctx).First(&curriculum, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Curriculum", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &curriculum, nil
}

func (r *curriculumRepository) Update(ctx context.Context, curriculum *models.Curriculum) error {
	if err := r.db.WithContext(ctx).Save(curriculum).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *curriculumRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Curriculum{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *curriculumRepository) List(ctx context.Context, limit, offset int) ([]models.Curriculum, error) {
	var curricula []models.Curriculum
	err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&curricula).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return curricula, nil
}

func (r *curriculumRepository) GetProgress(ctx context.Context, curriculumID, userID uint) (*models.CurriculumProgress, error) {
	var progress models.CurriculumProgress
	err := r.db.WithContext(ctx).
		Where("curriculum_id = ? AND user_id = ?", curriculumID, userID).
		First(&progress).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &progress, nil
}

func (r *curriculumRepository) SaveProgress(ctx context.Context, progress *models.CurriculumProgress) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "curriculum_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"completed_units", "updated_at"}),
		}).
		Create(progress).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *curriculumRepository) ListProgressByUser(ctx context.Context, userID uint) ([]models.CurriculumProgress, error) {
	var progress []models.CurriculumProgress
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&progress).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return progress, nil
}
