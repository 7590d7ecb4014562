package repository

import (
	"context"
	"errors"

	"hackarena/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeasonRepository persists seasons, their participants, and reset runs.
type SeasonRepository interface {
	Create(ctx context.Context, season *models.Season) error
	GetByID(ctx context.Context, id uint) (*models.Season, error)
	GetActive(ctx context.Context) (*models.Season, error)
	Update(ctx context.Context, season *models.Season) error
	List(ctx context.Context, limit, offset int) ([]models.Season, error)

	UpsertParticipant(ctx context.Context, p *models.SeasonParticipant) error
	ListParticipants(ctx context.Context, seasonID uint, limit, offset int) ([]models.SeasonParticipant, error)
	CountParticipants(ctx context.Context, seasonID uint) (int64, error)

	CreateResetRun(ctx context.Context, run *models.SeasonResetRun) error
	UpdateResetRun(ctx context.Context, run *models.SeasonResetRun) error
	GetResetRun(ctx context.Context, runID string) (*models.SeasonResetRun, error)
	GetLatestResetRun(ctx context.Context, seasonID uint) (*models.SeasonResetRun, error)
}

type seasonRepository struct {
	db *gorm.DB
}

// NewSeasonRepository returns a new SeasonRepository implementation.
func NewSeasonRepository(db *gorm.DB) SeasonRepository {
	return &seasonRepository{db: db}
}

func (r *seasonRepository) Create(ctx context.Context, season *models.Season) error {
	if err := r.db.WithContext(ctx).Create(season).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Season name already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *seasonRepository) GetByID(ctx context.Context, id uint) (*models.Season, error) {
	var season models.Season
	if err := r.db.WithContext(ctx).First(&season, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Season", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &season, nil
}

// GetActive returns the single active season, or nil when no season is active.
func (r *seasonRepository) GetActive(ctx context.Context) (*models.Season, error) {
	var season models.Season
	if err := r.db.WithContext(ctx).Where("is_active = ?", true).First(&season).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &season, nil
}

func (r *seasonRepository) Update(ctx context.Context, season *models.Season) error {
	if err := r.db.WithContext(ctx).Save(season).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *seasonRepository) List(ctx context.Context, limit, offset int) ([]models.Season, error) {
	var seasons []models.Season
	err := r.db.WithContext(ctx).
		Order("starts_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&seasons).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return seasons, nil
}

// UpsertParticipant inserts or refreshes a (season, user) snapshot row.
func (r *seasonRepository) UpsertParticipant(ctx context.Context, p *models.SeasonParticipant) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "season_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"score", "rank", "updated_at"}),
		}).
		Create(p).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *seasonRepository) ListParticipants(ctx context.Context, seasonID uint, limit, offset int) ([]models.SeasonParticipant, error) {
	var participants []models.SeasonParticipant
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("season_id = ?", seasonID).
		Order("rank ASC, user_id ASC").
		Limit(limit).
		Offset(offset).
		Find(&participants).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return participants, nil
}

func (r *seasonRepository) CountParticipants(ctx context.Context, seasonID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.SeasonParticipant{}).
		Where("season_id = ?", seasonID).
		Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *seasonRepository) CreateResetRun(ctx context.Context, run *models.SeasonResetRun) error {
	if err := r.db.WithContext(ctx).Create(run).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *seasonRepository) UpdateResetRun(ctx context.Context, run *models.SeasonResetRun) error {
	if err := r.db.WithContext(ctx).Save(run).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *seasonRepository) GetResetRun(ctx context.Context, runID string) (*models.SeasonResetRun, error) {
	var run models.SeasonResetRun
	if err := r.db.WithContext(ctx).Where("run_id = ?", runID).First(&run).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Reset run", runID)
		}
		return nil, models.NewInternalError(err)
	}
	return &run, nil
}

func (r *seasonRepository) GetLatestResetRun(ctx context.Context, seasonID uint) (*models.SeasonResetRun, error) {
	var run models.SeasonResetRun
	err := r.db.WithContext(ctx).
		Where("season_id = ?", seasonID).
		Order("started_at DESC, id DESC").
		First(&run).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &run, nil
}
