package repository

import (
	"context"
	"errors"

	"hackarena/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ContestRepository persists contests, challenges, registrations, and solves.
type ContestRepository interface {
	Create(ctx context.Context, contest *models.Contest) error
	GetByID(ctx context.Context, id uint) (*models.Contest, error)
	Update(ctx context.Context, contest *models.Contest) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, category models.ContestCategory, limit, offset int) ([]models.Contest, error)

	CreateChallenge(ctx context.Context, challenge *models.Challenge) error
	GetChallenge(ctx context.Context, id uint) (*models.Challenge, error)
	UpdateChallenge(ctx context.Context, challenge *models.Challenge) error
	ListChallenges(ctx context.Context, contestID uint) ([]models.Challenge, error)

	Join(ctx context.Context, contestID, userID uint) error
	IsParticipant(ctx context.Context, contestID, userID uint) (bool, error)

	// CreateSolve inserts a solve unless one already exists for the
	// (challenge, user) pair. Returns true when the row was inserted.
	CreateSolve(ctx context.Context, solve *models.Solve) (bool, error)
	ListSolvesByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Solve, error)
	CountSolves(ctx context.Context, contestID uint) (int64, error)
}

type contestRepository struct {
	db *gorm.DB
}

// NewContestRepository returns a new ContestRepository implementation.
func NewContestRepository(db *gorm.DB) ContestRepository {
	return &contestRepository{db: db}
}

func (r *contestRepository) Create(ctx context.Context, contest *models.Contest) error {
	if err := r.db.WithContext(ctx).Create(contest).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *contestRepository) GetByID(ctx context.Context, id uint) (*models.Contest, error) {
	var contest models.Contest
	if err := r.db.WithContext(ctx).Preload("Challenges").First(&contest, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Contest", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &contest, nil
}

func (r *contestRepository) Update(ctx context.Context, contest *models.Contest) error {
	if err := r.db.WithContext(ctx).Save(contest).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *contestRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Contest{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *contestRepository) List(ctx context.Context, category models.ContestCategory, limit, offset int) ([]models.Contest, error) {
	var contests []models.Contest
	q := r.db.WithContext(ctx)
	if category != "" {
		q = q.Where("category = ?", category)
	}
	err := q.Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&contests).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return contests, nil
}

func (r *contestRepository) CreateChallenge(ctx context.Context, challenge *models.Challenge) error {
	if err := r.db.WithContext(ctx).Create(challenge).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *contestRepository) GetChallenge(ctx context.Context, id uint) (*models.Challenge, error) {
	var challenge models.Challenge
	if err := r.db.WithContext(ctx).First(&challenge, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Challenge", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &challenge, nil
}

func (r *contestRepository) UpdateChallenge(ctx context.Context, challenge *models.Challenge) error {
	if err := r.db.WithContext(ctx).Save(challenge).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *contestRepository) ListChallenges(ctx context.Context, contestID uint) ([]models.Challenge, error) {
	var challenges []models.Challenge
	err := r.db.WithContext(ctx).
		Where("contest_id = ?", contestID).
		Order("points ASC, id ASC").
		Find(&challenges).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return challenges, nil
}

func (r *contestRepository) Join(ctx context.Context, contestID, userID uint) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "contest_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&models.ContestParticipant{ContestID: contestID, UserID: userID}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *contestRepository) IsParticipant(ctx context.Context, contestID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ContestParticipant{}).
		Where("contest_id = ? AND user_id = ?", contestID, userID).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *contestRepository) CreateSolve(ctx context.Context, solve *models.Solve) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "challenge_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(solve)
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}

	err := r.db.WithContext(ctx).
		Model(&models.Challenge{}).
		Where("id = ?", solve.ChallengeID).
		Update("solve_count", gorm.Expr("solve_count + 1")).Error
	if err != nil {
		return true, models.NewInternalError(err)
	}
	return true, nil
}

func (r *contestRepository) ListSolvesByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Solve, error) {
	var solves []models.Solve
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&solves).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return solves, nil
}

func (r *contestRepository) CountSolves(ctx context.Context, contestID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Solve{}).
		Where("contest_id = ?", contestID).
		Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
