package service

import (
	"context"
	"fmt"

	"hackarena/internal/models"
	"hackarena/internal/repository"
)

// CurriculumService manages learning tracks and awards curriculum points on
// unit completion.
type CurriculumService struct {
	curriculumRepo repository.CurriculumRepository
	scores         scoreAdjuster
}

// CreateCurriculumInput describes a new learning track.
type CreateCurriculumInput struct {
	Title         string
	Description   string
	Units         int
	PointsPerUnit int
}

// NewCurriculumService returns a new CurriculumService.
func NewCurriculumService(curriculumRepo repository.CurriculumRepository, scores scoreAdjuster) *CurriculumService {
	return &CurriculumService{curriculumRepo: curriculumRepo, scores: scores}
}

func (s *CurriculumService) Create(ctx context.Context, in CreateCurriculumInput) (*models.Curriculum, error) {
	if in.Title == "" {
		return nil, models.NewValidationError("Curriculum title is required")
	}
	if in.Units <= 0 {
		return nil, models.NewValidationError("Curriculum must have at least one unit")
	}
	if in.PointsPerUnit < 0 {
		return nil, models.NewValidationError("Points per unit cannot be negative")
	}

	curriculum := &models.Curriculum{
		Title:         in.Title,
		Description:   in.Description,
		Units:         in.Units,
		PointsPerUnit: in.PointsPerUnit,
	}
	if err := s.curriculumRepo.Create(ctx, curriculum); err != nil {
		return nil, err
	}
	return curriculum, nil
}

func (s *CurriculumService) Get(ctx context.Context, id uint) (*models.Curriculum, error) {
	return s.curriculumRepo.GetByID(ctx, id)
}

func (s *CurriculumService) List(ctx context.Context, limit, offset int) ([]models.Curriculum, error) {
	return s.curriculumRepo.List(ctx, limit, offset)
}

// CompleteUnit records one more completed unit for the user and awards the
// track's per-unit points. Completing past the final unit is rejected.
func (s *CurriculumService) CompleteUnit(ctx context.Context, curriculumID, userID uint) (*models.CurriculumProgress, error) {
	curriculum, err := s.curriculumRepo.GetByID(ctx, curriculumID)
	if err != nil {
		return nil, err
	}

	progress, err := s.curriculumRepo.GetProgress(ctx, curriculumID, userID)
	if err != nil {
		return nil, err
	}
	if progress == nil {
		progress = &models.CurriculumProgress{CurriculumID: curriculumID, UserID: userID}
	}
	if progress.CompletedUnits >= curriculum.Units {
		return nil, models.NewValidationError("Curriculum is already complete")
	}

	progress.CompletedUnits++
	if err := s.curriculumRepo.SaveProgress(ctx, progress); err != nil {
		return nil, err
	}

	if curriculum.PointsPerUnit > 0 {
		if _, err := s.scores.AdjustScore(ctx, AdjustScoreInput{
			UserID:    userID,
			Category:  models.CategoryCurriculum,
			Delta:     curriculum.PointsPerUnit,
			Reason:    fmt.Sprintf("Completed unit %d of %s", progress.CompletedUnits, curriculum.Title),
			AdminID:   0,
			AdminName: "system",
		}); err != nil {
			return nil, err
		}
	}
	return progress, nil
}

// Progress returns the user's progress across all tracks.
func (s *CurriculumService) Progress(ctx context.Context, userID uint) ([]models.CurriculumProgress, error) {
	return s.curriculumRepo.ListProgressByUser(ctx, userID)
}
