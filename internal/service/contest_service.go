package service

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"
	"time"

	"hackarena/internal/models"
	"hackarena/internal/observability"
	"hackarena/internal/repository"
)

// scoreAdjuster is the slice of ScoreService that contest and curriculum
// flows use to award points.
type scoreAdjuster interface {
	AdjustScore(ctx context.Context, in AdjustScoreInput) (*models.User, error)
}

// ContestService manages contests, challenges, and flag submissions.
// Correct submissions award points through ScoreService so solves and admin
// adjustments share one audit trail.
type ContestService struct {
	contestRepo repository.ContestRepository
	scores      scoreAdjuster
	now         func() time.Time
}

// CreateContestInput describes a new contest.
type CreateContestInput struct {
	Title       string
	Description string
	Category    models.ContestCategory
	StartsAt    *time.Time
	EndsAt      *time.Time
	CreatedBy   uint
}

// CreateChallengeInput describes a new challenge. Flag is the plaintext flag;
// only its hash is stored.
type CreateChallengeInput struct {
	ContestID uint
	Title     string
	Points    int
	Flag      string
}

// SubmitFlagResult reports the outcome of a flag submission.
type SubmitFlagResult struct {
	Correct       bool `json:"correct"`
	AlreadySolved bool `json:"already_solved"`
	PointsAwarded int  `json:"points_awarded"`
}

// NewContestService returns a new ContestService.
func NewContestService(contestRepo repository.ContestRepository, scores scoreAdjuster) *ContestService {
	return &ContestService{
		contestRepo: contestRepo,
		scores:      scores,
		now:         time.Now,
	}
}

// HashFlag returns the stored form of a flag.
func HashFlag(flag string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(flag)))
	return hex.EncodeToString(sum[:])
}

func (s *ContestService) CreateContest(ctx context.Context, in CreateContestInput) (*models.Contest, error) {
	if in.Title == "" {
		return nil, models.NewValidationError("Contest title is required")
	}
	switch in.Category {
	case models.ContestCtf, models.ContestWargame:
	case "":
		in.Category = models.ContestCtf
	default:
		return nil, models.NewValidationError("Unknown contest category")
	}
	if in.StartsAt != nil && in.EndsAt != nil && !in.EndsAt.After(*in.StartsAt) {
		return nil, models.NewValidationError("Contest end must be after its start")
	}

	contest := &models.Contest{
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		StartsAt:    in.StartsAt,
		EndsAt:      in.EndsAt,
		CreatedBy:   in.CreatedBy,
	}
	if err := s.contestRepo.Create(ctx, contest); err != nil {
		return nil, err
	}
	return contest, nil
}

func (s *ContestService) GetContest(ctx context.Context, id uint) (*models.Contest, error) {
	return s.contestRepo.GetByID(ctx, id)
}

func (s *ContestService) ListContests(ctx context.Context, category models.ContestCategory, limit, offset int) ([]models.Contest, error) {
	if category != "" && category != models.ContestCtf && category != models.ContestWargame {
		return nil, models.NewValidationError("Unknown contest category")
	}
	return s.contestRepo.List(ctx, category, limit, offset)
}

func (s *ContestService) CreateChallenge(ctx context.Context, in CreateChallengeInput) (*models.Challenge, error) {
	if in.Title == "" {
		return nil, models.NewValidationError("Challenge title is required")
	}
	if in.Points <= 0 {
		return nil, models.NewValidationError("Challenge points must be positive")
	}
	if strings.TrimSpace(in.Flag) == "" {
		return nil, models.NewValidationError("Challenge flag is required")
	}
	if _, err := s.contestRepo.GetByID(ctx, in.ContestID); err != nil {
		return nil, err
	}

	challenge := &models.Challenge{
		ContestID: in.ContestID,
		Title:     in.Title,
		Points:    in.Points,
		FlagHash:  HashFlag(in.Flag),
	}
	if err := s.contestRepo.CreateChallenge(ctx, challenge); err != nil {
		return nil, err
	}
	return challenge, nil
}

// Join registers a user for a contest. Joining twice is a no-op.
func (s *ContestService) Join(ctx context.Context, contestID, userID uint) error {
	contest, err := s.contestRepo.GetByID(ctx, contestID)
	if err != nil {
		return err
	}
	if contest.EndsAt != nil && s.now().After(*contest.EndsAt) {
		return models.NewValidationError("Contest has ended")
	}
	return s.contestRepo.Join(ctx, contestID, userID)
}

// SubmitFlag checks a flag against a challenge. A correct first-time solve
// records the solve and awards the challenge points to the matching score
// category. Re-solving is reported but never double-awards.
func (s *ContestService) SubmitFlag(ctx context.Context, challengeID, userID uint, flag string) (*SubmitFlagResult, error) {
	if strings.TrimSpace(flag) == "" {
		return nil, models.NewValidationError("Flag is required")
	}

	challenge, err := s.contestRepo.GetChallenge(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	contest, err := s.contestRepo.GetByID(ctx, challenge.ContestID)
	if err != nil {
		return nil, err
	}
	if !contest.Running(s.now()) {
		observability.SolveSubmissions.WithLabelValues("closed").Inc()
		return nil, models.NewValidationError("Contest is not running")
	}

	submitted := HashFlag(flag)
	if subtle.ConstantTimeCompare([]byte(submitted), []byte(challenge.FlagHash)) != 1 {
		observability.SolveSubmissions.WithLabelValues("wrong").Inc()
		return &SubmitFlagResult{Correct: false}, nil
	}

	inserted, err := s.contestRepo.CreateSolve(ctx, &models.Solve{
		ChallengeID: challengeID,
		UserID:      userID,
		ContestID:   contest.ID,
		Points:      challenge.Points,
	})
	if err != nil {
		return nil, err
	}
	if !inserted {
		observability.SolveSubmissions.WithLabelValues("duplicate").Inc()
		return &SubmitFlagResult{Correct: true, AlreadySolved: true}, nil
	}

	category := models.CategoryCtf
	if contest.Category == models.ContestWargame {
		category = models.CategoryWargame
	}

	// AdminID 0 marks a system-initiated award in the audit log.
	if _, err := s.scores.AdjustScore(ctx, AdjustScoreInput{
		UserID:    userID,
		Category:  category,
		Delta:     challenge.Points,
		Reason:    "Solved challenge: " + challenge.Title,
		AdminID:   0,
		AdminName: "system",
	}); err != nil {
		return nil, err
	}

	observability.SolveSubmissions.WithLabelValues("solved").Inc()
	return &SubmitFlagResult{Correct: true, PointsAwarded: challenge.Points}, nil
}

// Solves returns a user's recorded solves, newest first.
func (s *ContestService) Solves(ctx context.Context, userID uint, limit, offset int) ([]models.Solve, error) {
	return s.contestRepo.ListSolvesByUser(ctx, userID, limit, offset)
}
