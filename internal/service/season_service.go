package service

import (
	"context"
	"time"

	"hackarena/internal/cache"
	"hackarena/internal/middleware"
	"hackarena/internal/models"
	"hackarena/internal/observability"
	"hackarena/internal/repository"
	"hackarena/internal/scoring"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SeasonService manages the season lifecycle: creation, activation, ending,
// ranking snapshots, and bulk score resets.
type SeasonService struct {
	db          *gorm.DB
	seasonRepo  repository.SeasonRepository
	rankingRepo repository.RankingRepository
	tiers       *scoring.TierTable
	batchSize   int

	// async controls whether StartReset processes the run in a goroutine.
	// Tests set it false to run inline.
	async bool
}

// CreateSeasonInput describes a new season.
type CreateSeasonInput struct {
	Name        string
	Description string
	StartsAt    time.Time
	EndsAt      *time.Time
	Settings    models.SeasonSettings
}

// NewSeasonService returns a new SeasonService.
func NewSeasonService(db *gorm.DB, seasonRepo repository.SeasonRepository, rankingRepo repository.RankingRepository, tiers *scoring.TierTable, batchSize int) *SeasonService {
	if tiers == nil {
		tiers = scoring.DefaultTierTable()
	}
	if batchSize < 1 {
		batchSize = 500
	}
	return &SeasonService{
		db:          db,
		seasonRepo:  seasonRepo,
		rankingRepo: rankingRepo,
		tiers:       tiers,
		batchSize:   batchSize,
		async:       true,
	}
}

// CreateSeason records a new planned season.
func (s *SeasonService) CreateSeason(ctx context.Context, in CreateSeasonInput) (*models.Season, error) {
	if in.Name == "" {
		return nil, models.NewValidationError("Season name is required")
	}
	if in.StartsAt.IsZero() {
		return nil, models.NewValidationError("Season start time is required")
	}
	if in.EndsAt != nil && !in.EndsAt.After(in.StartsAt) {
		return nil, models.NewValidationError("Season end must be after its start")
	}

	season := &models.Season{
		Name:        in.Name,
		Description: in.Description,
		StartsAt:    in.StartsAt,
		EndsAt:      in.EndsAt,
		State:       models.SeasonPlanned,
		Settings:    in.Settings,
	}
	if err := s.seasonRepo.Create(ctx, season); err != nil {
		return nil, err
	}
	return season, nil
}

// ActivateSeason transitions a planned season to active. At most one season
// may be active; activating while another season runs is a conflict, never a
// silent takeover. When the season is configured to reset scores on start, a
// reset run is launched and returned alongside the season.
func (s *SeasonService) ActivateSeason(ctx context.Context, id uint) (*models.Season, *models.SeasonResetRun, error) {
	season, err := s.seasonRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if season.State != models.SeasonPlanned {
		return nil, nil, models.NewValidationError("Only a planned season can be activated")
	}

	active, err := s.seasonRepo.GetActive(ctx)
	if err != nil {
		return nil, nil, err
	}
	if active != nil && active.ID != id {
		return nil, nil, models.NewConflictError("Another season is already active")
	}

	season.State = models.SeasonActive
	season.IsActive = true
	if err := s.seasonRepo.Update(ctx, season); err != nil {
		return nil, nil, err
	}

	var run *models.SeasonResetRun
	if season.Settings.ResetScoresOnStart {
		run, err = s.StartReset(ctx, season.ID)
		if err != nil {
			return nil, nil, err
		}
	}

	cache.InvalidateSeasonBoard(ctx, season.ID)
	return season, run, nil
}

// EndSeason closes the active season and takes a final ranking snapshot.
func (s *SeasonService) EndSeason(ctx context.Context, id uint) (*models.Season, error) {
	season, err := s.seasonRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if season.State != models.SeasonActive {
		return nil, models.NewValidationError("Only an active season can be ended")
	}

	if err := s.RecalculateRankings(ctx, id); err != nil {
		return nil, err
	}

	now := time.Now()
	season.State = models.SeasonEnded
	season.IsActive = false
	season.EndsAt = &now
	if err := s.seasonRepo.Update(ctx, season); err != nil {
		return nil, err
	}

	cache.InvalidateSeasonBoard(ctx, season.ID)
	return season, nil
}

// GetSeason returns one season by id.
func (s *SeasonService) GetSeason(ctx context.Context, id uint) (*models.Season, error) {
	return s.seasonRepo.GetByID(ctx, id)
}

// ActiveSeason returns the currently active season, or nil when none is.
func (s *SeasonService) ActiveSeason(ctx context.Context) (*models.Season, error) {
	return s.seasonRepo.GetActive(ctx)
}

// ListSeasons returns seasons newest first.
func (s *SeasonService) ListSeasons(ctx context.Context, limit, offset int) ([]models.Season, error) {
	return s.seasonRepo.List(ctx, limit, offset)
}

// Join registers a user in a season that requires registration.
func (s *SeasonService) Join(ctx context.Context, seasonID, userID uint) error {
	season, err := s.seasonRepo.GetByID(ctx, seasonID)
	if err != nil {
		return err
	}
	if season.State == models.SeasonEnded {
		return models.NewValidationError("Season has ended")
	}
	return s.seasonRepo.UpsertParticipant(ctx, &models.SeasonParticipant{
		SeasonID: seasonID,
		UserID:   userID,
		JoinedAt: time.Now(),
	})
}

// Leaderboard returns the season's participant snapshot ordered by rank.
func (s *SeasonService) Leaderboard(ctx context.Context, seasonID uint, limit, offset int) ([]models.SeasonParticipant, error) {
	if _, err := s.seasonRepo.GetByID(ctx, seasonID); err != nil {
		return nil, err
	}
	return s.seasonRepo.ListParticipants(ctx, seasonID, limit, offset)
}

// RecalculateRankings rebuilds the season's participant snapshot from the
// current canonical leaderboard and refreshes the aggregate fields.
func (s *SeasonService) RecalculateRankings(ctx context.Context, seasonID uint) error {
	season, err := s.seasonRepo.GetByID(ctx, seasonID)
	if err != nil {
		return err
	}

	// When the season requires registration, only registered users enter the
	// snapshot and ranks count within that set.
	var members map[uint]bool
	if season.Settings.RequiresRegistration {
		members = make(map[uint]bool)
		for memberOffset := 0; ; memberOffset += s.batchSize {
			participants, err := s.seasonRepo.ListParticipants(ctx, seasonID, s.batchSize, memberOffset)
			if err != nil {
				return err
			}
			if len(participants) == 0 {
				break
			}
			for _, p := range participants {
				members[p.UserID] = true
			}
		}
	}

	var (
		rank        int64
		scoreSum    int64
		topScore    int
		snapshotted int
	)
	offset := 0
	for {
		users, err := s.rankingRepo.ListByScore(ctx, s.batchSize, offset)
		if err != nil {
			return err
		}
		if len(users) == 0 {
			break
		}
		for i := range users {
			u := &users[i]
			if members != nil && !members[u.ID] {
				continue
			}
			rank++
			if err := s.seasonRepo.UpsertParticipant(ctx, &models.SeasonParticipant{
				SeasonID: seasonID,
				UserID:   u.ID,
				Score:    u.Points,
				Rank:     int(rank),
				JoinedAt: time.Now(),
			}); err != nil {
				return err
			}
			scoreSum += int64(u.Points)
			if u.Points > topScore {
				topScore = u.Points
			}
			snapshotted++
		}
		offset += len(users)
	}

	var solveCount int64
	q := s.db.WithContext(ctx).Model(&models.Solve{}).Where("created_at >= ?", season.StartsAt)
	if season.EndsAt != nil {
		q = q.Where("created_at <= ?", *season.EndsAt)
	}
	if err := q.Count(&solveCount).Error; err != nil {
		return models.NewInternalError(err)
	}

	season.ParticipantCount = snapshotted
	season.SolveCount = int(solveCount)
	season.TopScore = topScore
	if snapshotted > 0 {
		season.AverageScore = float64(scoreSum) / float64(snapshotted)
	} else {
		season.AverageScore = 0
	}
	if err := s.seasonRepo.Update(ctx, season); err != nil {
		return err
	}

	cache.InvalidateSeasonBoard(ctx, seasonID)
	return nil
}

// StartReset begins a batched reset of all user scores for the given season
// and returns the tracking run. The reset proceeds in id-ordered batches with
// its cursor persisted after every batch, so a crashed run resumes from where
// it stopped instead of starting over or silently leaving half the users
// reset.
func (s *SeasonService) StartReset(ctx context.Context, seasonID uint) (*models.SeasonResetRun, error) {
	ctx, span := observability.TraceServiceCall(ctx, "SeasonService", "StartReset")
	defer span.End()

	if _, err := s.seasonRepo.GetByID(ctx, seasonID); err != nil {
		return nil, err
	}

	latest, err := s.seasonRepo.GetLatestResetRun(ctx, seasonID)
	if err != nil {
		return nil, err
	}
	if latest != nil && latest.Status == models.ResetRunning {
		return nil, models.NewConflictError("A reset run is already in progress for this season")
	}

	total, err := s.rankingRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	run := &models.SeasonResetRun{
		RunID:      uuid.NewString(),
		SeasonID:   seasonID,
		Status:     models.ResetRunning,
		TotalUsers: total,
		StartedAt:  time.Now(),
	}
	if err := s.seasonRepo.CreateResetRun(ctx, run); err != nil {
		return nil, err
	}

	if s.async {
		go s.runReset(context.Background(), run)
	} else {
		s.runReset(ctx, run)
	}
	return run, nil
}

// ResumeReset continues a failed reset run from its persisted cursor.
func (s *SeasonService) ResumeReset(ctx context.Context, runID string) (*models.SeasonResetRun, error) {
	run, err := s.seasonRepo.GetResetRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	if run.Status != models.ResetFailed {
		return nil, models.NewValidationError("Only a failed reset run can be resumed")
	}

	run.Status = models.ResetRunning
	run.Error = ""
	if err := s.seasonRepo.UpdateResetRun(ctx, run); err != nil {
		return nil, err
	}

	if s.async {
		go s.runReset(context.Background(), run)
	} else {
		s.runReset(ctx, run)
	}
	return run, nil
}

// ResetStatus returns the tracking record for a reset run.
func (s *SeasonService) ResetStatus(ctx context.Context, runID string) (*models.SeasonResetRun, error) {
	return s.seasonRepo.GetResetRun(ctx, runID)
}

func (s *SeasonService) runReset(ctx context.Context, run *models.SeasonResetRun) {
	for {
		done, err := s.resetBatch(ctx, run)
		if err != nil {
			observability.SeasonResetBatches.WithLabelValues("failure").Inc()
			run.Status = models.ResetFailed
			run.Error = err.Error()
			if saveErr := s.seasonRepo.UpdateResetRun(ctx, run); saveErr != nil {
				middleware.Logger.Error("failed to record reset run failure",
					"run_id", run.RunID, "error", saveErr)
			}
			middleware.Logger.Error("season reset run failed",
				"run_id", run.RunID, "season_id", run.SeasonID,
				"processed", run.ProcessedUsers, "error", err)
			return
		}
		observability.SeasonResetBatches.WithLabelValues("success").Inc()
		if done {
			break
		}
	}

	now := time.Now()
	run.Status = models.ResetCompleted
	run.FinishedAt = &now
	if err := s.seasonRepo.UpdateResetRun(ctx, run); err != nil {
		middleware.Logger.Error("failed to record reset run completion",
			"run_id", run.RunID, "error", err)
		return
	}

	cache.InvalidateRankingPages(ctx)
	middleware.Logger.Info("season reset run completed",
		"run_id", run.RunID, "season_id", run.SeasonID, "processed", run.ProcessedUsers)
}

// resetBatch zeroes scores for the next batch of users above the cursor and
// advances the run. Returns done=true when no users remain.
func (s *SeasonService) resetBatch(ctx context.Context, run *models.SeasonResetRun) (bool, error) {
	var ids []uint
	err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id > ?", run.LastUserID).
		Order("id ASC").
		Limit(s.batchSize).
		Pluck("id", &ids).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	if len(ids) == 0 {
		return true, nil
	}

	lowest := s.tiers.Lowest()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Model(&models.User{}).
			Where("id IN ?", ids).
			Updates(map[string]interface{}{
				"points":           0,
				"wargame_score":    0,
				"ctf_score":        0,
				"curriculum_score": 0,
				"bonus_points":     0,
				"level":            scoring.Level(0),
				"tier":             lowest,
				"version":          gorm.Expr("version + 1"),
			}).Error
	})
	if err != nil {
		return false, models.NewInternalError(err)
	}

	for _, id := range ids {
		cache.InvalidateUser(ctx, id)
	}

	run.ProcessedUsers += int64(len(ids))
	run.LastUserID = ids[len(ids)-1]
	if err := s.seasonRepo.UpdateResetRun(ctx, run); err != nil {
		return false, err
	}
	return len(ids) < s.batchSize, nil
}
