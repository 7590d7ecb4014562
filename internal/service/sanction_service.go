package service

import (
	"context"
	"time"

	"hackarena/internal/cache"
	"hackarena/internal/middleware"
	"hackarena/internal/models"
	"hackarena/internal/observability"
	"hackarena/internal/repository"
)

// SanctionService applies and revokes disciplinary sanctions and keeps the
// user's status column consistent with the set of sanctions in effect.
type SanctionService struct {
	sanctionRepo repository.SanctionRepository
	userRepo     repository.UserRepository
}

// ApplySanctionInput describes a new sanction.
type ApplySanctionInput struct {
	UserID    uint
	Type      models.SanctionType
	Reason    string
	ExpiresAt *time.Time
	AdminID   uint
	AdminName string
}

// NewSanctionService returns a new SanctionService.
func NewSanctionService(sanctionRepo repository.SanctionRepository, userRepo repository.UserRepository) *SanctionService {
	return &SanctionService{sanctionRepo: sanctionRepo, userRepo: userRepo}
}

// Apply records a sanction against a user and recomputes their status.
// Admins cannot be sanctioned; demote first.
func (s *SanctionService) Apply(ctx context.Context, in ApplySanctionInput) (*models.Sanction, error) {
	switch in.Type {
	case models.SanctionWarning, models.SanctionRestriction, models.SanctionSuspension, models.SanctionBan:
	default:
		return nil, models.NewValidationError("Unknown sanction type")
	}
	if in.Reason == "" {
		return nil, models.NewValidationError("Sanction reason is required")
	}
	if in.ExpiresAt != nil && !in.ExpiresAt.After(time.Now()) {
		return nil, models.NewValidationError("Sanction expiry must be in the future")
	}

	target, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if target.IsAdmin() {
		return nil, models.NewForbiddenError("Cannot sanction an admin account")
	}

	sanction := &models.Sanction{
		UserID:      in.UserID,
		Type:        in.Type,
		Reason:      in.Reason,
		AppliedBy:   in.AdminID,
		AppliedName: in.AdminName,
		IsActive:    true,
		ExpiresAt:   in.ExpiresAt,
	}
	if err := s.sanctionRepo.Create(ctx, sanction); err != nil {
		return nil, err
	}

	if err := s.RecomputeStatus(ctx, in.UserID); err != nil {
		return nil, err
	}
	return sanction, nil
}

// Revoke deactivates a sanction and recomputes the user's status. The status
// falls back to whatever the remaining active sanctions imply, not
// automatically to active.
func (s *SanctionService) Revoke(ctx context.Context, sanctionID, adminID uint) (*models.Sanction, error) {
	sanction, err := s.sanctionRepo.GetByID(ctx, sanctionID)
	if err != nil {
		return nil, err
	}
	if !sanction.IsActive {
		return nil, models.NewValidationError("Sanction is already inactive")
	}

	now := time.Now()
	sanction.IsActive = false
	sanction.RevokedBy = &adminID
	sanction.RevokedAt = &now
	if err := s.sanctionRepo.Update(ctx, sanction); err != nil {
		return nil, err
	}

	if err := s.RecomputeStatus(ctx, sanction.UserID); err != nil {
		return nil, err
	}
	return sanction, nil
}

// ListForUser returns all sanctions on record for a user, newest first.
func (s *SanctionService) ListForUser(ctx context.Context, userID uint) ([]models.Sanction, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.sanctionRepo.ListByUser(ctx, userID)
}

// RecomputeStatus rederives a user's status from their active sanctions.
func (s *SanctionService) RecomputeStatus(ctx context.Context, userID uint) error {
	sanctions, err := s.sanctionRepo.ListActiveByUser(ctx, userID)
	if err != nil {
		return err
	}
	status := models.StatusFromSanctions(sanctions, time.Now())
	if err := s.userRepo.UpdateStatus(ctx, userID, status); err != nil {
		return err
	}
	cache.InvalidateUser(ctx, userID)
	return nil
}

// SweepExpired deactivates sanctions past their expiry and recomputes status
// for every affected user. Called periodically by the scheduler; expiry is
// also honored lazily at read time, so the sweep only reconciles stored state.
func (s *SanctionService) SweepExpired(ctx context.Context) (int, error) {
	userIDs, err := s.sanctionRepo.ExpireDue(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	for _, id := range userIDs {
		if err := s.RecomputeStatus(ctx, id); err != nil {
			middleware.Logger.Error("failed to recompute status after sanction expiry",
				"user_id", id, "error", err)
		}
	}
	if len(userIDs) > 0 {
		observability.SanctionsSwept.Add(float64(len(userIDs)))
	}
	return len(userIDs), nil
}
