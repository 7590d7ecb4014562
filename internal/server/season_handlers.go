// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"time"

	"hackarena/internal/featureflags"
	"hackarena/internal/models"
	"hackarena/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetSeasons handles GET /api/seasons
func (s *Server) GetSeasons(c *fiber.Ctx) error {
	page := parsePagination(c, 20)

	seasons, err := s.seasonService.ListSeasons(c.Context(), page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(seasons)
}

// GetActiveSeason handles GET /api/seasons/active
func (s *Server) GetActiveSeason(c *fiber.Ctx) error {
	season, err := s.seasonService.ActiveSeason(c.Context())
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}
	if season == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Active season", "current"))
	}

	return c.JSON(season)
}

// GetSeason handles GET /api/seasons/:id
func (s *Server) GetSeason(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	season, err := s.seasonService.GetSeason(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(season)
}

// GetSeasonLeaderboard handles GET /api/seasons/:id/leaderboard
func (s *Server) GetSeasonLeaderboard(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page := parsePagination(c, 20)

	board, err := s.seasonService.Leaderboard(c.Context(), id, page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(board)
}

// JoinSeason handles POST /api/seasons/:id/join
func (s *Server) JoinSeason(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	if err := s.requireFeature(c, featureflags.FlagSeasons, userID); err != nil {
		return nil
	}

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if joinErr := s.seasonService.Join(c.Context(), id, userID); joinErr != nil {
		return models.RespondWithError(c, mapServiceError(joinErr), joinErr)
	}

	return c.JSON(fiber.Map{"message": "Joined season"})
}

// CreateSeason handles POST /api/admin/seasons
func (s *Server) CreateSeason(c *fiber.Ctx) error {
	var req struct {
		Name        string                `json:"name"`
		Description string                `json:"description"`
		StartsAt    time.Time             `json:"starts_at"`
		EndsAt      *time.Time            `json:"ends_at"`
		Settings    models.SeasonSettings `json:"settings"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	season, err := s.seasonService.CreateSeason(c.Context(), service.CreateSeasonInput{
		Name:        req.Name,
		Description: req.Description,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		Settings:    req.Settings,
	})
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(season)
}

// ActivateSeason handles POST /api/admin/seasons/:id/activate
// When the season is configured to reset scores on start, the response carries
// the reset run so the caller can poll its progress.
func (s *Server) ActivateSeason(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	season, run, err := s.seasonService.ActivateSeason(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	resp := fiber.Map{"message": "Season activated", "season": season}
	if run != nil {
		resp["reset_run"] = run
	}
	return c.JSON(resp)
}

// EndSeason handles POST /api/admin/seasons/:id/end
func (s *Server) EndSeason(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	season, err := s.seasonService.EndSeason(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{"message": "Season ended", "season": season})
}

// RecalculateSeasonRankings handles POST /api/admin/seasons/:id/recalculate
func (s *Server) RecalculateSeasonRankings(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if recalcErr := s.seasonService.RecalculateRankings(c.Context(), id); recalcErr != nil {
		return models.RespondWithError(c, mapServiceError(recalcErr), recalcErr)
	}

	return c.JSON(fiber.Map{"message": "Season rankings recalculated"})
}

// StartSeasonReset handles POST /api/admin/seasons/:id/reset
func (s *Server) StartSeasonReset(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	run, err := s.seasonService.StartReset(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.Status(fiber.StatusAccepted).JSON(run)
}

// GetResetStatus handles GET /api/admin/seasons/resets/:runId
func (s *Server) GetResetStatus(c *fiber.Ctx) error {
	runID := c.Params("runId")
	if runID == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid run ID"))
	}

	run, err := s.seasonService.ResetStatus(c.Context(), runID)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(run)
}

// ResumeSeasonReset handles POST /api/admin/seasons/resets/:runId/resume
// Only failed runs can be resumed; they pick up from the stored cursor.
func (s *Server) ResumeSeasonReset(c *fiber.Ctx) error {
	runID := c.Params("runId")
	if runID == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid run ID"))
	}

	run, err := s.seasonService.ResumeReset(c.Context(), runID)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.Status(fiber.StatusAccepted).JSON(run)
}
