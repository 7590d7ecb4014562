// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"hackarena/internal/featureflags"
	"hackarena/internal/models"
	"hackarena/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetCurricula handles GET /api/curricula
func (s *Server) GetCurricula(c *fiber.Ctx) error {
	page := parsePagination(c, 20)

	curricula, err := s.curriculumService.List(c.Context(), page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(curricula)
}

// GetCurriculum handles GET /api/curricula/:id
func (s *Server) GetCurriculum(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	curriculum, err := s.curriculumService.Get(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(curriculum)
}

// CompleteCurriculumUnit handles POST /api/curricula/:id/complete-unit
func (s *Server) CompleteCurriculumUnit(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	if err := s.requireFeature(c, featureflags.FlagCurriculum, userID); err != nil {
		return nil
	}

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	progress, err := s.curriculumService.CompleteUnit(c.Context(), id, userID)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(progress)
}

// GetMyProgress handles GET /api/users/me/progress
func (s *Server) GetMyProgress(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	progress, err := s.curriculumService.Progress(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(progress)
}

// CreateCurriculum handles POST /api/admin/curricula
func (s *Server) CreateCurriculum(c *fiber.Ctx) error {
	var req struct {
		Title         string `json:"title"`
		Description   string `json:"description"`
		Units         int    `json:"units"`
		PointsPerUnit int    `json:"points_per_unit"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	curriculum, err := s.curriculumService.Create(c.Context(), service.CreateCurriculumInput{
		Title:         req.Title,
		Description:   req.Description,
		Units:         req.Units,
		PointsPerUnit: req.PointsPerUnit,
	})
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(curriculum)
}
