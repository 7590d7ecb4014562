// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"hackarena/internal/models"
	"hackarena/internal/service"

	"github.com/gofiber/fiber/v2"
)

// AdjustScore handles POST /api/admin/users/:id/score
// Admin check is enforced by AdminRequired middleware on the route.
func (s *Server) AdjustScore(c *fiber.Ctx) error {
	ctx := c.Context()
	adminID := c.Locals("userID").(uint)

	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Category models.ScoreCategory `json:"category"`
		Delta    int                  `json:"delta"`
		Reason   string               `json:"reason"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.scoreService.AdjustScore(ctx, service.AdjustScoreInput{
		UserID:    targetID,
		Category:  req.Category,
		Delta:     req.Delta,
		Reason:    req.Reason,
		AdminID:   adminID,
		AdminName: s.adminName(ctx, adminID),
	})
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{"message": "Score adjusted", "user": user})
}

// GetMyScoreHistory handles GET /api/users/me/history
func (s *Server) GetMyScoreHistory(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	return s.respondScoreHistory(c, userID)
}

// GetScoreHistory handles GET /api/users/:id/history
// Users may read their own history; anyone else's requires admin.
func (s *Server) GetScoreHistory(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if targetID != userID {
		admin, adminErr := s.isAdmin(c, userID)
		if adminErr != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, adminErr)
		}
		if !admin {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Cannot read another user's score history"))
		}
	}

	return s.respondScoreHistory(c, targetID)
}

func (s *Server) respondScoreHistory(c *fiber.Ctx, userID uint) error {
	page := parsePagination(c, 20)

	entries, total, err := s.scoreService.History(c.Context(), userID, page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{
		"entries": entries,
		"total":   total,
		"limit":   page.Limit,
		"offset":  page.Offset,
	})
}
