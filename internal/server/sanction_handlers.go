// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"time"

	"hackarena/internal/models"
	"hackarena/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ApplySanction handles POST /api/admin/sanctions
// Admin check is enforced by AdminRequired middleware on the route.
func (s *Server) ApplySanction(c *fiber.Ctx) error {
	ctx := c.Context()
	adminID := c.Locals("userID").(uint)

	var req struct {
		UserID    uint                `json:"user_id"`
		Type      models.SanctionType `json:"type"`
		Reason    string              `json:"reason"`
		ExpiresAt *time.Time          `json:"expires_at"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.UserID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("user_id is required"))
	}

	sanction, err := s.sanctionService.Apply(ctx, service.ApplySanctionInput{
		UserID:    req.UserID,
		Type:      req.Type,
		Reason:    req.Reason,
		ExpiresAt: req.ExpiresAt,
		AdminID:   adminID,
		AdminName: s.adminName(ctx, adminID),
	})
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(sanction)
}

// RevokeSanction handles POST /api/admin/sanctions/:id/revoke
func (s *Server) RevokeSanction(c *fiber.Ctx) error {
	adminID := c.Locals("userID").(uint)

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	sanction, err := s.sanctionService.Revoke(c.Context(), id, adminID)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{"message": "Sanction revoked", "sanction": sanction})
}

// GetUserSanctions handles GET /api/admin/users/:id/sanctions
func (s *Server) GetUserSanctions(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	sanctions, err := s.sanctionService.ListForUser(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(sanctions)
}

// GetMySanctions handles GET /api/users/me/sanctions
func (s *Server) GetMySanctions(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	sanctions, err := s.sanctionService.ListForUser(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(sanctions)
}
