// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"hackarena/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetActiveBanners handles GET /api/banners
// Served from cache; the repository invalidates on every banner mutation.
func (s *Server) GetActiveBanners(c *fiber.Ctx) error {
	banners, err := s.bannerRepo.ListActive(c.Context())
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(banners)
}

// GetAllBanners handles GET /api/admin/banners
func (s *Server) GetAllBanners(c *fiber.Ctx) error {
	page := parsePagination(c, 50)

	banners, err := s.bannerRepo.List(c.Context(), page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(banners)
}

// CreateBanner handles POST /api/admin/banners
func (s *Server) CreateBanner(c *fiber.Ctx) error {
	var req struct {
		Title    string `json:"title"`
		ImageURL string `json:"image_url"`
		LinkURL  string `json:"link_url"`
		IsActive *bool  `json:"is_active"`
		Position int    `json:"position"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Title == "" || req.ImageURL == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Banner title and image URL are required"))
	}

	banner := &models.Banner{
		Title:    req.Title,
		ImageURL: req.ImageURL,
		LinkURL:  req.LinkURL,
		IsActive: true,
		Position: req.Position,
	}
	if req.IsActive != nil {
		banner.IsActive = *req.IsActive
	}

	if err := s.bannerRepo.Create(c.Context(), banner); err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(banner)
}

// UpdateBanner handles PUT /api/admin/banners/:id
func (s *Server) UpdateBanner(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	banner, err := s.bannerRepo.GetByID(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	var req struct {
		Title    *string `json:"title"`
		ImageURL *string `json:"image_url"`
		LinkURL  *string `json:"link_url"`
		IsActive *bool   `json:"is_active"`
		Position *int    `json:"position"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if req.Title != nil {
		banner.Title = *req.Title
	}
	if req.ImageURL != nil {
		banner.ImageURL = *req.ImageURL
	}
	if req.LinkURL != nil {
		banner.LinkURL = *req.LinkURL
	}
	if req.IsActive != nil {
		banner.IsActive = *req.IsActive
	}
	if req.Position != nil {
		banner.Position = *req.Position
	}

	if updateErr := s.bannerRepo.Update(c.Context(), banner); updateErr != nil {
		return models.RespondWithError(c, mapServiceError(updateErr), updateErr)
	}

	return c.JSON(banner)
}

// DeleteBanner handles DELETE /api/admin/banners/:id
func (s *Server) DeleteBanner(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if delErr := s.bannerRepo.Delete(c.Context(), id); delErr != nil {
		return models.RespondWithError(c, mapServiceError(delErr), delErr)
	}

	return c.JSON(fiber.Map{"message": "Banner deleted"})
}
