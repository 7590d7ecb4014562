// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"strings"

	"hackarena/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetRankings handles GET /api/rankings?page=&page_size=
func (s *Server) GetRankings(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	pageSize := c.QueryInt("page_size", 20)

	board, err := s.rankingService.Page(c.Context(), page, pageSize)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(board)
}

// SearchRankings handles GET /api/rankings/search?q=
// Results carry each user's global rank, so a partial-name search shows the
// same positions as the browse pages.
func (s *Server) SearchRankings(c *fiber.Ctx) error {
	q := strings.TrimSpace(c.Query("q"))
	page := parsePagination(c, 20)

	results, err := s.rankingService.Search(c.Context(), q, page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(results)
}

// GetRankedUser handles GET /api/rankings/:username
func (s *Server) GetRankedUser(c *fiber.Ctx) error {
	username := c.Params("username")

	ranked, err := s.rankingService.Find(c.Context(), username)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(ranked)
}
