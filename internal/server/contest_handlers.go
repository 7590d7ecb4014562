// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"time"

	"hackarena/internal/featureflags"
	"hackarena/internal/models"
	"hackarena/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetContests handles GET /api/contests?category=ctf|wargame
func (s *Server) GetContests(c *fiber.Ctx) error {
	page := parsePagination(c, 20)
	category := models.ContestCategory(c.Query("category"))

	contests, err := s.contestService.ListContests(c.Context(), category, page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(contests)
}

// GetContest handles GET /api/contests/:id
func (s *Server) GetContest(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	contest, err := s.contestService.GetContest(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(contest)
}

// GetContestChallenges handles GET /api/contests/:id/challenges
// Flag hashes never leave the database model's JSON encoding.
func (s *Server) GetContestChallenges(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	challenges, err := s.contestRepo.ListChallenges(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(challenges)
}

// JoinContest handles POST /api/contests/:id/join
func (s *Server) JoinContest(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	if err := s.requireFeature(c, featureflags.FlagContests, userID); err != nil {
		return nil
	}

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if joinErr := s.contestService.Join(c.Context(), id, userID); joinErr != nil {
		return models.RespondWithError(c, mapServiceError(joinErr), joinErr)
	}

	return c.JSON(fiber.Map{"message": "Joined contest"})
}

// SubmitFlag handles POST /api/challenges/:id/submit
func (s *Server) SubmitFlag(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	if err := s.requireFeature(c, featureflags.FlagContests, userID); err != nil {
		return nil
	}
	if err := s.requireGoodStanding(c, userID); err != nil {
		return nil
	}

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Flag string `json:"flag"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	result, err := s.contestService.SubmitFlag(c.Context(), id, userID, req.Flag)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(result)
}

// GetMySolves handles GET /api/users/me/solves
func (s *Server) GetMySolves(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	page := parsePagination(c, 20)

	solves, err := s.contestService.Solves(c.Context(), userID, page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(solves)
}

// CreateContest handles POST /api/admin/contests
func (s *Server) CreateContest(c *fiber.Ctx) error {
	adminID := c.Locals("userID").(uint)

	var req struct {
		Title       string                 `json:"title"`
		Description string                 `json:"description"`
		Category    models.ContestCategory `json:"category"`
		StartsAt    *time.Time             `json:"starts_at"`
		EndsAt      *time.Time             `json:"ends_at"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	contest, err := s.contestService.CreateContest(c.Context(), service.CreateContestInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		CreatedBy:   adminID,
	})
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(contest)
}

// CreateChallenge handles POST /api/admin/contests/:id/challenges
// The plaintext flag is hashed by the service and never stored or echoed.
func (s *Server) CreateChallenge(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Title  string `json:"title"`
		Points int    `json:"points"`
		Flag   string `json:"flag"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	challenge, err := s.contestService.CreateChallenge(c.Context(), service.CreateChallengeInput{
		ContestID: id,
		Title:     req.Title,
		Points:    req.Points,
		Flag:      req.Flag,
	})
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(challenge)
}
