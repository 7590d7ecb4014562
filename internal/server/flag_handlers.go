package server

import (
	"github.com/gofiber/fiber/v2"

	"hackarena/internal/featureflags"
)

// GetFeatureFlags returns the configured kill-switch values plus the
// effective state of each module flag for the calling admin.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(uint)

	raw := map[string]string{}
	modules := map[string]bool{
		featureflags.FlagCommunity:  true,
		featureflags.FlagContests:   true,
		featureflags.FlagCurriculum: true,
		featureflags.FlagSeasons:    true,
	}
	if s.featureFlags != nil {
		raw = s.featureFlags.Raw()
		for name := range modules {
			modules[name] = s.featureFlags.EnabledOrDefault(name, userID, true)
		}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"configured": raw,
		"modules":    modules,
	})
}
