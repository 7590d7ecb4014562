// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"

	"hackarena/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper.  Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// Pagination holds parsed limit/offset query parameters.
type Pagination struct {
	Limit  int
	Offset int
}

const (
	maxPaginationLimit = 100
)

// parsePagination extracts limit and offset query parameters with the given default limit.
func parsePagination(c *fiber.Ctx, defaultLimit int) Pagination {
	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}

	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	return Pagination{
		Limit:  limit,
		Offset: offset,
	}
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
// The error message is derived from the parameter name (e.g. "id" -> "Invalid ID",
// "userId" -> "Invalid user ID", "challengeId" -> "Invalid challenge ID").
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam converts a route param name into a human-readable label.
// Examples: "id" -> "ID", "userId" -> "user ID", "challengeId" -> "challenge ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	// Split on camelCase boundary before the trailing "Id" suffix.
	if strings.HasSuffix(param, "Id") {
		prefix := param[:len(param)-2]
		words := splitCamel(prefix)
		return strings.ToLower(strings.Join(words, " ")) + " ID"
	}
	return param
}

// splitCamel splits a camelCase string into words.
func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	words = append(words, s[start:])
	return words
}

// mapServiceError translates a service-layer error into an HTTP status.
// Services return *models.AppError with a machine-readable code; anything
// else is treated as an internal error.
func mapServiceError(err error) int {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		return fiber.StatusInternalServerError
	}
	switch appErr.Code {
	case "NOT_FOUND":
		return fiber.StatusNotFound
	case "VALIDATION_ERROR":
		return fiber.StatusBadRequest
	case "UNAUTHORIZED":
		return fiber.StatusUnauthorized
	case "FORBIDDEN":
		return fiber.StatusForbidden
	case "CONFLICT":
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// isAdmin checks whether the given user has admin privileges.
func (s *Server) isAdmin(c *fiber.Ctx, userID uint) (bool, error) {
	return s.isAdminByUserID(c.Context(), userID)
}

func (s *Server) isAdminByUserID(ctx context.Context, userID uint) (bool, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Select("role").First(&user, userID).Error; err != nil {
		return false, err
	}
	return user.IsAdmin(), nil
}

// roleByUserID reads the caller's role for checks finer than admin/non-admin.
func (s *Server) roleByUserID(ctx context.Context, userID uint) (models.UserRole, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Select("role").First(&user, userID).Error; err != nil {
		return "", err
	}
	return user.Role, nil
}

// statusByUserID returns the account standing derived from active sanctions.
func (s *Server) statusByUserID(ctx context.Context, userID uint) (models.UserStatus, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Select("status").First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", models.NewNotFoundError("User", userID)
		}
		return "", err
	}
	return user.Status, nil
}

// requireGoodStanding writes a 403 when the user is restricted or worse.
// Use it on write endpoints that a restriction sanction is meant to block.
func (s *Server) requireGoodStanding(c *fiber.Ctx, userID uint) error {
	status, err := s.statusByUserID(c.Context(), userID)
	if err != nil {
		_ = models.RespondWithError(c, fiber.StatusInternalServerError, err)
		return errResponseWritten
	}
	if status != models.StatusActive {
		_ = models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("Account is "+string(status)))
		return errResponseWritten
	}
	return nil
}

// requireFeature blocks the request when the named module kill-switch is
// off. Flags default to enabled so an empty FEATURE_FLAGS config changes
// nothing.
func (s *Server) requireFeature(c *fiber.Ctx, flag string, userID uint) error {
	if s.featureFlags == nil {
		return nil
	}
	if !s.featureFlags.EnabledOrDefault(flag, userID, true) {
		_ = models.RespondWithError(c, fiber.StatusServiceUnavailable,
			&models.AppError{Code: "FEATURE_DISABLED", Message: "This feature is temporarily disabled"})
		return errResponseWritten
	}
	return nil
}

// adminName resolves the display identity used for audit entries.
func (s *Server) adminName(ctx context.Context, adminID uint) string {
	var user models.User
	if err := s.db.WithContext(ctx).Select("username").First(&user, adminID).Error; err != nil {
		return ""
	}
	return user.Username
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
