package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"hackarena/internal/models"
	"hackarena/internal/repository"
	"hackarena/internal/scoring"
	"hackarena/internal/service"
	"hackarena/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newScoreTestServer wires a Server against an in-memory database with one
// admin (id 1) and one regular member (id 2).
func newScoreTestServer(t *testing.T) (*Server, *gorm.DB) {
	t.Helper()
	db := testutil.OpenTestDB(t)

	admin := &models.User{
		Username: "overlord", Email: "overlord@example.com", Password: "x",
		Role: models.RoleAdmin, Status: models.StatusActive, Level: 1, Tier: "Bronze",
	}
	member := &models.User{
		Username: "player", Email: "player@example.com", Password: "x",
		Role: models.RoleUser, Status: models.StatusActive, Level: 1, Tier: "Bronze",
	}
	require.NoError(t, db.Create(admin).Error)
	require.NoError(t, db.Create(member).Error)

	historyRepo := repository.NewScoreHistoryRepository(db)
	s := &Server{
		db:           db,
		scoreService: service.NewScoreService(db, historyRepo, scoring.DefaultTierTable()),
	}
	return s, db
}

// asUser injects a fixed authenticated user, standing in for AuthRequired.
func asUser(userID uint) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("userID", userID)
		return c.Next()
	}
}

func TestAdjustScore_Handler(t *testing.T) {
	s, db := newScoreTestServer(t)

	app := fiber.New()
	app.Post("/admin/users/:id/score", asUser(1), s.AdjustScore)

	req := httptest.NewRequest(http.MethodPost, "/admin/users/2/score",
		jsonBody(t, map[string]any{"category": "ctf", "delta": 150, "reason": "Manual award"}))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var target models.User
	require.NoError(t, db.First(&target, 2).Error)
	assert.Equal(t, 150, target.CtfScore)
	assert.Equal(t, 150, target.Points)

	var entry models.ScoreHistory
	require.NoError(t, db.Where("user_id = ?", 2).First(&entry).Error)
	assert.Equal(t, "Manual award", entry.Reason)
	assert.Equal(t, uint(1), entry.AdminID)
	assert.Equal(t, "overlord", entry.AdminName)
}

func TestAdjustScore_Handler_Validation(t *testing.T) {
	s, _ := newScoreTestServer(t)

	app := fiber.New()
	app.Post("/admin/users/:id/score", asUser(1), s.AdjustScore)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"Unknown Category", map[string]any{"category": "bogus", "delta": 10, "reason": "r"}},
		{"Zero Delta", map[string]any{"category": "ctf", "delta": 0, "reason": "r"}},
		{"Missing Reason", map[string]any{"category": "ctf", "delta": 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/admin/users/2/score", jsonBody(t, tt.body))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestGetScoreHistory_OwnAndForeign(t *testing.T) {
	s, _ := newScoreTestServer(t)

	app := fiber.New()
	app.Post("/admin/users/:id/score", asUser(1), s.AdjustScore)
	// Authenticated as the regular member.
	app.Get("/users/:id/history", asUser(2), s.GetScoreHistory)

	req := httptest.NewRequest(http.MethodPost, "/admin/users/2/score",
		jsonBody(t, map[string]any{"category": "wargame", "delta": 40, "reason": "Solved warmup"}))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Own history is readable.
	req = httptest.NewRequest(http.MethodGet, "/users/2/history", nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Entries []models.ScoreHistory `json:"entries"`
		Total   int64                 `json:"total"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Entries, 1)
	assert.Equal(t, int64(1), body.Total)
	assert.Equal(t, "Solved warmup", body.Entries[0].Reason)

	// A non-admin cannot read someone else's history.
	req = httptest.NewRequest(http.MethodGet, "/users/1/history", nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
