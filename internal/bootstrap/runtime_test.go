package bootstrap

import (
	"testing"

	"hackarena/internal/config"
	"hackarena/internal/models"
	"hackarena/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestEnsureDevRootAdmin_SkipsOutsideDevelopment(t *testing.T) {
	db := testutil.OpenTestDB(t)
	cfg := &config.Config{
		Env:              "production",
		DevBootstrapRoot: true,
		DevRootPassword:  "irrelevant",
	}

	require.NoError(t, ensureDevRootAdmin(cfg, db))

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestEnsureDevRootAdmin_CreatesRoot(t *testing.T) {
	db := testutil.OpenTestDB(t)
	cfg := &config.Config{
		Env:              "development",
		DevBootstrapRoot: true,
		DevRootUsername:  "overlord",
		DevRootEmail:     "Overlord@HackArena.local",
		DevRootPassword:  "hunter2hunter2",
	}

	require.NoError(t, ensureDevRootAdmin(cfg, db))

	var root models.User
	require.NoError(t, db.First(&root, 1).Error)
	assert.Equal(t, "overlord", root.Username)
	assert.Equal(t, "overlord@hackarena.local", root.Email)
	assert.Equal(t, models.RoleSuperadmin, root.Role)
	assert.Equal(t, models.StatusActive, root.Status)
	assert.Equal(t, "Bronze", root.Tier)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(root.Password), []byte("hunter2hunter2")))
}

func TestEnsureDevRootAdmin_PromotesExistingUserOne(t *testing.T) {
	db := testutil.OpenTestDB(t)
	require.NoError(t, db.Create(&models.User{
		ID:       1,
		Username: "mortal",
		Email:    "mortal@example.com",
		Password: "hash",
		Role:     models.RoleUser,
		Status:   models.StatusActive,
	}).Error)

	cfg := &config.Config{
		Env:              "development",
		DevBootstrapRoot: true,
		DevRootPassword:  "hunter2hunter2",
	}
	require.NoError(t, ensureDevRootAdmin(cfg, db))

	var root models.User
	require.NoError(t, db.First(&root, 1).Error)
	assert.Equal(t, models.RoleSuperadmin, root.Role)
	// Credentials stay untouched unless force is set.
	assert.Equal(t, "mortal", root.Username)
}

func TestEnsureDevRootAdmin_ForceCredentials(t *testing.T) {
	db := testutil.OpenTestDB(t)
	require.NoError(t, db.Create(&models.User{
		ID:       1,
		Username: "mortal",
		Email:    "mortal@example.com",
		Password: "hash",
		Role:     models.RoleUser,
		Status:   models.StatusActive,
	}).Error)

	cfg := &config.Config{
		Env:                     "development",
		DevBootstrapRoot:        true,
		DevRootUsername:         "overlord",
		DevRootEmail:            "root@hackarena.local",
		DevRootPassword:         "hunter2hunter2",
		DevRootForceCredentials: true,
	}
	require.NoError(t, ensureDevRootAdmin(cfg, db))

	var root models.User
	require.NoError(t, db.First(&root, 1).Error)
	assert.Equal(t, "overlord", root.Username)
	assert.Equal(t, "root@hackarena.local", root.Email)
}

func TestEnsureDevRootAdmin_RequiresPassword(t *testing.T) {
	db := testutil.OpenTestDB(t)
	cfg := &config.Config{
		Env:              "development",
		DevBootstrapRoot: true,
	}

	err := ensureDevRootAdmin(cfg, db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DEV_ROOT_PASSWORD")

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)
}
