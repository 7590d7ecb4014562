package seed

import (
	"testing"

	"hackarena/internal/models"
	"hackarena/internal/service"
	"hackarena/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeed_PopulatesAllDomains(t *testing.T) {
	db := testutil.OpenTestDB(t)

	err := Seed(db, Options{
		NumUsers:    15,
		NumPosts:    10,
		NumContests: 2,
		MaxDays:     30,
		SkipBcrypt:  true,
	})
	require.NoError(t, err)

	var users, posts, contests, challenges, curricula, seasons, banners int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	require.NoError(t, db.Model(&models.Post{}).Count(&posts).Error)
	require.NoError(t, db.Model(&models.Contest{}).Count(&contests).Error)
	require.NoError(t, db.Model(&models.Challenge{}).Count(&challenges).Error)
	require.NoError(t, db.Model(&models.Curriculum{}).Count(&curricula).Error)
	require.NoError(t, db.Model(&models.Season{}).Count(&seasons).Error)
	require.NoError(t, db.Model(&models.Banner{}).Count(&banners).Error)

	assert.EqualValues(t, 15, users)
	assert.EqualValues(t, 10, posts)
	assert.EqualValues(t, 2, contests)
	assert.NotZero(t, challenges)
	assert.EqualValues(t, 4, curricula)
	assert.EqualValues(t, 3, seasons)
	assert.EqualValues(t, 3, banners)

	// Fixed accounts exist for manual poking.
	var admin models.User
	require.NoError(t, db.Where("username = ?", "admin").First(&admin).Error)
	assert.Equal(t, models.RoleAdmin, admin.Role)

	// Exactly one active season.
	var activeSeasons int64
	require.NoError(t, db.Model(&models.Season{}).Where("is_active = ?", true).Count(&activeSeasons).Error)
	assert.EqualValues(t, 1, activeSeasons)
}

func TestFactory_UserScoresStayConsistent(t *testing.T) {
	db := testutil.OpenTestDB(t)
	f := NewFactory(db, Options{SkipBcrypt: true})

	for i := 0; i < 20; i++ {
		user, err := f.CreateUser()
		require.NoError(t, err)
		assert.Equal(t, user.Points,
			user.WargameScore+user.CtfScore+user.CurriculumScore+user.BonusPoints)
		assert.GreaterOrEqual(t, user.Level, 1)
		assert.NotEmpty(t, user.Tier)
	}
}

func TestFactory_ChallengeFlagRoundTrips(t *testing.T) {
	db := testutil.OpenTestDB(t)
	f := NewFactory(db, Options{SkipBcrypt: true})

	admin, err := f.CreateUser(func(u *models.User) { u.Role = models.RoleAdmin })
	require.NoError(t, err)
	contest, err := f.CreateContest(admin.ID, models.ContestWargame)
	require.NoError(t, err)

	challenge, err := f.CreateChallenge(contest, "flag{seeded}")
	require.NoError(t, err)
	assert.Equal(t, service.HashFlag("flag{seeded}"), challenge.FlagHash)
}

func TestFactory_SanctionStampsStatus(t *testing.T) {
	db := testutil.OpenTestDB(t)
	f := NewFactory(db, Options{SkipBcrypt: true})

	user, err := f.CreateUser()
	require.NoError(t, err)

	_, err = f.CreateSanction(user, models.SanctionSuspension)
	require.NoError(t, err)

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.Equal(t, models.StatusSuspended, reloaded.Status)
}
