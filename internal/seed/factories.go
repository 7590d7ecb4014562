// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"hackarena/internal/models"
	"hackarena/internal/scoring"
	"hackarena/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by seed presets and tests.
type Factory struct {
	db    *gorm.DB
	opts  Options
	tiers *scoring.TierTable
	rng   *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	// seed gofakeit for richer content
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db:    db,
		opts:  opts,
		tiers: scoring.DefaultTierTable(),
		//nolint:gosec // weak randomness is fine for seeding
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// CreateUser constructs and persists a sample user with a score spread
// drawn from the configured ranges. Optional override functions may modify
// the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	wargame := f.rng.Intn(f.opts.maxCategoryScore())
	ctf := f.rng.Intn(f.opts.maxCategoryScore())
	curriculum := f.rng.Intn(f.opts.maxCategoryScore() / 2)
	total := wargame + ctf + curriculum

	user := &models.User{
		Username:        gofakeit.Gamertag() + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		Email:           gofakeit.Email(),
		DisplayName:     gofakeit.Name(),
		Avatar:          fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
		Role:            models.RoleUser,
		Status:          models.StatusActive,
		WargameScore:    wargame,
		CtfScore:        ctf,
		CurriculumScore: curriculum,
		Points:          total,
		Level:           scoring.Level(total),
		Tier:            f.tiers.ForScore(total),
		Streak:          f.rng.Intn(30),
	}

	// Password handling: allow skipping bcrypt in dev fast mode
	if f.opts.SkipBcrypt {
		user.Password = "password123"
	} else {
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		user.Password = string(hashedPassword)
	}

	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreatePost constructs and persists a sample post for the given user with
// a realistic created_at spread.
func (f *Factory) CreatePost(user *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	post := &models.Post{
		Title:     gofakeit.Sentence(5),
		Content:   gofakeit.Paragraph(1, 3, 5, "\n"),
		UserID:    user.ID,
		CreatedAt: f.pastTimestamp(),
	}

	for _, override := range overrides {
		override(post)
	}

	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreateComment constructs and persists a sample comment on the provided
// post authored by the provided user.
func (f *Factory) CreateComment(user *models.User, post *models.Post, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		Content: gofakeit.Sentence(8),
		UserID:  user.ID,
		PostID:  post.ID,
	}

	for _, override := range overrides {
		override(comment)
	}

	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateLike persists a like from user on post.
func (f *Factory) CreateLike(user *models.User, post *models.Post) error {
	like := &models.PostLike{
		UserID: user.ID,
		PostID: post.ID,
	}
	return f.db.Create(like).Error
}

// CreateContest constructs and persists a contest. CTF contests get a time
// window; wargames run open-ended.
func (f *Factory) CreateContest(createdBy uint, category models.ContestCategory, overrides ...func(*models.Contest)) (*models.Contest, error) {
	contest := &models.Contest{
		Title:       fmt.Sprintf("%s %s", gofakeit.HackerAdjective(), gofakeit.HackerNoun()),
		Description: gofakeit.HackerPhrase(),
		Category:    category,
		CreatedBy:   createdBy,
	}

	if category == models.ContestCtf {
		start := f.pastTimestamp()
		end := start.Add(time.Duration(24+f.rng.Intn(72)) * time.Hour)
		contest.StartsAt = &start
		contest.EndsAt = &end
	}

	for _, override := range overrides {
		override(contest)
	}

	if err := f.db.Create(contest).Error; err != nil {
		return nil, err
	}
	return contest, nil
}

// CreateChallenge persists a challenge under the given contest. The flag is
// stored hashed, matching what submission checking expects.
func (f *Factory) CreateChallenge(contest *models.Contest, flag string, overrides ...func(*models.Challenge)) (*models.Challenge, error) {
	challenge := &models.Challenge{
		ContestID: contest.ID,
		Title:     fmt.Sprintf("%s %s", gofakeit.HackerVerb(), gofakeit.HackerNoun()),
		Points:    (1 + f.rng.Intn(10)) * 50,
		FlagHash:  service.HashFlag(flag),
	}

	for _, override := range overrides {
		override(challenge)
	}

	if err := f.db.Create(challenge).Error; err != nil {
		return nil, err
	}
	return challenge, nil
}

// CreateSolve records a correct submission and bumps the challenge solve
// counter. It does not award score; presets go through ScoreService when
// they want points to move.
func (f *Factory) CreateSolve(user *models.User, challenge *models.Challenge) (*models.Solve, error) {
	solve := &models.Solve{
		ChallengeID: challenge.ID,
		UserID:      user.ID,
		ContestID:   challenge.ContestID,
		Points:      challenge.Points,
	}
	if err := f.db.Create(solve).Error; err != nil {
		return nil, err
	}
	if err := f.db.Model(&models.Challenge{}).Where("id = ?", challenge.ID).
		UpdateColumn("solve_count", gorm.Expr("solve_count + 1")).Error; err != nil {
		return nil, err
	}
	return solve, nil
}

// CreateCurriculum persists a learning track.
func (f *Factory) CreateCurriculum(overrides ...func(*models.Curriculum)) (*models.Curriculum, error) {
	curriculum := &models.Curriculum{
		Title:         fmt.Sprintf("Intro to %s", gofakeit.HackerNoun()),
		Description:   gofakeit.Paragraph(1, 2, 8, " "),
		Units:         4 + f.rng.Intn(12),
		PointsPerUnit: 10 + 5*f.rng.Intn(5),
	}

	for _, override := range overrides {
		override(curriculum)
	}

	if err := f.db.Create(curriculum).Error; err != nil {
		return nil, err
	}
	return curriculum, nil
}

// CreateSeason persists a season in the given state.
func (f *Factory) CreateSeason(state models.SeasonState, overrides ...func(*models.Season)) (*models.Season, error) {
	start := f.pastTimestamp()
	season := &models.Season{
		Name:        fmt.Sprintf("Season %s %d", gofakeit.Adjective(), gofakeit.Number(1, 9999)),
		Description: gofakeit.Sentence(10),
		StartsAt:    start,
		State:       state,
		IsActive:    state == models.SeasonActive,
	}
	if state == models.SeasonEnded {
		end := start.Add(30 * 24 * time.Hour)
		season.EndsAt = &end
	}

	for _, override := range overrides {
		override(season)
	}

	if err := f.db.Create(season).Error; err != nil {
		return nil, err
	}
	return season, nil
}

// CreateBanner persists a homepage banner.
func (f *Factory) CreateBanner(position int, overrides ...func(*models.Banner)) (*models.Banner, error) {
	banner := &models.Banner{
		Title:    gofakeit.Sentence(4),
		ImageURL: fmt.Sprintf("https://picsum.photos/seed/%s/1200/300", gofakeit.UUID()),
		LinkURL:  gofakeit.URL(),
		IsActive: true,
		Position: position,
	}

	for _, override := range overrides {
		override(banner)
	}

	if err := f.db.Create(banner).Error; err != nil {
		return nil, err
	}
	return banner, nil
}

// CreateSanction persists a sanction against the user and stamps the
// resulting account standing, mirroring what SanctionService maintains.
func (f *Factory) CreateSanction(user *models.User, typ models.SanctionType, overrides ...func(*models.Sanction)) (*models.Sanction, error) {
	sanction := &models.Sanction{
		UserID:      user.ID,
		Type:        typ,
		Reason:      gofakeit.Sentence(6),
		AppliedBy:   1,
		AppliedName: "seed",
		IsActive:    true,
	}

	for _, override := range overrides {
		override(sanction)
	}

	if err := f.db.Create(sanction).Error; err != nil {
		return nil, err
	}

	status := models.StatusFromSanctions([]models.Sanction{*sanction}, time.Now())
	if err := f.db.Model(&models.User{}).Where("id = ?", user.ID).
		Update("status", status).Error; err != nil {
		return nil, err
	}
	user.Status = status
	return sanction, nil
}

// pastTimestamp returns a time spread over the configured history window.
func (f *Factory) pastTimestamp() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	daysBack := f.rng.Intn(maxDays)
	hoursBack := f.rng.Intn(24)
	minsBack := f.rng.Intn(60)
	return time.Now().Add(-time.Duration(daysBack)*24*time.Hour -
		time.Duration(hoursBack)*time.Hour - time.Duration(minsBack)*time.Minute)
}

func logProgress(what string, n int) {
	if n > 0 && n%100 == 0 {
		log.Printf("Created %d %s...", n, what)
	}
}
