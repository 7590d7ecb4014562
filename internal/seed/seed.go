package seed

import (
	"fmt"
	"log"

	"hackarena/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	NumContests int
	ShouldClean bool

	// MaxDays bounds the created_at spread of generated content.
	MaxDays int
	// SkipBcrypt stores a plaintext password for dev fast mode.
	SkipBcrypt bool
}

func (o Options) maxCategoryScore() int {
	// Spread users across all tiers: the sum of three category draws can
	// land anywhere from Bronze through Diamond.
	return 20000
}

// Seed populates the database with demo data: users across every tier,
// community posts with comments and likes, contests with solved challenges,
// curricula, seasons, and a couple of banners.
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("Starting database seeding with %d users, %d posts, %d contests...",
		opts.NumUsers, opts.NumPosts, opts.NumContests)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("Warning: could not clear all existing data, continuing anyway...")
		}
	}

	f := NewFactory(db, opts)

	users, err := createUsers(db, f, opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("%d users created", len(users))

	posts, err := createCommunity(f, users, opts.NumPosts)
	if err != nil {
		return fmt.Errorf("failed to create community content: %w", err)
	}
	log.Printf("%d posts created", len(posts))

	if err := createContests(f, users, opts.NumContests); err != nil {
		return fmt.Errorf("failed to create contests: %w", err)
	}

	if err := createCurricula(f, users); err != nil {
		return fmt.Errorf("failed to create curricula: %w", err)
	}

	if err := createSeasons(f, users); err != nil {
		return fmt.Errorf("failed to create seasons: %w", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := f.CreateBanner(i); err != nil {
			return fmt.Errorf("failed to create banner: %w", err)
		}
	}

	log.Println("Database seeding completed")
	return nil
}

func clearData(db *gorm.DB) error {
	log.Println("Clearing existing data...")
	sql := `TRUNCATE TABLE score_histories, sanctions, season_participants, season_reset_runs, seasons,
		curriculum_progresses, curricula, solves, contest_participants, challenges, contests,
		post_reports, post_likes, comments, posts, banners, users RESTART IDENTITY CASCADE;`
	return db.Exec(sql).Error
}

func createUsers(db *gorm.DB, f *Factory, count int) ([]*models.User, error) {
	users := make([]*models.User, 0, count)

	// Always include a known admin and a known regular account for manual
	// poking when cleaning.
	if count >= 2 {
		hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		fixed := []models.User{
			{Username: "admin", Email: "admin@example.com", Password: string(hashed),
				Role: models.RoleAdmin, Status: models.StatusActive, Level: 1, Tier: "Bronze"},
			{Username: "player", Email: "player@example.com", Password: string(hashed),
				Role: models.RoleUser, Status: models.StatusActive, Level: 1, Tier: "Bronze"},
		}
		for i := range fixed {
			if err := db.Create(&fixed[i]).Error; err == nil {
				users = append(users, &fixed[i])
			}
		}
	}

	for i := len(users); i < count; i++ {
		user, err := f.CreateUser()
		if err != nil {
			log.Printf("Failed to create user: %v", err)
			continue
		}
		users = append(users, user)
		logProgress("users", i)
	}

	// A handful of sanctioned accounts so moderation screens have content.
	if len(users) >= 10 {
		if _, err := f.CreateSanction(users[len(users)-1], models.SanctionRestriction); err != nil {
			return nil, err
		}
		if _, err := f.CreateSanction(users[len(users)-2], models.SanctionBan); err != nil {
			return nil, err
		}
	}

	return users, nil
}

func createCommunity(f *Factory, users []*models.User, count int) ([]*models.Post, error) {
	if len(users) == 0 {
		return nil, nil
	}

	posts := make([]*models.Post, 0, count)
	for i := 0; i < count; i++ {
		author := users[f.rng.Intn(len(users))]
		post, err := f.CreatePost(author)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)

		for c := f.rng.Intn(5); c > 0; c-- {
			commenter := users[f.rng.Intn(len(users))]
			if _, err := f.CreateComment(commenter, post); err != nil {
				return nil, err
			}
		}

		// Distinct likers per post; duplicates would trip the unique index.
		likers := f.rng.Perm(len(users))
		for _, idx := range likers[:min(f.rng.Intn(8), len(likers))] {
			if err := f.CreateLike(users[idx], post); err != nil {
				return nil, err
			}
		}

		logProgress("posts", i)
	}
	return posts, nil
}

func createContests(f *Factory, users []*models.User, count int) error {
	if len(users) == 0 || count == 0 {
		return nil
	}

	for i := 0; i < count; i++ {
		category := models.ContestCtf
		if i%2 == 1 {
			category = models.ContestWargame
		}
		contest, err := f.CreateContest(users[0].ID, category)
		if err != nil {
			return err
		}

		for c := 0; c < 3+f.rng.Intn(5); c++ {
			challenge, err := f.CreateChallenge(contest, gofakeit.UUID())
			if err != nil {
				return err
			}

			solvers := f.rng.Perm(len(users))
			for _, idx := range solvers[:min(f.rng.Intn(4), len(solvers))] {
				if _, err := f.CreateSolve(users[idx], challenge); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func createCurricula(f *Factory, users []*models.User) error {
	for i := 0; i < 4; i++ {
		curriculum, err := f.CreateCurriculum()
		if err != nil {
			return err
		}

		learners := f.rng.Perm(len(users))
		for _, idx := range learners[:min(f.rng.Intn(6), len(learners))] {
			progress := &models.CurriculumProgress{
				CurriculumID:   curriculum.ID,
				UserID:         users[idx].ID,
				CompletedUnits: 1 + f.rng.Intn(curriculum.Units),
			}
			if err := f.db.Create(progress).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func createSeasons(f *Factory, users []*models.User) error {
	if _, err := f.CreateSeason(models.SeasonEnded); err != nil {
		return err
	}

	active, err := f.CreateSeason(models.SeasonActive)
	if err != nil {
		return err
	}

	joiners := f.rng.Perm(len(users))
	for _, idx := range joiners[:min(len(joiners), 20)] {
		participant := &models.SeasonParticipant{
			SeasonID: active.ID,
			UserID:   users[idx].ID,
			Score:    users[idx].Points,
		}
		if err := f.db.Create(participant).Error; err != nil {
			return err
		}
	}

	_, err = f.CreateSeason(models.SeasonPlanned)
	return err
}
