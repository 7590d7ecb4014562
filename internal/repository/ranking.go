package repository

import (
	"context"
	"errors"
	"strings"

	"hackarena/internal/models"
	"hackarena/internal/observability"

	"gorm.io/gorm"
)

// RankingRepository serves the leaderboard queries. Rank is always computed
// server-side from the canonical ordering (points desc, id asc) so a paged
// listing and a username search agree on every user's position.
type RankingRepository interface {
	ListByScore(ctx context.Context, limit, offset int) ([]models.User, error)
	Count(ctx context.Context) (int64, error)
	RankOf(ctx context.Context, user *models.User) (int64, error)
	FindRanked(ctx context.Context, username string) (*models.User, int64, error)
	Search(ctx context.Context, query string, limit, offset int) ([]models.User, error)
}

type rankingRepository struct {
	db *gorm.DB
}

// NewRankingRepository returns a new RankingRepository implementation.
func NewRankingRepository(db *gorm.DB) RankingRepository {
	return &rankingRepository{db: db}
}

func (r *rankingRepository) ListByScore(ctx context.Context, limit, offset int) ([]models.User, error) {
	defer observability.TrackQuery("list_by_score", "users")()

	var users []models.User
	err := r.db.WithContext(ctx).
		Order("points DESC, id ASC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *rankingRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// RankOf returns the 1-based position of user in the canonical ordering:
// one more than the number of users sorted strictly ahead of them.
func (r *rankingRepository) RankOf(ctx context.Context, user *models.User) (int64, error) {
	defer observability.TrackQuery("rank_of", "users")()

	var ahead int64
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("points > ? OR (points = ? AND id < ?)", user.Points, user.Points, user.ID).
		Count(&ahead).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return ahead + 1, nil
}

// FindRanked looks up a user by exact username and returns them with their
// canonical rank.
func (r *rankingRepository) FindRanked(ctx context.Context, username string) (*models.User, int64, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, models.NewNotFoundError("User", username)
		}
		return nil, 0, models.NewInternalError(err)
	}
	rank, err := r.RankOf(ctx, &user)
	if err != nil {
		return nil, 0, err
	}
	return &user, rank, nil
}

// Search returns users whose username contains query, in canonical leaderboard
// order. Matching is case-insensitive.
func (r *rankingRepository) Search(ctx context.Context, query string, limit, offset int) ([]models.User, error) {
	defer observability.TrackQuery("search", "users")()

	var users []models.User
	like := "%" + strings.ToLower(query) + "%"
	err := r.db.WithContext(ctx).
		Where("LOWER(username) LIKE ?", like).
		Order("points DESC, id ASC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}
