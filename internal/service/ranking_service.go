package service

import (
	"context"

	"hackarena/internal/cache"
	"hackarena/internal/models"
	"hackarena/internal/observability"
	"hackarena/internal/repository"
)

// RankedUser is one leaderboard row: a user plus their canonical position.
type RankedUser struct {
	Rank        int64  `json:"rank"`
	UserID      uint   `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name,omitempty"`
	Avatar      string `json:"avatar,omitempty"`
	Points      int    `json:"points"`
	Level       int    `json:"level"`
	Tier        string `json:"tier"`
	Status      string `json:"status"`
}

// RankingPage is a page of the leaderboard with paging metadata.
type RankingPage struct {
	Users      []RankedUser `json:"users"`
	Total      int64        `json:"total"`
	Page       int          `json:"page"`
	PageSize   int          `json:"page_size"`
	TotalPages int          `json:"total_pages"`
}

// RankingService assembles leaderboard pages and user rank lookups.
// Browse and search both derive rank from the same canonical ordering, so a
// user found by search carries the same rank they hold in the paged listing.
type RankingService struct {
	rankingRepo repository.RankingRepository
}

// NewRankingService returns a new RankingService.
func NewRankingService(rankingRepo repository.RankingRepository) *RankingService {
	return &RankingService{rankingRepo: rankingRepo}
}

// Page returns one leaderboard page. Pages are cached briefly; the cache is
// invalidated on every score adjustment.
func (s *RankingService) Page(ctx context.Context, page, pageSize int) (*RankingPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	var result RankingPage
	key := cache.RankingPageKey(page, pageSize)
	cached := true
	err := cache.Aside(ctx, key, &result, cache.RankingPageTTL, func() error {
		cached = false
		built, err := s.buildPage(ctx, page, pageSize)
		if err != nil {
			return err
		}
		result = *built
		return nil
	})
	if err != nil {
		return nil, err
	}

	if cached {
		observability.RankingCacheHits.WithLabelValues("hit").Inc()
	} else {
		observability.RankingCacheHits.WithLabelValues("miss").Inc()
	}
	return &result, nil
}

func (s *RankingService) buildPage(ctx context.Context, page, pageSize int) (*RankingPage, error) {
	offset := (page - 1) * pageSize
	users, err := s.rankingRepo.ListByScore(ctx, pageSize, offset)
	if err != nil {
		return nil, err
	}
	total, err := s.rankingRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	ranked := make([]RankedUser, len(users))
	for i := range users {
		// Positions within an ordered page are contiguous from the offset.
		ranked[i] = toRankedUser(&users[i], int64(offset+i+1))
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &RankingPage{
		Users:      ranked,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// Find returns a single user with their canonical rank, looked up by exact
// username.
func (s *RankingService) Find(ctx context.Context, username string) (*RankedUser, error) {
	if username == "" {
		return nil, models.NewValidationError("Username is required")
	}
	user, rank, err := s.rankingRepo.FindRanked(ctx, username)
	if err != nil {
		return nil, err
	}
	ranked := toRankedUser(user, rank)
	return &ranked, nil
}

// Search returns users whose username contains query, each with their
// canonical rank. Results come back in leaderboard order.
func (s *RankingService) Search(ctx context.Context, query string, limit, offset int) ([]RankedUser, error) {
	if query == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	users, err := s.rankingRepo.Search(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}

	ranked := make([]RankedUser, len(users))
	for i := range users {
		rank, err := s.rankingRepo.RankOf(ctx, &users[i])
		if err != nil {
			return nil, err
		}
		ranked[i] = toRankedUser(&users[i], rank)
	}
	return ranked, nil
}

func toRankedUser(u *models.User, rank int64) RankedUser {
	return RankedUser{
		Rank:        rank,
		UserID:      u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Avatar:      u.Avatar,
		Points:      u.Points,
		Level:       u.Level,
		Tier:        u.Tier,
		Status:      string(u.Status),
	}
}
