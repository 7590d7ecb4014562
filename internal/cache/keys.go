package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix        = "user:%d"
	RankingPagePrefix    = "ranking:page:%d:%d"
	SeasonBoardPrefix    = "season:%d:board"
	ActiveBannersKeyName = "banners:active"
)

const (
	UserTTL        = 5 * time.Minute
	RankingPageTTL = 30 * time.Second
	SeasonBoardTTL = 1 * time.Minute
	BannersTTL     = 10 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func RankingPageKey(page, pageSize int) string {
	return fmt.Sprintf(RankingPagePrefix, page, pageSize)
}

func SeasonBoardKey(seasonID uint) string {
	return fmt.Sprintf(SeasonBoardPrefix, seasonID)
}

func ActiveBannersKey() string {
	return ActiveBannersKeyName
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

// InvalidateRankingPages drops all cached ranking pages. Called after any
// score write; pages are short-lived so a SCAN is acceptable here.
func InvalidateRankingPages(ctx context.Context) {
	if client == nil {
		return
	}
	iter := client.Scan(ctx, 0, "ranking:page:*", 100).Iterator()
	for iter.Next(ctx) {
		client.Del(ctx, iter.Val())
	}
}

func InvalidateSeasonBoard(ctx context.Context, seasonID uint) {
	Invalidate(ctx, SeasonBoardKey(seasonID))
}

func InvalidateBanners(ctx context.Context) {
	Invalidate(ctx, ActiveBannersKeyName)
}
