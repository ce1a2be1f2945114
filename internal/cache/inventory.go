package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	CampaignListKey     = "campaigns:list"
	UnreadCountPrefix   = "notifications:unread:%s"
	FollowerHistoryKey  = "followers:history:%d:%s"
	AnalyticsSummaryKey = "analytics:summary:%s"
)

const (
	CampaignListTTL     = 5 * time.Minute
	UnreadCountTTL      = 30 * time.Second
	FollowerHistoryTTL  = 10 * time.Minute
	AnalyticsSummaryTTL = 5 * time.Minute
)

func UnreadCountKey(email string) string {
	return fmt.Sprintf(UnreadCountPrefix, email)
}

func FollowerHistoryCacheKey(days int, platform string) string {
	return fmt.Sprintf(FollowerHistoryKey, days, platform)
}

func AnalyticsSummaryCacheKey(period string) string {
	return fmt.Sprintf(AnalyticsSummaryKey, period)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateCampaignList(ctx context.Context) {
	Invalidate(ctx, CampaignListKey)
}

func InvalidateUnreadCount(ctx context.Context, email string) {
	Invalidate(ctx, UnreadCountKey(email))
}
