package service

import (
	"context"
	"time"

	"amplify/internal/cache"
	"amplify/internal/models"
	"amplify/internal/repository"
)

// AnalyticsService aggregates follower history and archive summaries.
type AnalyticsService struct {
	snapshots repository.SnapshotRepository
	posts     repository.PostRepository
}

// NewAnalyticsService returns a new AnalyticsService.
func NewAnalyticsService(snapshots repository.SnapshotRepository, posts repository.PostRepository) *AnalyticsService {
	return &AnalyticsService{snapshots: snapshots, posts: posts}
}

// FollowerPoint is one day in the follower chart. Platforms the day has no
// sample for contribute zero.
type FollowerPoint struct {
	Date     string `json:"date"`
	X        int    `json:"x"`
	LinkedIn int    `json:"linkedin"`
	Total    int    `json:"total"`
}

// FollowerHistory is the chart payload plus the raw per-platform rows.
type FollowerHistory struct {
	History    []FollowerPoint                       `json:"history"`
	ByPlatform map[string][]*models.FollowerSnapshot `json:"byPlatform"`
}

// History returns follower counts for the trailing window, grouped by date.
func (s *AnalyticsService) History(ctx context.Context, days int, platform string) (*FollowerHistory, error) {
	if days <= 0 {
		days = 30
	}
	since := time.Now().AddDate(0, 0, -days).Format("2006-01-02")

	var result FollowerHistory
	key := cache.FollowerHistoryCacheKey(days, platform)
	err := cache.Aside(ctx, key, &result, cache.FollowerHistoryTTL, func() error {
		snapshots, err := s.snapshots.HistorySince(ctx, since, platform)
		if err != nil {
			return err
		}
		result = groupFollowerHistory(snapshots)
		return nil
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &result, nil
}

func groupFollowerHistory(snapshots []*models.FollowerSnapshot) FollowerHistory {
	byDate := map[string]*FollowerPoint{}
	order := []string{}
	byPlatform := map[string][]*models.FollowerSnapshot{}

	for _, snap := range snapshots {
		point, ok := byDate[snap.SnapshotDate]
		if !ok {
			point = &FollowerPoint{Date: snap.SnapshotDate}
			byDate[snap.SnapshotDate] = point
			order = append(order, snap.SnapshotDate)
		}
		switch snap.Platform {
		case models.ChannelX:
			point.X = snap.FollowerCount
		case models.ChannelLinkedIn:
			point.LinkedIn = snap.FollowerCount
		}
		point.Total = point.X + point.LinkedIn
		byPlatform[snap.Platform] = append(byPlatform[snap.Platform], snap)
	}

	history := make([]FollowerPoint, 0, len(order))
	for _, date := range order {
		history = append(history, *byDate[date])
	}
	return FollowerHistory{History: history, ByPlatform: byPlatform}
}

// Summary aggregates the published archive over a period: "7d", "30d" or
// "all".
func (s *AnalyticsService) Summary(ctx context.Context, period string) (*repository.ArchiveSummary, error) {
	var since *string
	switch period {
	case "7d":
		v := time.Now().AddDate(0, 0, -7).Format("2006-01-02")
		since = &v
	case "30d":
		v := time.Now().AddDate(0, 0, -30).Format("2006-01-02")
		since = &v
	case "all", "":
		period = "all"
	default:
		return nil, models.NewValidationError("Invalid period")
	}

	var summary repository.ArchiveSummary
	key := cache.AnalyticsSummaryCacheKey(period)
	err := cache.Aside(ctx, key, &summary, cache.AnalyticsSummaryTTL, func() error {
		got, err := s.posts.SummarizeArchive(ctx, since)
		if err != nil {
			return err
		}
		summary = *got
		return nil
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &summary, nil
}
