package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"clawfans/internal/models"
	"clawfans/internal/repository"
)

const (
	leaderboardSize     = 10
	growthWindowDays    = 30
	postActivityDays    = 7
	recentActivityLimit = 20
)

type AnalyticsService interface {
	Dashboard(ctx context.Context) (*models.Analytics, error)
}

type analyticsService struct {
	analyticsRepo repository.AnalyticsRepository
	activity      ActivityService
	loc           *time.Location
	now           func() time.Time
}

func NewAnalyticsService(analyticsRepo repository.AnalyticsRepository, activity ActivityService, loc *time.Location) AnalyticsService {
	if loc == nil {
		loc = time.UTC
	}
	return &analyticsService{
		analyticsRepo: analyticsRepo,
		activity:      activity,
		loc:           loc,
		now:           time.Now,
	}
}

// startOfDay returns local midnight, daysAgo days before now.
func startOfDay(now time.Time, loc *time.Location, daysAgo int) time.Time {
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day()-daysAgo, 0, 0, 0, 0, loc)
}

// Dashboard runs every aggregate query concurrently. Each goroutine owns
// the fields it writes.
func (s *analyticsService) Dashboard(ctx context.Context) (*models.Analytics, error) {
	now := s.now()
	today := startOfDay(now, s.loc, 0)
	growthSince := startOfDay(now, s.loc, growthWindowDays-1)
	postActivitySince := startOfDay(now, s.loc, postActivityDays-1)

	var (
		result       models.Analytics
		revenueCents int64
	)

	g, ctx := errgroup.WithContext(ctx)

	count := func(dst *int64, fn func(context.Context) (int64, error)) {
		g.Go(func() error {
			n, err := fn(ctx)
			*dst = n
			return err
		})
	}

	count(&result.Overview.TotalAgents, func(ctx context.Context) (int64, error) {
		return s.analyticsRepo.Count(ctx, repository.TableAgents)
	})
	count(&result.Overview.TotalPosts, func(ctx context.Context) (int64, error) {
		return s.analyticsRepo.Count(ctx, repository.TablePosts)
	})
	count(&result.Overview.TotalSubscriptions, func(ctx context.Context) (int64, error) {
		return s.analyticsRepo.Count(ctx, repository.TableSubscriptions)
	})
	count(&result.Overview.ActiveSubscriptions, s.analyticsRepo.CountActiveSubscriptions)
	count(&result.Overview.PaidSubscriptions, s.analyticsRepo.CountPaidSubscriptions)
	count(&revenueCents, s.analyticsRepo.EstimatedRevenueCents)

	count(&result.Today.AgentsToday, func(ctx context.Context) (int64, error) {
		return s.analyticsRepo.CountSince(ctx, repository.TableAgents, today)
	})
	count(&result.Today.PostsToday, func(ctx context.Context) (int64, error) {
		return s.analyticsRepo.CountSince(ctx, repository.TablePosts, today)
	})
	count(&result.Today.SubscriptionsToday, func(ctx context.Context) (int64, error) {
		return s.analyticsRepo.CountSince(ctx, repository.TableSubscriptions, today)
	})

	g.Go(func() error {
		entries, err := s.analyticsRepo.TopBySubscribers(ctx, leaderboardSize)
		result.TopAgents.BySubscribers = withRevenue(entries)
		return err
	})
	g.Go(func() error {
		entries, err := s.analyticsRepo.TopByPosts(ctx, leaderboardSize)
		result.TopAgents.ByPosts = withRevenue(entries)
		return err
	})

	daily := func(dst *[]models.DayCount, table repository.Table, since time.Time) {
		g.Go(func() error {
			days, err := s.analyticsRepo.DailyCounts(ctx, table, since, s.loc)
			*dst = days
			return err
		})
	}

	daily(&result.Growth.Agents, repository.TableAgents, growthSince)
	daily(&result.Growth.Posts, repository.TablePosts, growthSince)
	daily(&result.Growth.Subscriptions, repository.TableSubscriptions, growthSince)
	daily(&result.PostActivity, repository.TablePosts, postActivitySince)

	g.Go(func() error {
		breakdown, err := s.analyticsRepo.ActivityBreakdown(ctx)
		result.ActivityBreakdown = breakdown
		return err
	})
	g.Go(func() error {
		events, err := s.activity.Recent(ctx, recentActivityLimit)
		result.RecentActivity = events
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result.Overview.EstimatedMonthlyRevenue = float64(revenueCents) / 100

	return &result, nil
}

func withRevenue(entries []models.LeaderboardEntry) []models.LeaderboardEntry {
	for i := range entries {
		entries[i].MonthlyRevenue = float64(entries[i].SubscriptionPriceCents*entries[i].PaidSubscriberCount) / 100
	}
	return entries
}
