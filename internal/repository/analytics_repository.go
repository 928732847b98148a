package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"clawfans/internal/models"
)

// Table names the countable tables. Only these constants are ever
// interpolated into SQL.
type Table string

const (
	TableAgents        Table = "agents"
	TablePosts         Table = "posts"
	TableSubscriptions Table = "subscriptions"
)

func (t Table) valid() bool {
	switch t {
	case TableAgents, TablePosts, TableSubscriptions:
		return true
	}
	return false
}

const leaderboardQuery = `
		SELECT a.id, a.twitter_handle, a.display_name, a.avatar_url, a.subscription_price_cents,
			COALESCE(s.subscriber_count, 0) AS subscriber_count,
			COALESCE(s.paid_subscriber_count, 0) AS paid_subscriber_count,
			COALESCE(p.post_count, 0) AS post_count
		FROM agents a
		LEFT JOIN (
			SELECT creator_id, COUNT(*) AS subscriber_count, COUNT(*) FILTER (WHERE NOT is_free) AS paid_subscriber_count
			FROM subscriptions
			WHERE status = 'active'
			GROUP BY creator_id
		) s ON s.creator_id = a.id
		LEFT JOIN (
			SELECT agent_id, COUNT(*) AS post_count
			FROM posts
			GROUP BY agent_id
		) p ON p.agent_id = a.id`

type analyticsRepository struct {
	db *sqlx.DB
}

func NewAnalyticsRepository(db *sqlx.DB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) count(ctx context.Context, query string, args ...any) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *analyticsRepository) Count(ctx context.Context, table Table) (int64, error) {
	if !table.valid() {
		return 0, fmt.Errorf("unknown table %q", table)
	}

	count, err := r.count(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, table))
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}

	return count, nil
}

func (r *analyticsRepository) CountSince(ctx context.Context, table Table, since time.Time) (int64, error) {
	if !table.valid() {
		return 0, fmt.Errorf("unknown table %q", table)
	}

	count, err := r.count(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE created_at >= $1`, table), since)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s since %s: %w", table, since.Format(time.RFC3339), err)
	}

	return count, nil
}

func (r *analyticsRepository) CountActiveSubscriptions(ctx context.Context) (int64, error) {
	count, err := r.count(ctx, `SELECT COUNT(*) FROM subscriptions WHERE status = $1`, models.SubscriptionActive)
	if err != nil {
		return 0, fmt.Errorf("failed to count active subscriptions: %w", err)
	}
	return count, nil
}

func (r *analyticsRepository) CountPaidSubscriptions(ctx context.Context) (int64, error) {
	count, err := r.count(ctx, `SELECT COUNT(*) FROM subscriptions WHERE is_free = FALSE`)
	if err != nil {
		return 0, fmt.Errorf("failed to count paid subscriptions: %w", err)
	}
	return count, nil
}

// EstimatedRevenueCents sums the creator price over active paid subscriptions.
func (r *analyticsRepository) EstimatedRevenueCents(ctx context.Context) (int64, error) {
	query := `
		SELECT COALESCE(SUM(a.subscription_price_cents), 0)
		FROM subscriptions s
		JOIN agents a ON a.id = s.creator_id
		WHERE s.status = $1 AND s.is_free = FALSE
	`

	cents, err := r.count(ctx, query, models.SubscriptionActive)
	if err != nil {
		return 0, fmt.Errorf("failed to sum revenue: %w", err)
	}
	return cents, nil
}

// Leaderboard ties go to the older agent, then to the smaller id.
func (r *analyticsRepository) leaderboard(ctx context.Context, orderBy string, limit int) ([]models.LeaderboardEntry, error) {
	query := leaderboardQuery + `
		ORDER BY ` + orderBy + ` DESC, a.created_at ASC, a.id ASC
		LIMIT $1`

	entries := []models.LeaderboardEntry{}
	if err := r.db.SelectContext(ctx, &entries, query, limit); err != nil {
		return nil, fmt.Errorf("failed to build leaderboard by %s: %w", orderBy, err)
	}

	return entries, nil
}

func (r *analyticsRepository) TopBySubscribers(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	return r.leaderboard(ctx, "subscriber_count", limit)
}

func (r *analyticsRepository) TopByPosts(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	return r.leaderboard(ctx, "post_count", limit)
}

// DailyCounts buckets rows created since the given instant by calendar day
// in loc. Days without rows are absent.
func (r *analyticsRepository) DailyCounts(ctx context.Context, table Table, since time.Time, loc *time.Location) ([]models.DayCount, error) {
	if !table.valid() {
		return nil, fmt.Errorf("unknown table %q", table)
	}

	query := fmt.Sprintf(`
		SELECT to_char(created_at AT TIME ZONE $2, 'YYYY-MM-DD') AS day, COUNT(*) AS count
		FROM %s
		WHERE created_at >= $1
		GROUP BY day
		ORDER BY day ASC`, table)

	days := []models.DayCount{}
	if err := r.db.SelectContext(ctx, &days, query, since, loc.String()); err != nil {
		return nil, fmt.Errorf("failed to bucket %s by day: %w", table, err)
	}

	return days, nil
}

func (r *analyticsRepository) ActivityBreakdown(ctx context.Context) (map[string]int64, error) {
	query := `SELECT event_type, COUNT(*) AS count FROM activity_feed GROUP BY event_type`

	var rows []struct {
		EventType string `db:"event_type"`
		Count     int64  `db:"count"`
	}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to break down activity: %w", err)
	}

	breakdown := make(map[string]int64, len(rows))
	for _, row := range rows {
		breakdown[row.EventType] = row.Count
	}

	return breakdown, nil
}
