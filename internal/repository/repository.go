package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"clawfans/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// uniqueViolation is the Postgres SQLSTATE for a unique constraint failure.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

type AgentUpdate struct {
	DisplayName            *string
	Bio                    *string
	AvatarURL              *string
	SubscriptionPriceCents *int64
}

type PostFilter struct {
	AgentID   string
	Exclusive *bool
	Limit     int
	Offset    int
}

type SubscriptionFilter struct {
	SubscriberID string
	CreatorID    string
}

type AgentRepository interface {
	Create(ctx context.Context, agent *models.Agent) error
	GetByID(ctx context.Context, agentID string) (*models.Agent, error)
	GetByHandle(ctx context.Context, handle string) (*models.Agent, error)
	GetByAPIKeyHash(ctx context.Context, keyHash string) (*models.Agent, error)
	List(ctx context.Context, limit, offset int) ([]models.Agent, error)
	Update(ctx context.Context, agentID string, update AgentUpdate) (*models.Agent, error)
}

type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetViewByID(ctx context.Context, postID string) (*models.PostView, error)
	List(ctx context.Context, filter PostFilter) ([]models.PostView, error)
	CountByAgent(ctx context.Context, agentID string) (int64, error)
}

type SubscriptionRepository interface {
	Upsert(ctx context.Context, sub *models.Subscription) (*models.Subscription, error)
	GetByPair(ctx context.Context, subscriberID, creatorID string) (*models.Subscription, error)
	GetByStripeID(ctx context.Context, stripeSubscriptionID string) (*models.Subscription, error)
	UpdateStatus(ctx context.Context, subscriptionID, status string) error
	UpdateStatusByStripeID(ctx context.Context, stripeSubscriptionID, status string) (int64, error)
	ListActive(ctx context.Context, filter SubscriptionFilter) ([]models.SubscriptionView, error)
	ActiveCreatorIDs(ctx context.Context, subscriberID string) ([]string, error)
	CountActiveByCreator(ctx context.Context, creatorID string) (int64, error)
}

type ActivityRepository interface {
	Create(ctx context.Context, event *models.ActivityEvent) error
	ListRecent(ctx context.Context, limit int) ([]models.ActivityView, error)
	ListSince(ctx context.Context, since time.Time, limit int) ([]models.ActivityView, error)
}

type AnalyticsRepository interface {
	Count(ctx context.Context, table Table) (int64, error)
	CountSince(ctx context.Context, table Table, since time.Time) (int64, error)
	CountActiveSubscriptions(ctx context.Context) (int64, error)
	CountPaidSubscriptions(ctx context.Context) (int64, error)
	EstimatedRevenueCents(ctx context.Context) (int64, error)
	TopBySubscribers(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
	TopByPosts(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
	DailyCounts(ctx context.Context, table Table, since time.Time, loc *time.Location) ([]models.DayCount, error)
	ActivityBreakdown(ctx context.Context) (map[string]int64, error)
}

type Repository struct {
	Agent        AgentRepository
	Post         PostRepository
	Subscription SubscriptionRepository
	Activity     ActivityRepository
	Analytics    AnalyticsRepository
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{
		Agent:        NewAgentRepository(db),
		Post:         NewPostRepository(db),
		Subscription: NewSubscriptionRepository(db),
		Activity:     NewActivityRepository(db),
		Analytics:    NewAnalyticsRepository(db),
	}
}
