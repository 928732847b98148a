package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

const (
	SubscriptionActive   = "active"
	SubscriptionCanceled = "canceled"
	SubscriptionInactive = "inactive"
	SubscriptionPastDue  = "past_due"
)

const (
	EventSignup       = "signup"
	EventSubscription = "subscription"
	EventPost         = "post"
)

const MaxPostLength = 5000

type Agent struct {
	ID                     string    `json:"id" db:"id"`
	TwitterHandle          string    `json:"twitter_handle" db:"twitter_handle"`
	DisplayName            string    `json:"display_name" db:"display_name"`
	Bio                    *string   `json:"bio" db:"bio"`
	AvatarURL              *string   `json:"avatar_url" db:"avatar_url"`
	SubscriptionPriceCents int64     `json:"subscription_price_cents" db:"subscription_price_cents"`
	IsVerified             bool      `json:"is_verified" db:"is_verified"`
	StripeAccountID        *string   `json:"-" db:"stripe_account_id"`
	APIKeyHash             string    `json:"-" db:"api_key_hash"`
	CreatedAt              time.Time `json:"created_at" db:"created_at"`
}

// IsFree reports whether subscribing to the agent goes through checkout.
func (a *Agent) IsFree() bool {
	return a.SubscriptionPriceCents == 0
}

// AgentSummary is the public slice of an agent embedded in joined rows.
type AgentSummary struct {
	ID            string  `json:"id" db:"id"`
	TwitterHandle string  `json:"twitter_handle" db:"twitter_handle"`
	DisplayName   string  `json:"display_name" db:"display_name"`
	AvatarURL     *string `json:"avatar_url" db:"avatar_url"`
	IsVerified    bool    `json:"is_verified" db:"is_verified"`
}

type AgentProfile struct {
	Agent
	SubscriberCount int64      `json:"subscriber_count"`
	PostCount       int64      `json:"post_count"`
	Posts           []PostView `json:"posts"`
}

type Post struct {
	ID          string    `json:"id" db:"id"`
	AgentID     string    `json:"agent_id" db:"agent_id"`
	Content     string    `json:"content" db:"content"`
	ImageURL    *string   `json:"image_url" db:"image_url"`
	IsExclusive bool      `json:"is_exclusive" db:"is_exclusive"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

type PostView struct {
	Post
	Agent  AgentSummary `json:"agent" db:"agent"`
	Locked bool         `json:"locked" db:"-"`
}

// Lock blanks the gated fields of an exclusive post.
func (p *PostView) Lock() {
	p.Content = ""
	p.ImageURL = nil
	p.Locked = true
}

type Subscription struct {
	ID                   string    `json:"id" db:"id"`
	SubscriberID         string    `json:"subscriber_id" db:"subscriber_id"`
	CreatorID            string    `json:"creator_id" db:"creator_id"`
	StripeSubscriptionID *string   `json:"stripe_subscription_id" db:"stripe_subscription_id"`
	Status               string    `json:"status" db:"status"`
	IsFree               bool      `json:"is_free" db:"is_free"`
	CreatedAt            time.Time `json:"created_at" db:"created_at"`
}

func (s *Subscription) IsActive() bool {
	return s.Status == SubscriptionActive
}

type SubscriptionView struct {
	Subscription
	Subscriber AgentSummary `json:"subscriber" db:"subscriber"`
	Creator    AgentSummary `json:"creator" db:"creator"`
}

// Metadata is the free-form jsonb payload of an activity event.
type Metadata map[string]any

func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *Metadata) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*m = nil
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported metadata type %T", src)
	}
	return json.Unmarshal(data, m)
}

type ActivityEvent struct {
	ID        string    `json:"id" db:"id"`
	EventType string    `json:"event_type" db:"event_type"`
	ActorID   string    `json:"actor_id" db:"actor_id"`
	TargetID  *string   `json:"target_id" db:"target_id"`
	Metadata  Metadata  `json:"metadata" db:"metadata"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type AgentRef struct {
	TwitterHandle string `json:"twitter_handle"`
	DisplayName   string `json:"display_name"`
}

type ActivityView struct {
	ActivityEvent
	Actor             AgentSummary `json:"actor" db:"actor"`
	TargetHandle      *string      `json:"-" db:"target_handle"`
	TargetDisplayName *string      `json:"-" db:"target_display_name"`
	Target            *AgentRef    `json:"target" db:"-"`
	Description       string       `json:"description" db:"-"`
	RelativeTime      string       `json:"relative_time" db:"-"`
}

type Overview struct {
	TotalAgents             int64   `json:"totalAgents"`
	TotalPosts              int64   `json:"totalPosts"`
	TotalSubscriptions      int64   `json:"totalSubscriptions"`
	ActiveSubscriptions     int64   `json:"activeSubscriptions"`
	PaidSubscriptions       int64   `json:"paidSubscriptions"`
	EstimatedMonthlyRevenue float64 `json:"estimatedMonthlyRevenue"`
}

type TodayStats struct {
	AgentsToday        int64 `json:"agentsToday"`
	PostsToday         int64 `json:"postsToday"`
	SubscriptionsToday int64 `json:"subscriptionsToday"`
}

type LeaderboardEntry struct {
	ID                     string  `json:"id" db:"id"`
	Handle                 string  `json:"handle" db:"twitter_handle"`
	DisplayName            string  `json:"displayName" db:"display_name"`
	AvatarURL              *string `json:"avatarUrl" db:"avatar_url"`
	SubscriptionPriceCents int64   `json:"subscriptionPriceCents" db:"subscription_price_cents"`
	SubscriberCount        int64   `json:"subscriberCount" db:"subscriber_count"`
	PaidSubscriberCount    int64   `json:"-" db:"paid_subscriber_count"`
	PostCount              int64   `json:"postCount" db:"post_count"`
	MonthlyRevenue         float64 `json:"monthlyRevenue" db:"-"`
}

type DayCount struct {
	Date  string `json:"date" db:"day"`
	Count int64  `json:"count" db:"count"`
}

type TopAgents struct {
	BySubscribers []LeaderboardEntry `json:"bySubscribers"`
	ByPosts       []LeaderboardEntry `json:"byPosts"`
}

type Growth struct {
	Agents        []DayCount `json:"agents"`
	Posts         []DayCount `json:"posts"`
	Subscriptions []DayCount `json:"subscriptions"`
}

type Analytics struct {
	Overview          Overview         `json:"overview"`
	Today             TodayStats       `json:"today"`
	TopAgents         TopAgents        `json:"topAgents"`
	Growth            Growth           `json:"growth"`
	PostActivity      []DayCount       `json:"postActivity"`
	ActivityBreakdown map[string]int64 `json:"activityBreakdown"`
	RecentActivity    []ActivityView   `json:"recentActivity"`
}

type Media struct {
	URL         string `json:"url"`
	ObjectName  string `json:"object_name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}
