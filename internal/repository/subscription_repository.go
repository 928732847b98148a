package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"clawfans/internal/models"
)

type subscriptionRepository struct {
	db *sqlx.DB
}

func NewSubscriptionRepository(db *sqlx.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

// Upsert writes the row for the (subscriber, creator) pair, updating the
// existing one in place when the pair is already present.
func (r *subscriptionRepository) Upsert(ctx context.Context, sub *models.Subscription) (*models.Subscription, error) {
	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}

	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO subscriptions (id, subscriber_id, creator_id, stripe_subscription_id, status, is_free, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (subscriber_id, creator_id) DO UPDATE SET
			stripe_subscription_id = EXCLUDED.stripe_subscription_id,
			status = EXCLUDED.status,
			is_free = EXCLUDED.is_free
		RETURNING *
	`

	var stored models.Subscription
	err := r.db.GetContext(ctx, &stored, query,
		sub.ID, sub.SubscriberID, sub.CreatorID, sub.StripeSubscriptionID, sub.Status, sub.IsFree, sub.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert subscription: %w", err)
	}

	return &stored, nil
}

func (r *subscriptionRepository) GetByPair(ctx context.Context, subscriberID, creatorID string) (*models.Subscription, error) {
	query := `SELECT * FROM subscriptions WHERE subscriber_id = $1 AND creator_id = $2`

	var sub models.Subscription
	err := r.db.GetContext(ctx, &sub, query, subscriberID, creatorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	return &sub, nil
}

func (r *subscriptionRepository) GetByStripeID(ctx context.Context, stripeSubscriptionID string) (*models.Subscription, error) {
	query := `SELECT * FROM subscriptions WHERE stripe_subscription_id = $1`

	var sub models.Subscription
	err := r.db.GetContext(ctx, &sub, query, stripeSubscriptionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get subscription by stripe id: %w", err)
	}

	return &sub, nil
}

func (r *subscriptionRepository) UpdateStatus(ctx context.Context, subscriptionID, status string) error {
	query := `UPDATE subscriptions SET status = $1 WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, status, subscriptionID)
	if err != nil {
		return fmt.Errorf("failed to update subscription status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check updated rows: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// UpdateStatusByStripeID returns the number of rows matched; zero is not an error.
func (r *subscriptionRepository) UpdateStatusByStripeID(ctx context.Context, stripeSubscriptionID, status string) (int64, error) {
	query := `UPDATE subscriptions SET status = $1 WHERE stripe_subscription_id = $2`

	result, err := r.db.ExecContext(ctx, query, status, stripeSubscriptionID)
	if err != nil {
		return 0, fmt.Errorf("failed to update subscription status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check updated rows: %w", err)
	}

	return rowsAffected, nil
}

func (r *subscriptionRepository) ListActive(ctx context.Context, filter SubscriptionFilter) ([]models.SubscriptionView, error) {
	args := []any{models.SubscriptionActive}
	conditions := []string{"s.status = $1"}

	if filter.SubscriberID != "" {
		args = append(args, filter.SubscriberID)
		conditions = append(conditions, fmt.Sprintf("s.subscriber_id = $%d", len(args)))
	}

	if filter.CreatorID != "" {
		args = append(args, filter.CreatorID)
		conditions = append(conditions, fmt.Sprintf("s.creator_id = $%d", len(args)))
	}

	query := `
		SELECT s.id, s.subscriber_id, s.creator_id, s.stripe_subscription_id, s.status, s.is_free, s.created_at,
			sub.id AS "subscriber.id", sub.twitter_handle AS "subscriber.twitter_handle",
			sub.display_name AS "subscriber.display_name", sub.avatar_url AS "subscriber.avatar_url",
			sub.is_verified AS "subscriber.is_verified",
			cr.id AS "creator.id", cr.twitter_handle AS "creator.twitter_handle",
			cr.display_name AS "creator.display_name", cr.avatar_url AS "creator.avatar_url",
			cr.is_verified AS "creator.is_verified"
		FROM subscriptions s
		JOIN agents sub ON sub.id = s.subscriber_id
		JOIN agents cr ON cr.id = s.creator_id
		WHERE ` + strings.Join(conditions, " AND ") + `
		ORDER BY s.created_at DESC, s.id ASC`

	subs := []models.SubscriptionView{}
	if err := r.db.SelectContext(ctx, &subs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}

	return subs, nil
}

func (r *subscriptionRepository) ActiveCreatorIDs(ctx context.Context, subscriberID string) ([]string, error) {
	query := `SELECT creator_id FROM subscriptions WHERE subscriber_id = $1 AND status = $2`

	ids := []string{}
	if err := r.db.SelectContext(ctx, &ids, query, subscriberID, models.SubscriptionActive); err != nil {
		return nil, fmt.Errorf("failed to list subscribed creators: %w", err)
	}

	return ids, nil
}

func (r *subscriptionRepository) CountActiveByCreator(ctx context.Context, creatorID string) (int64, error) {
	query := `SELECT COUNT(*) FROM subscriptions WHERE creator_id = $1 AND status = $2`

	var count int64
	if err := r.db.GetContext(ctx, &count, query, creatorID, models.SubscriptionActive); err != nil {
		return 0, fmt.Errorf("failed to count subscribers: %w", err)
	}

	return count, nil
}
