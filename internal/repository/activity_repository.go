package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"clawfans/internal/models"
)

const activityViewColumns = `
		SELECT e.id, e.event_type, e.actor_id, e.target_id, e.metadata, e.created_at,
			a.id AS "actor.id", a.twitter_handle AS "actor.twitter_handle", a.display_name AS "actor.display_name",
			a.avatar_url AS "actor.avatar_url", a.is_verified AS "actor.is_verified",
			t.twitter_handle AS target_handle, t.display_name AS target_display_name
		FROM activity_feed e
		JOIN agents a ON a.id = e.actor_id
		LEFT JOIN agents t ON t.id = e.target_id`

type activityRepository struct {
	db *sqlx.DB
}

func NewActivityRepository(db *sqlx.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Create(ctx context.Context, event *models.ActivityEvent) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO activity_feed (id, event_type, actor_id, target_id, metadata, created_at)
		VALUES (:id, :event_type, :actor_id, :target_id, :metadata, :created_at)
	`

	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("failed to record activity: %w", err)
	}

	return nil
}

func (r *activityRepository) ListRecent(ctx context.Context, limit int) ([]models.ActivityView, error) {
	query := activityViewColumns + `
		ORDER BY e.created_at DESC, e.id ASC
		LIMIT $1`

	events := []models.ActivityView{}
	if err := r.db.SelectContext(ctx, &events, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}

	return events, nil
}

// ListSince returns events strictly newer than since, oldest first.
func (r *activityRepository) ListSince(ctx context.Context, since time.Time, limit int) ([]models.ActivityView, error) {
	query := activityViewColumns + `
		WHERE e.created_at > $1
		ORDER BY e.created_at ASC, e.id ASC
		LIMIT $2`

	events := []models.ActivityView{}
	if err := r.db.SelectContext(ctx, &events, query, since, limit); err != nil {
		return nil, fmt.Errorf("failed to list activity since %s: %w", since.Format(time.RFC3339), err)
	}

	return events, nil
}
