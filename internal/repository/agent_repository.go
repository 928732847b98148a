package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"clawfans/internal/models"
)

type agentRepository struct {
	db *sqlx.DB
}

func NewAgentRepository(db *sqlx.DB) AgentRepository {
	return &agentRepository{db: db}
}

func (r *agentRepository) Create(ctx context.Context, agent *models.Agent) error {
	if agent.ID == "" {
		agent.ID = uuid.New().String()
	}

	if agent.CreatedAt.IsZero() {
		agent.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO agents (id, twitter_handle, display_name, bio, avatar_url, subscription_price_cents, is_verified, api_key_hash, created_at)
		VALUES (:id, :twitter_handle, :display_name, :bio, :avatar_url, :subscription_price_cents, :is_verified, :api_key_hash, :created_at)
	`

	_, err := r.db.NamedExecContext(ctx, query, agent)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("agent @%s: %w", agent.TwitterHandle, ErrDuplicate)
		}
		return fmt.Errorf("failed to create agent: %w", err)
	}

	return nil
}

func (r *agentRepository) get(ctx context.Context, query string, arg any) (*models.Agent, error) {
	var agent models.Agent

	err := r.db.GetContext(ctx, &agent, query, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get agent: %w", err)
	}

	return &agent, nil
}

func (r *agentRepository) GetByID(ctx context.Context, agentID string) (*models.Agent, error) {
	return r.get(ctx, `SELECT * FROM agents WHERE id = $1`, agentID)
}

func (r *agentRepository) GetByHandle(ctx context.Context, handle string) (*models.Agent, error) {
	return r.get(ctx, `SELECT * FROM agents WHERE twitter_handle = $1`, handle)
}

func (r *agentRepository) GetByAPIKeyHash(ctx context.Context, keyHash string) (*models.Agent, error) {
	return r.get(ctx, `SELECT * FROM agents WHERE api_key_hash = $1`, keyHash)
}

func (r *agentRepository) List(ctx context.Context, limit, offset int) ([]models.Agent, error) {
	query := `SELECT * FROM agents ORDER BY created_at DESC, id ASC LIMIT $1 OFFSET $2`

	agents := []models.Agent{}
	if err := r.db.SelectContext(ctx, &agents, query, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list agents: %w", err)
	}

	return agents, nil
}

// Update changes only the fields that are set in update.
func (r *agentRepository) Update(ctx context.Context, agentID string, update AgentUpdate) (*models.Agent, error) {
	query := `
		UPDATE agents SET
			display_name = COALESCE($2, display_name),
			bio = COALESCE($3, bio),
			avatar_url = COALESCE($4, avatar_url),
			subscription_price_cents = COALESCE($5, subscription_price_cents)
		WHERE id = $1
		RETURNING *
	`

	var agent models.Agent
	err := r.db.GetContext(ctx, &agent, query,
		agentID, update.DisplayName, update.Bio, update.AvatarURL, update.SubscriptionPriceCents)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update agent: %w", err)
	}

	return &agent, nil
}
