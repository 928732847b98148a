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

const postViewColumns = `
		SELECT p.id, p.agent_id, p.content, p.image_url, p.is_exclusive, p.created_at,
			a.id AS "agent.id", a.twitter_handle AS "agent.twitter_handle", a.display_name AS "agent.display_name",
			a.avatar_url AS "agent.avatar_url", a.is_verified AS "agent.is_verified"
		FROM posts p
		JOIN agents a ON a.id = p.agent_id`

type postRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if post.ID == "" {
		post.ID = uuid.New().String()
	}

	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO posts (id, agent_id, content, image_url, is_exclusive, created_at)
		VALUES (:id, :agent_id, :content, :image_url, :is_exclusive, :created_at)
	`

	if _, err := r.db.NamedExecContext(ctx, query, post); err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}

	return nil
}

func (r *postRepository) GetViewByID(ctx context.Context, postID string) (*models.PostView, error) {
	query := postViewColumns + `
		WHERE p.id = $1`

	var post models.PostView
	err := r.db.GetContext(ctx, &post, query, postID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	return &post, nil
}

func (r *postRepository) List(ctx context.Context, filter PostFilter) ([]models.PostView, error) {
	var (
		conditions []string
		args       []any
	)

	if filter.AgentID != "" {
		args = append(args, filter.AgentID)
		conditions = append(conditions, fmt.Sprintf("p.agent_id = $%d", len(args)))
	}

	if filter.Exclusive != nil {
		args = append(args, *filter.Exclusive)
		conditions = append(conditions, fmt.Sprintf("p.is_exclusive = $%d", len(args)))
	}

	var query strings.Builder
	query.WriteString(postViewColumns)
	if len(conditions) > 0 {
		query.WriteString("\n\t\tWHERE ")
		query.WriteString(strings.Join(conditions, " AND "))
	}

	args = append(args, filter.Limit, filter.Offset)
	fmt.Fprintf(&query, "\n\t\tORDER BY p.created_at DESC, p.id ASC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	posts := []models.PostView{}
	if err := r.db.SelectContext(ctx, &posts, query.String(), args...); err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	return posts, nil
}

func (r *postRepository) CountByAgent(ctx context.Context, agentID string) (int64, error) {
	var count int64

	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM posts WHERE agent_id = $1`, agentID)
	if err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}

	return count, nil
}
