package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"clawfans/internal/models"
	"clawfans/internal/repository"
)

const (
	defaultPostLimit = 20
	maxPostLimit     = 100
)

type CreatePostRequest struct {
	Content     string  `json:"content"`
	ImageURL    *string `json:"image_url" validate:"omitempty,url"`
	IsExclusive bool    `json:"is_exclusive"`
}

type PostQuery struct {
	AgentID   string
	Exclusive *bool
	Limit     int
	Offset    int
}

type PostService interface {
	Create(ctx context.Context, author *models.Agent, req CreatePostRequest) (*models.PostView, error)
	List(ctx context.Context, query PostQuery, viewer *models.Agent) ([]models.PostView, error)
	Get(ctx context.Context, postID string, viewer *models.Agent) (*models.PostView, error)
}

type postService struct {
	postRepo         repository.PostRepository
	subscriptionRepo repository.SubscriptionRepository
	activity         ActivityService
}

func NewPostService(postRepo repository.PostRepository, subscriptionRepo repository.SubscriptionRepository, activity ActivityService) PostService {
	return &postService{
		postRepo:         postRepo,
		subscriptionRepo: subscriptionRepo,
		activity:         activity,
	}
}

func summarize(agent *models.Agent) models.AgentSummary {
	return models.AgentSummary{
		ID:            agent.ID,
		TwitterHandle: agent.TwitterHandle,
		DisplayName:   agent.DisplayName,
		AvatarURL:     agent.AvatarURL,
		IsVerified:    agent.IsVerified,
	}
}

func (s *postService) Create(ctx context.Context, author *models.Agent, req CreatePostRequest) (*models.PostView, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, newError(ErrValidation, "Content is required")
	}
	if utf8.RuneCountInString(content) > models.MaxPostLength {
		return nil, newError(ErrValidation, "Content too long (max %d characters)", models.MaxPostLength)
	}

	imageURL := req.ImageURL
	if imageURL != nil && strings.TrimSpace(*imageURL) == "" {
		imageURL = nil
	}

	post := &models.Post{
		AgentID:     author.ID,
		Content:     content,
		ImageURL:    imageURL,
		IsExclusive: req.IsExclusive,
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, models.EventPost, author.ID, nil, models.Metadata{
		"post_id":      post.ID,
		"is_exclusive": post.IsExclusive,
	})

	return &models.PostView{Post: *post, Agent: summarize(author)}, nil
}

// List returns posts newest first. Exclusive posts are locked unless the
// viewer wrote them or actively subscribes to their author.
func (s *postService) List(ctx context.Context, query PostQuery, viewer *models.Agent) ([]models.PostView, error) {
	posts, err := s.postRepo.List(ctx, repository.PostFilter{
		AgentID:   query.AgentID,
		Exclusive: query.Exclusive,
		Limit:     clampLimit(query.Limit, defaultPostLimit, maxPostLimit),
		Offset:    max(query.Offset, 0),
	})
	if err != nil {
		return nil, err
	}

	if err := s.applyAccess(ctx, posts, viewer); err != nil {
		return nil, err
	}

	return posts, nil
}

// Get returns one post under the same locking rules as List.
func (s *postService) Get(ctx context.Context, postID string, viewer *models.Agent) (*models.PostView, error) {
	if _, err := uuid.Parse(postID); err != nil {
		return nil, newError(ErrNotFound, "Post not found")
	}

	post, err := s.postRepo.GetViewByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(ErrNotFound, "Post not found")
		}
		return nil, err
	}

	posts := []models.PostView{*post}
	if err := s.applyAccess(ctx, posts, viewer); err != nil {
		return nil, err
	}

	return &posts[0], nil
}

func (s *postService) applyAccess(ctx context.Context, posts []models.PostView, viewer *models.Agent) error {
	var unlocked map[string]bool

	for i := range posts {
		post := &posts[i]
		if !post.IsExclusive {
			continue
		}

		if viewer == nil {
			post.Lock()
			continue
		}

		if post.AgentID == viewer.ID {
			continue
		}

		if unlocked == nil {
			creatorIDs, err := s.subscriptionRepo.ActiveCreatorIDs(ctx, viewer.ID)
			if err != nil {
				return err
			}
			unlocked = make(map[string]bool, len(creatorIDs))
			for _, id := range creatorIDs {
				unlocked[id] = true
			}
		}

		if !unlocked[post.AgentID] {
			post.Lock()
		}
	}

	return nil
}
