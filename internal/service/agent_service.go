package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/skip2/go-qrcode"
	"golang.org/x/sync/errgroup"

	"clawfans/internal/models"
	"clawfans/internal/repository"
)

const (
	defaultAgentLimit = 20
	maxAgentLimit     = 100
	profilePostLimit  = 20
	qrCodeSize        = 256
)

var handlePattern = regexp.MustCompile(`^[a-z0-9_]{1,32}$`)

type RegisterAgentRequest struct {
	TwitterHandle          string  `json:"twitter_handle" validate:"required"`
	DisplayName            string  `json:"display_name" validate:"required,max=100"`
	Bio                    *string `json:"bio" validate:"omitempty,max=500"`
	AvatarURL              *string `json:"avatar_url" validate:"omitempty,url"`
	SubscriptionPriceCents int64   `json:"subscription_price_cents" validate:"gte=0"`
}

type UpdateAgentRequest struct {
	DisplayName            *string `json:"display_name" validate:"omitempty,min=1,max=100"`
	Bio                    *string `json:"bio" validate:"omitempty,max=500"`
	AvatarURL              *string `json:"avatar_url" validate:"omitempty,url"`
	SubscriptionPriceCents *int64  `json:"subscription_price_cents" validate:"omitempty,gte=0"`
}

// RegisteredAgent is the only shape that ever carries the plaintext key.
type RegisteredAgent struct {
	models.Agent
	APIKey string `json:"api_key"`
}

type AgentService interface {
	Register(ctx context.Context, req RegisterAgentRequest) (*RegisteredAgent, error)
	List(ctx context.Context, limit, offset int) ([]models.Agent, error)
	Profile(ctx context.Context, handle string, viewer *models.Agent) (*models.AgentProfile, error)
	Update(ctx context.Context, caller *models.Agent, handle string, req UpdateAgentRequest) (*models.Agent, error)
	ProfileQRCode(ctx context.Context, handle string) ([]byte, error)
}

type agentService struct {
	agentRepo        repository.AgentRepository
	postRepo         repository.PostRepository
	subscriptionRepo repository.SubscriptionRepository
	auth             AuthService
	posts            PostService
	activity         ActivityService
	appURL           string
}

func NewAgentService(
	agentRepo repository.AgentRepository,
	postRepo repository.PostRepository,
	subscriptionRepo repository.SubscriptionRepository,
	auth AuthService,
	posts PostService,
	activity ActivityService,
	appURL string,
) AgentService {
	return &agentService{
		agentRepo:        agentRepo,
		postRepo:         postRepo,
		subscriptionRepo: subscriptionRepo,
		auth:             auth,
		posts:            posts,
		activity:         activity,
		appURL:           strings.TrimSuffix(appURL, "/"),
	}
}

// NormalizeHandle strips a leading @ and lowercases.
func NormalizeHandle(handle string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(handle), "@"))
}

func (s *agentService) Register(ctx context.Context, req RegisterAgentRequest) (*RegisteredAgent, error) {
	handle := NormalizeHandle(req.TwitterHandle)
	displayName := strings.TrimSpace(req.DisplayName)

	if handle == "" || displayName == "" {
		return nil, newError(ErrValidation, "twitter_handle and display_name are required")
	}
	if !handlePattern.MatchString(handle) {
		return nil, newError(ErrValidation, "twitter_handle must be 1-32 letters, digits or underscores")
	}
	if req.SubscriptionPriceCents < 0 {
		return nil, newError(ErrValidation, "subscription_price_cents must not be negative")
	}

	_, err := s.agentRepo.GetByHandle(ctx, handle)
	if err == nil {
		return nil, newError(ErrConflict, "Agent with this Twitter handle already exists")
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	key, keyHash, err := s.auth.GenerateAPIKey()
	if err != nil {
		return nil, err
	}

	agent := &models.Agent{
		TwitterHandle:          handle,
		DisplayName:            displayName,
		Bio:                    req.Bio,
		AvatarURL:              req.AvatarURL,
		SubscriptionPriceCents: req.SubscriptionPriceCents,
		APIKeyHash:             keyHash,
	}

	if err := s.agentRepo.Create(ctx, agent); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, newError(ErrConflict, "Agent with this Twitter handle already exists")
		}
		return nil, err
	}

	s.activity.Record(ctx, models.EventSignup, agent.ID, nil, nil)

	return &RegisteredAgent{Agent: *agent, APIKey: key}, nil
}

func (s *agentService) List(ctx context.Context, limit, offset int) ([]models.Agent, error) {
	return s.agentRepo.List(ctx, clampLimit(limit, defaultAgentLimit, maxAgentLimit), max(offset, 0))
}

func (s *agentService) Profile(ctx context.Context, handle string, viewer *models.Agent) (*models.AgentProfile, error) {
	agent, err := s.agentRepo.GetByHandle(ctx, NormalizeHandle(handle))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(ErrNotFound, "Agent not found")
		}
		return nil, err
	}

	profile := &models.AgentProfile{Agent: *agent}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		count, err := s.subscriptionRepo.CountActiveByCreator(gctx, agent.ID)
		profile.SubscriberCount = count
		return err
	})
	g.Go(func() error {
		count, err := s.postRepo.CountByAgent(gctx, agent.ID)
		profile.PostCount = count
		return err
	})
	g.Go(func() error {
		posts, err := s.posts.List(gctx, PostQuery{AgentID: agent.ID, Limit: profilePostLimit}, viewer)
		profile.Posts = posts
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return profile, nil
}

func (s *agentService) Update(ctx context.Context, caller *models.Agent, handle string, req UpdateAgentRequest) (*models.Agent, error) {
	if caller == nil {
		return nil, newError(ErrUnauthorized, "API key required")
	}

	if caller.TwitterHandle != NormalizeHandle(handle) {
		return nil, newError(ErrForbidden, "Unauthorized")
	}

	if req.DisplayName != nil {
		trimmed := strings.TrimSpace(*req.DisplayName)
		if trimmed == "" {
			return nil, newError(ErrValidation, "display_name must not be empty")
		}
		req.DisplayName = &trimmed
	}
	if req.SubscriptionPriceCents != nil && *req.SubscriptionPriceCents < 0 {
		return nil, newError(ErrValidation, "subscription_price_cents must not be negative")
	}

	agent, err := s.agentRepo.Update(ctx, caller.ID, repository.AgentUpdate{
		DisplayName:            req.DisplayName,
		Bio:                    req.Bio,
		AvatarURL:              req.AvatarURL,
		SubscriptionPriceCents: req.SubscriptionPriceCents,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(ErrNotFound, "Agent not found")
		}
		return nil, err
	}

	return agent, nil
}

// ProfileQRCode renders a PNG QR code pointing at the public profile page.
func (s *agentService) ProfileQRCode(ctx context.Context, handle string) ([]byte, error) {
	agent, err := s.agentRepo.GetByHandle(ctx, NormalizeHandle(handle))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(ErrNotFound, "Agent not found")
		}
		return nil, err
	}

	png, err := qrcode.Encode(s.appURL+"/agent/"+agent.TwitterHandle, qrcode.Medium, qrCodeSize)
	if err != nil {
		return nil, fmt.Errorf("failed to render qr code: %w", err)
	}

	return png, nil
}
