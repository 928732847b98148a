package service

import (
	"clawfans/internal/billing"
	"clawfans/internal/config"
	"clawfans/internal/repository"
	"clawfans/internal/storage"
)

type Service struct {
	Auth         AuthService
	Agent        AgentService
	Post         PostService
	Subscription SubscriptionService
	Activity     ActivityService
	Analytics    AnalyticsService
	Media        MediaService
}

func NewService(rep *repository.Repository, cfg *config.Config, storage storage.Storage, gateway billing.Gateway) *Service {
	activity := NewActivityService(rep.Activity)
	auth := NewAuthService(rep.Agent)
	posts := NewPostService(rep.Post, rep.Subscription, activity)

	return &Service{
		Auth:         auth,
		Agent:        NewAgentService(rep.Agent, rep.Post, rep.Subscription, auth, posts, activity, cfg.AppURL),
		Post:         posts,
		Subscription: NewSubscriptionService(rep.Subscription, rep.Agent, gateway, activity),
		Activity:     activity,
		Analytics:    NewAnalyticsService(rep.Analytics, activity, cfg.Location),
		Media:        NewMediaService(storage, cfg.MaxUploadSize),
	}
}
