package handlers

import (
	"context"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"

	"clawfans/internal/config"
	"clawfans/internal/middleware"
	"clawfans/internal/service"
)

type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type Handlers struct {
	AuthService         service.AuthService
	AgentService        service.AgentService
	PostService         service.PostService
	SubscriptionService service.SubscriptionService
	ActivityService     service.ActivityService
	AnalyticsService    service.AnalyticsService
	MediaService        service.MediaService
	Health              HealthChecker
	Limiter             *middleware.RateLimiter
	Upgrader            websocket.Upgrader
	Cfg                 *config.Config
	Validate            *validator.Validate
}

func NewHandlers(service *service.Service, health HealthChecker, config *config.Config) *Handlers {
	return &Handlers{
		AuthService:         service.Auth,
		AgentService:        service.Agent,
		PostService:         service.Post,
		SubscriptionService: service.Subscription,
		ActivityService:     service.Activity,
		AnalyticsService:    service.Analytics,
		MediaService:        service.Media,
		Health:              health,
		Limiter:             middleware.NewRateLimiter(config.RateLimit.RPS, config.RateLimit.Burst),
		Upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		Cfg:      config,
		Validate: NewValidator(),
	}
}

// NewValidator reports field errors under their JSON names.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}
