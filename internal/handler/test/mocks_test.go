package test

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"clawfans/internal/models"
	"clawfans/internal/repository"
	"clawfans/internal/service"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) GenerateAPIKey() (string, string, error) {
	args := m.Called()
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockAuthService) Authenticate(ctx context.Context, apiKey string) (*models.Agent, error) {
	args := m.Called(ctx, apiKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Agent), args.Error(1)
}

type MockAgentService struct {
	mock.Mock
}

func (m *MockAgentService) Register(ctx context.Context, req service.RegisterAgentRequest) (*service.RegisteredAgent, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RegisteredAgent), args.Error(1)
}

func (m *MockAgentService) List(ctx context.Context, limit, offset int) ([]models.Agent, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Agent), args.Error(1)
}

func (m *MockAgentService) Profile(ctx context.Context, handle string, viewer *models.Agent) (*models.AgentProfile, error) {
	args := m.Called(ctx, handle, viewer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AgentProfile), args.Error(1)
}

func (m *MockAgentService) Update(ctx context.Context, caller *models.Agent, handle string, req service.UpdateAgentRequest) (*models.Agent, error) {
	args := m.Called(ctx, caller, handle, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Agent), args.Error(1)
}

func (m *MockAgentService) ProfileQRCode(ctx context.Context, handle string) ([]byte, error) {
	args := m.Called(ctx, handle)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type MockPostService struct {
	mock.Mock
}

func (m *MockPostService) Create(ctx context.Context, author *models.Agent, req service.CreatePostRequest) (*models.PostView, error) {
	args := m.Called(ctx, author, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PostView), args.Error(1)
}

func (m *MockPostService) List(ctx context.Context, query service.PostQuery, viewer *models.Agent) ([]models.PostView, error) {
	args := m.Called(ctx, query, viewer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PostView), args.Error(1)
}

func (m *MockPostService) Get(ctx context.Context, postID string, viewer *models.Agent) (*models.PostView, error) {
	args := m.Called(ctx, postID, viewer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PostView), args.Error(1)
}

type MockSubscriptionService struct {
	mock.Mock
}

func (m *MockSubscriptionService) Subscribe(ctx context.Context, subscriber *models.Agent, creatorID string) (*service.SubscribeResult, error) {
	args := m.Called(ctx, subscriber, creatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SubscribeResult), args.Error(1)
}

func (m *MockSubscriptionService) Unsubscribe(ctx context.Context, subscriber *models.Agent, creatorID string) error {
	args := m.Called(ctx, subscriber, creatorID)
	return args.Error(0)
}

func (m *MockSubscriptionService) List(ctx context.Context, filter repository.SubscriptionFilter) ([]models.SubscriptionView, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SubscriptionView), args.Error(1)
}

func (m *MockSubscriptionService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	args := m.Called(ctx, payload, signature)
	return args.Error(0)
}

type MockActivityService struct {
	mock.Mock
}

func (m *MockActivityService) Record(ctx context.Context, eventType, actorID string, targetID *string, metadata models.Metadata) {
	m.Called(ctx, eventType, actorID, targetID, metadata)
}

func (m *MockActivityService) Recent(ctx context.Context, limit int) ([]models.ActivityView, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ActivityView), args.Error(1)
}

func (m *MockActivityService) Since(ctx context.Context, since time.Time, limit int) ([]models.ActivityView, error) {
	args := m.Called(ctx, since, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ActivityView), args.Error(1)
}

type MockAnalyticsService struct {
	mock.Mock
}

func (m *MockAnalyticsService) Dashboard(ctx context.Context) (*models.Analytics, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Analytics), args.Error(1)
}

type MockMediaService struct {
	mock.Mock
}

func (m *MockMediaService) Upload(ctx context.Context, owner *models.Agent, fileName string, file io.Reader, size int64) (*models.Media, error) {
	args := m.Called(ctx, owner, fileName, file, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Media), args.Error(1)
}

func (m *MockMediaService) Delete(ctx context.Context, owner *models.Agent, objectName string) error {
	args := m.Called(ctx, owner, objectName)
	return args.Error(0)
}

type MockHealthChecker struct {
	mock.Mock
}

func (m *MockHealthChecker) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
