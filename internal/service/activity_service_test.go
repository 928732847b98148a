package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"clawfans/internal/models"
)

func TestActivityService_Record(t *testing.T) {
	t.Run("appends event", func(t *testing.T) {
		repo := new(MockActivityRepository)
		target := "a-2"
		repo.On("Create", mock.Anything, mock.MatchedBy(func(e *models.ActivityEvent) bool {
			return e.EventType == models.EventSubscription && e.ActorID == "a-1" && *e.TargetID == target && e.Metadata["is_free"] == true
		})).Return(nil)

		NewActivityService(repo).Record(context.Background(), models.EventSubscription, "a-1", &target, models.Metadata{"is_free": true})

		repo.AssertExpectations(t)
	})

	t.Run("store failure is swallowed", func(t *testing.T) {
		repo := new(MockActivityRepository)
		repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("insert failed"))

		assert.NotPanics(t, func() {
			NewActivityService(repo).Record(context.Background(), models.EventSignup, "a-1", nil, nil)
		})
		repo.AssertExpectations(t)
	})
}

func TestActivityService_Recent(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	bobHandle, bobName := "bob", "Bob"

	repo := new(MockActivityRepository)
	repo.On("ListRecent", mock.Anything, 20).Return([]models.ActivityView{
		{
			ActivityEvent:     models.ActivityEvent{EventType: models.EventSubscription, CreatedAt: now.Add(-5 * time.Minute)},
			Actor:             models.AgentSummary{DisplayName: "Alice"},
			TargetHandle:      &bobHandle,
			TargetDisplayName: &bobName,
		},
		{
			ActivityEvent: models.ActivityEvent{EventType: models.EventPost, Metadata: models.Metadata{"is_exclusive": true}, CreatedAt: now.Add(-2 * time.Hour)},
			Actor:         models.AgentSummary{DisplayName: "Bob"},
		},
		{
			ActivityEvent: models.ActivityEvent{EventType: models.EventPost, Metadata: models.Metadata{"is_exclusive": false}, CreatedAt: now.Add(-3 * 24 * time.Hour)},
			Actor:         models.AgentSummary{DisplayName: "Bob"},
		},
		{
			ActivityEvent: models.ActivityEvent{EventType: models.EventSignup, CreatedAt: now},
			Actor:         models.AgentSummary{DisplayName: "Carol"},
		},
	}, nil)

	svc := &activityService{activityRepo: repo, now: func() time.Time { return now }}

	events, err := svc.Recent(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, events, 4)

	assert.Equal(t, "Alice subscribed to Bob", events[0].Description)
	require.NotNil(t, events[0].Target)
	assert.Equal(t, "bob", events[0].Target.TwitterHandle)
	assert.Equal(t, "5 minutes ago", events[0].RelativeTime)

	assert.Equal(t, "Bob posted exclusive content", events[1].Description)
	assert.Nil(t, events[1].Target)
	assert.Equal(t, "2 hours ago", events[1].RelativeTime)

	assert.Equal(t, "Bob posted", events[2].Description)
	assert.Equal(t, "3 days ago", events[2].RelativeTime)

	assert.Equal(t, "Carol joined ClawFans", events[3].Description)
	assert.Equal(t, "now", events[3].RelativeTime)

	repo.AssertExpectations(t)
}

func TestActivityService_Since(t *testing.T) {
	since := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	repo := new(MockActivityRepository)
	repo.On("ListSince", mock.Anything, since, 100).Return([]models.ActivityView{}, nil)

	events, err := NewActivityService(repo).Since(context.Background(), since, 1000)

	require.NoError(t, err)
	assert.Empty(t, events)
	repo.AssertExpectations(t)
}

func TestClampLimit(t *testing.T) {
	tests := []struct {
		limit    int
		expected int
	}{
		{limit: -1, expected: 20},
		{limit: 0, expected: 20},
		{limit: 1, expected: 1},
		{limit: 100, expected: 100},
		{limit: 101, expected: 100},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, clampLimit(tt.limit, 20, 100), "limit %d", tt.limit)
	}
}
