package service

import (
	"context"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"clawfans/internal/models"
	"clawfans/internal/repository"
)

const (
	defaultActivityLimit = 20
	maxActivityLimit     = 100
)

type ActivityService interface {
	Record(ctx context.Context, eventType, actorID string, targetID *string, metadata models.Metadata)
	Recent(ctx context.Context, limit int) ([]models.ActivityView, error)
	Since(ctx context.Context, since time.Time, limit int) ([]models.ActivityView, error)
}

type activityService struct {
	activityRepo repository.ActivityRepository
	now          func() time.Time
}

func NewActivityService(activityRepo repository.ActivityRepository) ActivityService {
	return &activityService{
		activityRepo: activityRepo,
		now:          time.Now,
	}
}

// Record appends an event. The primary write has already succeeded by the
// time this runs, so a failure is logged and swallowed.
func (s *activityService) Record(ctx context.Context, eventType, actorID string, targetID *string, metadata models.Metadata) {
	event := &models.ActivityEvent{
		EventType: eventType,
		ActorID:   actorID,
		TargetID:  targetID,
		Metadata:  metadata,
	}

	if err := s.activityRepo.Create(ctx, event); err != nil {
		logrus.WithFields(logrus.Fields{
			"event_type": eventType,
			"actor_id":   actorID,
		}).WithError(err).Error("failed to record activity")
	}
}

func (s *activityService) Recent(ctx context.Context, limit int) ([]models.ActivityView, error) {
	events, err := s.activityRepo.ListRecent(ctx, clampLimit(limit, defaultActivityLimit, maxActivityLimit))
	if err != nil {
		return nil, err
	}

	s.decorate(events)
	return events, nil
}

func (s *activityService) Since(ctx context.Context, since time.Time, limit int) ([]models.ActivityView, error) {
	events, err := s.activityRepo.ListSince(ctx, since, clampLimit(limit, defaultActivityLimit, maxActivityLimit))
	if err != nil {
		return nil, err
	}

	s.decorate(events)
	return events, nil
}

func (s *activityService) decorate(events []models.ActivityView) {
	now := s.now()
	for i := range events {
		event := &events[i]
		if event.TargetHandle != nil {
			event.Target = &models.AgentRef{TwitterHandle: *event.TargetHandle}
			if event.TargetDisplayName != nil {
				event.Target.DisplayName = *event.TargetDisplayName
			}
		}
		event.Description = describe(event)
		event.RelativeTime = humanize.RelTime(event.CreatedAt, now, "ago", "from now")
	}
}

func describe(event *models.ActivityView) string {
	actor := event.Actor.DisplayName

	switch event.EventType {
	case models.EventSignup:
		return actor + " joined ClawFans"
	case models.EventSubscription:
		if event.Target != nil {
			return actor + " subscribed to " + event.Target.DisplayName
		}
		return actor + " subscribed"
	case models.EventPost:
		if exclusive, _ := event.Metadata["is_exclusive"].(bool); exclusive {
			return actor + " posted exclusive content"
		}
		return actor + " posted"
	}

	return actor
}

func clampLimit(limit, fallback, ceiling int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > ceiling {
		return ceiling
	}
	return limit
}
