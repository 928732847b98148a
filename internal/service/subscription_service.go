package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"clawfans/internal/billing"
	"clawfans/internal/metrics"
	"clawfans/internal/models"
	"clawfans/internal/repository"
)

// Webhook outcomes reported to metrics.
const (
	outcomeApplied   = "applied"
	outcomeDuplicate = "duplicate"
	outcomeIgnored   = "ignored"
	outcomeRejected  = "rejected"
	outcomeFailed    = "failed"
)

// SubscribeResult holds either the activated free subscription or the
// checkout URL of a paid one.
type SubscribeResult struct {
	Subscription *models.Subscription
	CheckoutURL  string
}

type SubscriptionService interface {
	Subscribe(ctx context.Context, subscriber *models.Agent, creatorID string) (*SubscribeResult, error)
	Unsubscribe(ctx context.Context, subscriber *models.Agent, creatorID string) error
	List(ctx context.Context, filter repository.SubscriptionFilter) ([]models.SubscriptionView, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

type subscriptionService struct {
	subscriptionRepo repository.SubscriptionRepository
	agentRepo        repository.AgentRepository
	gateway          billing.Gateway
	activity         ActivityService
}

func NewSubscriptionService(
	subscriptionRepo repository.SubscriptionRepository,
	agentRepo repository.AgentRepository,
	gateway billing.Gateway,
	activity ActivityService,
) SubscriptionService {
	return &subscriptionService{
		subscriptionRepo: subscriptionRepo,
		agentRepo:        agentRepo,
		gateway:          gateway,
		activity:         activity,
	}
}

func (s *subscriptionService) Subscribe(ctx context.Context, subscriber *models.Agent, creatorID string) (*SubscribeResult, error) {
	if creatorID == "" {
		return nil, newError(ErrValidation, "creator_id is required")
	}

	if creatorID == subscriber.ID {
		return nil, newError(ErrValidation, "Cannot subscribe to yourself")
	}

	if _, err := uuid.Parse(creatorID); err != nil {
		return nil, newError(ErrNotFound, "Creator not found")
	}

	creator, err := s.agentRepo.GetByID(ctx, creatorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(ErrNotFound, "Creator not found")
		}
		return nil, err
	}

	existing, err := s.subscriptionRepo.GetByPair(ctx, subscriber.ID, creator.ID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if existing != nil && existing.IsActive() {
		return nil, newError(ErrConflict, "Already subscribed")
	}

	if creator.IsFree() {
		sub, err := s.subscriptionRepo.Upsert(ctx, &models.Subscription{
			SubscriberID: subscriber.ID,
			CreatorID:    creator.ID,
			Status:       models.SubscriptionActive,
			IsFree:       true,
		})
		if err != nil {
			return nil, err
		}

		metrics.RecordSubscriptionCreated(true)
		s.activity.Record(ctx, models.EventSubscription, subscriber.ID, &creator.ID, models.Metadata{"is_free": true})

		return &SubscribeResult{Subscription: sub}, nil
	}

	checkoutURL, err := s.gateway.CreateCheckoutSession(ctx, billing.CheckoutRequest{
		SubscriberID:  subscriber.ID,
		CreatorID:     creator.ID,
		CreatorHandle: creator.TwitterHandle,
		CreatorName:   creator.DisplayName,
		PriceCents:    creator.SubscriptionPriceCents,
	})
	if err != nil {
		return nil, err
	}

	return &SubscribeResult{CheckoutURL: checkoutURL}, nil
}

// Unsubscribe cancels the gateway subscription first; the local row is left
// untouched when that fails.
func (s *subscriptionService) Unsubscribe(ctx context.Context, subscriber *models.Agent, creatorID string) error {
	if creatorID == "" {
		return newError(ErrValidation, "creator_id is required")
	}

	if _, err := uuid.Parse(creatorID); err != nil {
		return newError(ErrNotFound, "Subscription not found")
	}

	sub, err := s.subscriptionRepo.GetByPair(ctx, subscriber.ID, creatorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return newError(ErrNotFound, "Subscription not found")
		}
		return err
	}

	if sub.StripeSubscriptionID != nil && sub.Status != models.SubscriptionCanceled {
		if err := s.gateway.CancelSubscription(ctx, *sub.StripeSubscriptionID); err != nil {
			return err
		}
	}

	return s.subscriptionRepo.UpdateStatus(ctx, sub.ID, models.SubscriptionCanceled)
}

func (s *subscriptionService) List(ctx context.Context, filter repository.SubscriptionFilter) ([]models.SubscriptionView, error) {
	return s.subscriptionRepo.ListActive(ctx, filter)
}

func (s *subscriptionService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.gateway.ParseWebhook(payload, signature)
	if err != nil {
		if errors.Is(err, billing.ErrInvalidSignature) || errors.Is(err, billing.ErrWebhookSecretMissing) {
			logrus.WithError(err).Warn("rejected billing webhook")
			metrics.RecordWebhook("", outcomeRejected)
			if signature == "" {
				return newError(ErrInvalidSignature, "Missing signature")
			}
			return newError(ErrInvalidSignature, "Invalid signature")
		}
		metrics.RecordWebhook("", outcomeFailed)
		return err
	}

	log := logrus.WithFields(logrus.Fields{
		"event_id":        event.ID,
		"event_type":      event.Type,
		"subscription_id": event.SubscriptionID,
	})

	var outcome string
	switch event.Type {
	case billing.EventCheckoutCompleted:
		outcome, err = s.applyCheckout(ctx, event)
	case billing.EventSubscriptionDeleted:
		outcome, err = s.setStatusByReference(ctx, event.SubscriptionID, models.SubscriptionCanceled)
	case billing.EventSubscriptionUpdated:
		status := models.SubscriptionInactive
		if event.Status == billing.GatewayStatusActive {
			status = models.SubscriptionActive
		}
		outcome, err = s.setStatusByReference(ctx, event.SubscriptionID, status)
	case billing.EventInvoicePaymentFailed:
		outcome, err = s.setStatusByReference(ctx, event.SubscriptionID, models.SubscriptionPastDue)
	default:
		outcome = outcomeIgnored
	}

	if err != nil {
		metrics.RecordWebhook(event.Type, outcomeFailed)
		log.WithError(err).Error("failed to apply billing webhook")
		return err
	}

	metrics.RecordWebhook(event.Type, outcome)
	log.WithField("outcome", outcome).Info("billing webhook processed")
	return nil
}

func (s *subscriptionService) applyCheckout(ctx context.Context, event *billing.Event) (string, error) {
	if event.Mode != billing.CheckoutModeSubscription || event.SubscriptionID == "" {
		return outcomeIgnored, nil
	}

	subscriberID := event.Metadata[billing.MetadataSubscriberID]
	creatorID := event.Metadata[billing.MetadataCreatorID]
	if subscriberID == "" || creatorID == "" || subscriberID == creatorID {
		return outcomeIgnored, nil
	}
	// Metadata the store can never accept would fail on every redelivery.
	if _, err := uuid.Parse(subscriberID); err != nil {
		return outcomeIgnored, nil
	}
	if _, err := uuid.Parse(creatorID); err != nil {
		return outcomeIgnored, nil
	}

	existing, err := s.subscriptionRepo.GetByStripeID(ctx, event.SubscriptionID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return "", err
	}
	if existing != nil && existing.IsActive() {
		return outcomeDuplicate, nil
	}

	stripeID := event.SubscriptionID
	_, err = s.subscriptionRepo.Upsert(ctx, &models.Subscription{
		SubscriberID:         subscriberID,
		CreatorID:            creatorID,
		StripeSubscriptionID: &stripeID,
		Status:               models.SubscriptionActive,
		IsFree:               false,
	})
	if err != nil {
		return "", err
	}

	metrics.RecordSubscriptionCreated(false)
	s.activity.Record(ctx, models.EventSubscription, subscriberID, &creatorID, models.Metadata{"is_free": false})

	return outcomeApplied, nil
}

// setStatusByReference is a no-op when no row carries the reference.
func (s *subscriptionService) setStatusByReference(ctx context.Context, stripeSubscriptionID, status string) (string, error) {
	if stripeSubscriptionID == "" {
		return outcomeIgnored, nil
	}

	updated, err := s.subscriptionRepo.UpdateStatusByStripeID(ctx, stripeSubscriptionID, status)
	if err != nil {
		return "", err
	}

	if updated == 0 {
		return outcomeIgnored, nil
	}
	return outcomeApplied, nil
}
