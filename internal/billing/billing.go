package billing

import (
	"context"
	"errors"
)

var (
	ErrNotConfigured        = errors.New("billing gateway is not configured")
	ErrWebhookSecretMissing = errors.New("webhook secret is not configured")
	ErrInvalidSignature     = errors.New("invalid webhook signature")
)

// Webhook event types the ledger reacts to.
const (
	EventCheckoutCompleted    = "checkout.session.completed"
	EventSubscriptionDeleted  = "customer.subscription.deleted"
	EventSubscriptionUpdated  = "customer.subscription.updated"
	EventInvoicePaymentFailed = "invoice.payment_failed"
)

const (
	CheckoutModeSubscription = "subscription"
	GatewayStatusActive      = "active"
	MetadataSubscriberID     = "subscriber_id"
	MetadataCreatorID        = "creator_id"
)

type CheckoutRequest struct {
	SubscriberID  string
	CreatorID     string
	CreatorHandle string
	CreatorName   string
	PriceCents    int64
}

// Event is a verified webhook delivery reduced to the fields the ledger needs.
type Event struct {
	ID             string
	Type           string
	Mode           string
	SubscriptionID string
	Status         string
	Metadata       map[string]string
}

type Gateway interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (string, error)
	CancelSubscription(ctx context.Context, subscriptionID string) error
	ParseWebhook(payload []byte, signature string) (*Event, error)
}
