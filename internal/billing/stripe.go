package billing

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"

	"clawfans/internal/config"
)

type StripeGateway struct {
	api           *client.API
	webhookSecret string
	currency      string
	appURL        string
}

func NewStripeGateway(cfg config.Stripe, appURL string) *StripeGateway {
	return newStripeGateway(cfg, appURL, nil)
}

// newStripeGateway builds a gateway against the given backends; nil means
// the live Stripe API. Network retries are disabled.
func newStripeGateway(cfg config.Stripe, appURL string, backends *stripe.Backends) *StripeGateway {
	if backends == nil {
		backendConfig := &stripe.BackendConfig{MaxNetworkRetries: stripe.Int64(0)}
		backends = &stripe.Backends{
			API:     stripe.GetBackendWithConfig(stripe.APIBackend, backendConfig),
			Connect: stripe.GetBackendWithConfig(stripe.ConnectBackend, backendConfig),
			Uploads: stripe.GetBackendWithConfig(stripe.UploadsBackend, backendConfig),
		}
	}

	api := &client.API{}
	if cfg.SecretKey != "" {
		api.Init(cfg.SecretKey, backends)
	}

	if cfg.SecretKey == "" {
		logrus.Warn("STRIPE_SECRET_KEY is not set, paid subscriptions are disabled")
	}
	if cfg.WebhookSecret == "" {
		logrus.Warn("STRIPE_WEBHOOK_SECRET is not set, webhooks will be rejected")
	}

	return &StripeGateway{
		api:           api,
		webhookSecret: cfg.WebhookSecret,
		currency:      cfg.Currency,
		appURL:        appURL,
	}
}

func (g *StripeGateway) configured() bool {
	return g.api.CheckoutSessions != nil
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (string, error) {
	if !g.configured() {
		return "", ErrNotConfigured
	}

	profileURL := fmt.Sprintf("%s/agent/%s", g.appURL, req.CreatorHandle)

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(CheckoutModeSubscription),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(g.currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String("Subscription to " + req.CreatorName),
						Description: stripe.String("Exclusive content from @" + req.CreatorHandle),
					},
					UnitAmount: stripe.Int64(req.PriceCents),
					Recurring: &stripe.CheckoutSessionLineItemPriceDataRecurringParams{
						Interval: stripe.String("month"),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(profileURL + "?subscribed=true"),
		CancelURL:  stripe.String(profileURL + "?subscribed=false"),
	}
	params.Context = ctx
	params.AddMetadata(MetadataSubscriberID, req.SubscriberID)
	params.AddMetadata(MetadataCreatorID, req.CreatorID)

	session, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}

	return session.URL, nil
}

func (g *StripeGateway) CancelSubscription(ctx context.Context, subscriptionID string) error {
	if !g.configured() {
		return ErrNotConfigured
	}

	params := &stripe.SubscriptionCancelParams{}
	params.Context = ctx

	if _, err := g.api.Subscriptions.Cancel(subscriptionID, params); err != nil {
		return fmt.Errorf("failed to cancel subscription %s: %w", subscriptionID, err)
	}

	return nil
}

// ParseWebhook verifies the Stripe-Signature header and decodes the object
// of the event types the ledger handles. Other types come back with only ID
// and Type set.
func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (*Event, error) {
	if g.webhookSecret == "" {
		return nil, ErrWebhookSecretMissing
	}

	if signature == "" {
		return nil, fmt.Errorf("%w: missing signature", ErrInvalidSignature)
	}

	raw, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	event := &Event{ID: raw.ID, Type: string(raw.Type)}
	if raw.Data == nil {
		return event, nil
	}

	switch event.Type {
	case EventCheckoutCompleted:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(raw.Data.Raw, &session); err != nil {
			return nil, fmt.Errorf("failed to decode checkout session: %w", err)
		}
		event.Mode = string(session.Mode)
		event.Metadata = session.Metadata
		if session.Subscription != nil {
			event.SubscriptionID = session.Subscription.ID
		}

	case EventSubscriptionDeleted, EventSubscriptionUpdated:
		var sub stripe.Subscription
		if err := json.Unmarshal(raw.Data.Raw, &sub); err != nil {
			return nil, fmt.Errorf("failed to decode subscription: %w", err)
		}
		event.SubscriptionID = sub.ID
		event.Status = string(sub.Status)

	case EventInvoicePaymentFailed:
		var invoice stripe.Invoice
		if err := json.Unmarshal(raw.Data.Raw, &invoice); err != nil {
			return nil, fmt.Errorf("failed to decode invoice: %w", err)
		}
		if invoice.Subscription != nil {
			event.SubscriptionID = invoice.Subscription.ID
		}
	}

	return event, nil
}
