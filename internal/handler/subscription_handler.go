package handlers

import (
	"net/http"

	"clawfans/internal/middleware"
	"clawfans/internal/repository"
)

type SubscriptionRequest struct {
	CreatorID string `json:"creator_id"`
}

func (h *Handlers) ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	filter := repository.SubscriptionFilter{
		SubscriberID: r.URL.Query().Get("subscriber_id"),
		CreatorID:    r.URL.Query().Get("creator_id"),
	}

	for name, value := range map[string]string{"subscriber_id": filter.SubscriberID, "creator_id": filter.CreatorID} {
		if value != "" && h.Validate.Var(value, "uuid") != nil {
			WriteError(w, name+" must be a UUID", http.StatusBadRequest)
			return
		}
	}

	subs, err := h.SubscriptionService.List(r.Context(), filter)
	if err != nil {
		writeServiceError(w, r, err, "Failed to list subscriptions")
		return
	}

	writeSuccess(w, map[string]interface{}{"subscriptions": subs}, http.StatusOK)
}

func (h *Handlers) CreateSubscription(w http.ResponseWriter, r *http.Request) {
	var req SubscriptionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.SubscriptionService.Subscribe(r.Context(), middleware.AgentFromContext(r.Context()), req.CreatorID)
	if err != nil {
		writeServiceError(w, r, err, "Failed to create subscription")
		return
	}

	if result.Subscription != nil {
		writeSuccess(w, map[string]interface{}{
			"subscription": result.Subscription,
			"message":      "Subscribed successfully (free)",
		}, http.StatusCreated)
		return
	}

	writeSuccess(w, map[string]interface{}{
		"checkout_url": result.CheckoutURL,
		"message":      "Redirect to checkout to complete subscription",
	}, http.StatusOK)
}

func (h *Handlers) DeleteSubscription(w http.ResponseWriter, r *http.Request) {
	var req SubscriptionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.SubscriptionService.Unsubscribe(r.Context(), middleware.AgentFromContext(r.Context()), req.CreatorID); err != nil {
		writeServiceError(w, r, err, "Failed to unsubscribe")
		return
	}

	writeSuccess(w, map[string]interface{}{"message": "Unsubscribed successfully"}, http.StatusOK)
}
