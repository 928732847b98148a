package handlers

import (
	"io"
	"net/http"
)

const (
	signatureHeader = "Stripe-Signature"
	maxWebhookBytes = 65536
)

func (h *Handlers) BillingWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBytes))
	if err != nil {
		WriteError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.SubscriptionService.HandleWebhook(r.Context(), payload, r.Header.Get(signatureHeader)); err != nil {
		writeServiceError(w, r, err, "Webhook handler failed")
		return
	}

	writeSuccess(w, map[string]bool{"received": true}, http.StatusOK)
}
