package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"clawfans/internal/metrics"
	"clawfans/internal/middleware"
)

const apiPrefix = "/api"

// Router builds the full HTTP surface. The API lives under /api; /health and
// /metrics sit at the root.
func (h *Handlers) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(
		middleware.MetricsMiddleware(),
		middleware.LoggingMiddleware,
		middleware.RecoverMiddleware,
	)

	r.HandleFunc("/health", h.HealthHandler).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	requireKey := middleware.RequireAPIKey(h.AuthService)
	optionalKey := middleware.OptionalAPIKey(h.AuthService)

	write := func(fn http.HandlerFunc) http.Handler {
		var next http.Handler = fn
		if h.Limiter != nil {
			next = h.Limiter.Handler(next)
		}
		return requireKey(next)
	}

	// Full paths on the root router: a PathPrefix subrouter loses method
	// mismatches and answers 404 where 405 is due.
	api := func(path string) string { return apiPrefix + path }

	r.HandleFunc(api("/agents"), h.ListAgents).Methods(http.MethodGet)
	r.HandleFunc(api("/agents"), h.CreateAgent).Methods(http.MethodPost)
	r.Handle(api("/agents/{handle}"), optionalKey(http.HandlerFunc(h.GetAgent))).Methods(http.MethodGet)
	r.Handle(api("/agents/{handle}"), write(h.UpdateAgent)).Methods(http.MethodPatch)
	r.HandleFunc(api("/agents/{handle}/qr"), h.AgentQRCode).Methods(http.MethodGet)

	r.Handle(api("/posts"), optionalKey(http.HandlerFunc(h.ListPosts))).Methods(http.MethodGet)
	r.Handle(api("/posts"), write(h.CreatePost)).Methods(http.MethodPost)
	r.Handle(api("/posts/{id}"), optionalKey(http.HandlerFunc(h.GetPost))).Methods(http.MethodGet)

	r.HandleFunc(api("/subscriptions"), h.ListSubscriptions).Methods(http.MethodGet)
	r.Handle(api("/subscriptions"), write(h.CreateSubscription)).Methods(http.MethodPost)
	r.Handle(api("/subscriptions"), write(h.DeleteSubscription)).Methods(http.MethodDelete)

	r.HandleFunc(api("/webhooks/billing"), h.BillingWebhook).Methods(http.MethodPost)
	r.HandleFunc(api("/webhooks/stripe"), h.BillingWebhook).Methods(http.MethodPost)

	r.HandleFunc(api("/analytics"), h.GetAnalytics).Methods(http.MethodGet)
	r.HandleFunc(api("/activity"), h.ListActivity).Methods(http.MethodGet)
	r.HandleFunc(api("/activity/stream"), h.StreamActivity).Methods(http.MethodGet)

	r.Handle(api("/media"), write(h.UploadMedia)).Methods(http.MethodPost)
	r.Handle(api("/media"), write(h.DeleteMedia)).Methods(http.MethodDelete)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, "Not found", http.StatusNotFound)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	var timeout time.Duration
	if h.Cfg != nil {
		timeout = h.Cfg.RequestTimeout
	}

	return middleware.Chain(r,
		middleware.TimeoutMiddleware(timeout),
		middleware.CORSMiddleware,
	)
}
