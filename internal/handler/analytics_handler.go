package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

func (h *Handlers) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	analytics, err := h.AnalyticsService.Dashboard(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "Failed to fetch analytics")
		return
	}

	writeSuccess(w, analytics, http.StatusOK)
}

func (h *Handlers) HealthHandler(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok", "database": "ok"}

	if h.Health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := h.Health.HealthCheck(ctx); err != nil {
			logrus.WithError(err).Warn("health check failed")
			status["status"] = "degraded"
			status["database"] = "unavailable"
			writeSuccess(w, status, http.StatusServiceUnavailable)
			return
		}
	}

	writeSuccess(w, status, http.StatusOK)
}
