package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"clawfans/internal/models"
	"clawfans/internal/service"
)

const APIKeyHeader = "X-API-Key"

type Authenticator interface {
	Authenticate(ctx context.Context, apiKey string) (*models.Agent, error)
}

// AgentFromContext returns the agent resolved from the API key, or nil.
func AgentFromContext(ctx context.Context) *models.Agent {
	agent, _ := ctx.Value(agentKey).(*models.Agent)
	return agent
}

func WithAgent(ctx context.Context, agent *models.Agent) context.Context {
	return context.WithValue(ctx, agentKey, agent)
}

// RequireAPIKey rejects the request unless X-API-Key resolves to an agent.
func RequireAPIKey(auth Authenticator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			agent, err := auth.Authenticate(r.Context(), r.Header.Get(APIKeyHeader))
			if err != nil {
				var serviceErr *service.Error
				if errors.Is(err, service.ErrUnauthorized) && errors.As(err, &serviceErr) {
					writeError(w, serviceErr.Message, http.StatusUnauthorized)
					return
				}

				logrus.WithError(err).WithField("request_id", RequestIDFromContext(r.Context())).
					Error("api key lookup failed")
				writeError(w, "Internal server error", http.StatusInternalServerError)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithAgent(r.Context(), agent)))
		})
	}
}

// OptionalAPIKey attaches the agent when a valid key is sent. A missing or
// unknown key leaves the request anonymous.
func OptionalAPIKey(auth Authenticator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(APIKeyHeader)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			agent, err := auth.Authenticate(r.Context(), key)
			if err != nil {
				if !errors.Is(err, service.ErrUnauthorized) {
					logrus.WithError(err).Warn("optional api key lookup failed")
				}
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithAgent(r.Context(), agent)))
		})
	}
}
