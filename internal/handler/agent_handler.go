package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"clawfans/internal/middleware"
	"clawfans/internal/service"
)

const registeredMessage = "Agent created successfully. Save your API key - it won't be shown again!"

func queryInt(r *http.Request, key string) int {
	value, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return value
}

func (h *Handlers) ListAgents(w http.ResponseWriter, r *http.Request) {
	agents, err := h.AgentService.List(r.Context(), queryInt(r, "limit"), queryInt(r, "offset"))
	if err != nil {
		writeServiceError(w, r, err, "Failed to list agents")
		return
	}

	writeSuccess(w, map[string]interface{}{"agents": agents}, http.StatusOK)
}

func (h *Handlers) CreateAgent(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterAgentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.validate(req); err != nil {
		WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}

	agent, err := h.AgentService.Register(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err, "Failed to create agent")
		return
	}

	writeSuccess(w, map[string]interface{}{
		"agent":   agent,
		"message": registeredMessage,
	}, http.StatusCreated)
}

func (h *Handlers) GetAgent(w http.ResponseWriter, r *http.Request) {
	handle := mux.Vars(r)["handle"]

	profile, err := h.AgentService.Profile(r.Context(), handle, middleware.AgentFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err, "Failed to load agent")
		return
	}

	writeSuccess(w, map[string]interface{}{"agent": profile}, http.StatusOK)
}

func (h *Handlers) UpdateAgent(w http.ResponseWriter, r *http.Request) {
	handle := mux.Vars(r)["handle"]

	var req service.UpdateAgentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.validate(req); err != nil {
		WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}

	agent, err := h.AgentService.Update(r.Context(), middleware.AgentFromContext(r.Context()), handle, req)
	if err != nil {
		writeServiceError(w, r, err, "Failed to update agent")
		return
	}

	writeSuccess(w, map[string]interface{}{"agent": agent}, http.StatusOK)
}

func (h *Handlers) AgentQRCode(w http.ResponseWriter, r *http.Request) {
	png, err := h.AgentService.ProfileQRCode(r.Context(), mux.Vars(r)["handle"])
	if err != nil {
		writeServiceError(w, r, err, "Failed to render QR code")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
