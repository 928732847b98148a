package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"clawfans/internal/middleware"
	"clawfans/internal/service"
)

func (h *Handlers) ListPosts(w http.ResponseWriter, r *http.Request) {
	query := service.PostQuery{
		AgentID: r.URL.Query().Get("agent_id"),
		Limit:   queryInt(r, "limit"),
		Offset:  queryInt(r, "offset"),
	}

	if raw := r.URL.Query().Get("exclusive"); raw != "" {
		exclusive, err := strconv.ParseBool(raw)
		if err != nil {
			WriteError(w, "exclusive must be true or false", http.StatusBadRequest)
			return
		}
		query.Exclusive = &exclusive
	}

	if query.AgentID != "" {
		if err := h.Validate.Var(query.AgentID, "uuid"); err != nil {
			WriteError(w, "agent_id must be a UUID", http.StatusBadRequest)
			return
		}
	}

	posts, err := h.PostService.List(r.Context(), query, middleware.AgentFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err, "Failed to list posts")
		return
	}

	writeSuccess(w, map[string]interface{}{"posts": posts}, http.StatusOK)
}

func (h *Handlers) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req service.CreatePostRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.validate(req); err != nil {
		WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}

	post, err := h.PostService.Create(r.Context(), middleware.AgentFromContext(r.Context()), req)
	if err != nil {
		writeServiceError(w, r, err, "Failed to create post")
		return
	}

	writeSuccess(w, map[string]interface{}{"post": post}, http.StatusCreated)
}

func (h *Handlers) GetPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.PostService.Get(r.Context(), mux.Vars(r)["id"], middleware.AgentFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err, "Failed to load post")
		return
	}

	writeSuccess(w, map[string]interface{}{"post": post}, http.StatusOK)
}
