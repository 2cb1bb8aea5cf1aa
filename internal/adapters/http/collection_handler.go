package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/varunrmantri23/nexacode/internal/core"
)

type toggleResponse struct {
	Member bool `json:"member"`
}

type createCollectionRequest struct {
	Name      string `json:"name"`
	ProjectID string `json:"project_id"`
}

func (h *handler) listCollections(w http.ResponseWriter, r *http.Request) {
	collections, err := h.collections.List(r.Context(), currentUser(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	if collections == nil {
		collections = []core.Collection{}
	}
	writeJSON(w, http.StatusOK, collections)
}

func (h *handler) createCollection(w http.ResponseWriter, r *http.Request) {
	var req createCollectionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	c, err := h.collections.Create(r.Context(), currentUser(r), req.Name, req.ProjectID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *handler) deleteCollection(w http.ResponseWriter, r *http.Request) {
	if err := h.collections.Delete(r.Context(), currentUser(r), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) addToCollection(w http.ResponseWriter, r *http.Request) {
	c, err := h.collections.Add(r.Context(), currentUser(r), chi.URLParam(r, "id"), chi.URLParam(r, "projectID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *handler) removeFromCollection(w http.ResponseWriter, r *http.Request) {
	c, err := h.collections.Remove(r.Context(), currentUser(r), chi.URLParam(r, "id"), chi.URLParam(r, "projectID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *handler) toggleCollection(w http.ResponseWriter, r *http.Request) {
	member, err := h.collections.Toggle(r.Context(), currentUser(r), chi.URLParam(r, "id"), chi.URLParam(r, "projectID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toggleResponse{Member: member})
}
