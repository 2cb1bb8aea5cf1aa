package http

import (
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/varunrmantri23/nexacode/internal/core"
	"github.com/varunrmantri23/nexacode/internal/session"
)

type openSessionRequest struct {
	ProjectID string `json:"project_id"`
}

type renameSessionRequest struct {
	Title string `json:"title"`
}

func (h *handler) openSession(w http.ResponseWriter, r *http.Request) {
	var req openSessionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	s, err := h.sessions.Open(r.Context(), currentUser(r), req.ProjectID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.Snapshot())
}

func (h *handler) lookupSession(r *http.Request) (*session.Session, error) {
	return h.sessions.Lookup(chi.URLParam(r, "id"), currentUser(r))
}

func (h *handler) getSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.lookupSession(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.Snapshot())
}

func (h *handler) renameSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.lookupSession(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	var req renameSessionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	if err := s.SetTitle(req.Title); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.Snapshot())
}

// updateSource replaces one buffer with the raw request body. The preview
// catches up once the buffer has been quiet for the quiescence interval.
func (h *handler) updateSource(w http.ResponseWriter, r *http.Request) {
	s, err := h.lookupSession(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	kind, err := core.ParseBufferKind(chi.URLParam(r, "kind"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxSourceBytes))
	if err != nil {
		h.writeError(w, fmt.Errorf("%w: %v", core.ErrInvalidInput, err))
		return
	}
	if err := s.Update(kind, string(body)); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *handler) saveSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.lookupSession(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	p, err := h.sessions.Save(r.Context(), s)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *handler) closeSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.lookupSession(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.sessions.Close(s.ID); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
