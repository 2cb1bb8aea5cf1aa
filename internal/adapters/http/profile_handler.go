package http

import "net/http"

type updateProfileRequest struct {
	DisplayName string `json:"display_name"`
}

func (h *handler) getProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profiles.Get(r.Context(), currentUser(r).UID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	u, err := h.profiles.UpdateDisplayName(r.Context(), currentUser(r).UID, req.DisplayName)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}
