package apihttp

import (
	"encoding/json"
	"errors"
	"net/http"

	"cryptoinvoice-pro/internal/profile"
)

// ProfileHandler serves the issuer profile.
type ProfileHandler struct {
	store profile.Store
}

// NewProfileHandler constructs a ProfileHandler.
func NewProfileHandler(store profile.Store) *ProfileHandler {
	return &ProfileHandler{store: store}
}

// ServeHTTP handles GET and PUT /api/v1/profile.
func (h *ProfileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.store == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}
	switch r.Method {
	case http.MethodGet:
		h.handleGet(w, r)
	case http.MethodPut:
		h.handlePut(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *ProfileHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.Get(r.Context())
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(profile.Profile{})
			return
		}
		http.Error(w, "load profile error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(p)
}

func (h *ProfileHandler) handlePut(w http.ResponseWriter, r *http.Request) {
	var p profile.Profile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if err := h.store.Put(r.Context(), p); err != nil {
		http.Error(w, "store profile error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(p.Normalized())
}
