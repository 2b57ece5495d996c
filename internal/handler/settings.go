package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/xenking/storefront/internal/domain/settings"
)

// SettingsHandler serves the admin settings screen.
type SettingsHandler struct {
	settings *settings.Service
}

// NewSettingsHandler creates a SettingsHandler.
func NewSettingsHandler(svc *settings.Service) *SettingsHandler {
	return &SettingsHandler{settings: svc}
}

// List handles GET /api/admin/settings.
func (h *SettingsHandler) List(w http.ResponseWriter, r *http.Request) {
	values, err := h.settings.All(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, values)
}

type updateSettingRequest struct {
	Value string `json:"value"`
}

// Update handles PUT /api/admin/settings/{key}.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateSettingRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.settings.Update(r.Context(), chi.URLParam(r, "key"), req.Value); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
