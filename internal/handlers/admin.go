package handlers

import (
	"net/http"
)

// AdminHandler serves the back office. All of its routes sit behind RequireAdmin.
type AdminHandler struct {
	Base
	UploadDir string
}

func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Store.GetDashboardStats(r.Context())
	if err != nil {
		h.serverError(w, r, "Error fetching stats", err)
		return
	}
	h.render(w, r, http.StatusOK, "admin.html", map[string]any{"Stats": stats})
}
