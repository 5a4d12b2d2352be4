package handlers

import (
	"errors"
	"net/http"

	"github.com/Beerzinss/DatKomp/internal/store"
)

func (h *AdminHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.Store.GetMessages(r.Context())
	if err != nil {
		h.serverError(w, r, "Error fetching messages", err)
		return
	}
	h.render(w, r, http.StatusOK, "admin_messages.html", map[string]any{"Messages": messages})
}

func (h *AdminHandler) MarkMessageRead(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.redirectWithFlash(w, r, "/admin/messages", "error", "Invalid ID.")
		return
	}
	err := h.Store.MarkMessageRead(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		h.redirectWithFlash(w, r, "/admin/messages", "error", "Message not found.")
		return
	}
	if err != nil {
		h.serverError(w, r, "Error updating message", err)
		return
	}
	http.Redirect(w, r, "/admin/messages", http.StatusSeeOther)
}
