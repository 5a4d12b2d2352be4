package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Beerzinss/DatKomp/internal/store"
)

const adminOrdersPerPage = 20

func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	totalOrders, err := h.Store.GetTotalOrdersCount(r.Context())
	if err != nil {
		h.serverError(w, r, "Error fetching total order count", err)
		return
	}
	pages := totalPages(totalOrders, adminOrdersPerPage)
	page := min(queryInt(r, "page", 1), pages)

	orders, err := h.Store.GetAllOrders(r.Context(), adminOrdersPerPage, (page-1)*adminOrdersPerPage)
	if err != nil {
		h.serverError(w, r, "Error fetching orders", err)
		return
	}

	h.render(w, r, http.StatusOK, "admin_orders.html", map[string]any{
		"Orders":      orders,
		"CurrentPage": page,
		"TotalPages":  pages,
	})
}

func (h *AdminHandler) OrderDetails(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.notFound(w, r)
		return
	}
	order, err := h.Store.GetOrder(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		h.notFound(w, r)
		return
	}
	if err != nil {
		h.serverError(w, r, "Error fetching order", err)
		return
	}
	statuses, err := h.Store.GetOrderStatuses(r.Context())
	if err != nil {
		h.serverError(w, r, "Error fetching order statuses", err)
		return
	}
	h.render(w, r, http.StatusOK, "admin_order.html", map[string]any{
		"Order":    order,
		"Statuses": statuses,
	})
}

func (h *AdminHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}
	back := fmt.Sprintf("/admin/orders/%d", id)

	statusID, ok := formID(r, "status_id")
	if !ok {
		h.redirectWithFlash(w, r, back, "error", "Please choose a status.")
		return
	}
	err := h.Store.UpdateOrderStatus(r.Context(), id, statusID)
	if errors.Is(err, store.ErrNotFound) {
		h.redirectWithFlash(w, r, back, "error", "Unknown order or status.")
		return
	}
	if err != nil {
		h.serverError(w, r, "Error updating status", err)
		return
	}
	h.redirectWithFlash(w, r, back, "success", "Order updated!")
}
