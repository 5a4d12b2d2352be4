package handlers

import (
	"errors"
	"net/http"

	"github.com/Beerzinss/DatKomp/internal/models"
	"github.com/Beerzinss/DatKomp/internal/store"
	"github.com/shopspring/decimal"
)

func (h *AdminHandler) ListDeliveryTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.Store.GetAllDeliveryTypes(r.Context())
	if err != nil {
		h.serverError(w, r, "Error fetching delivery types", err)
		return
	}
	h.render(w, r, http.StatusOK, "admin_delivery_types.html", map[string]any{"DeliveryTypes": types})
}

func (h *AdminHandler) NewDeliveryType(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "admin_delivery_type_edit.html", map[string]any{
		"Form": DeliveryTypeForm{Price: "0.00", IsActive: true},
	})
}

func (h *AdminHandler) EditDeliveryType(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.notFound(w, r)
		return
	}
	d, err := h.Store.GetDeliveryType(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		h.notFound(w, r)
		return
	}
	if err != nil {
		h.serverError(w, r, "Error fetching delivery type", err)
		return
	}
	h.render(w, r, http.StatusOK, "admin_delivery_type_edit.html", map[string]any{
		"Form": DeliveryTypeForm{
			ID:          d.ID,
			Name:        d.Name,
			Description: d.Description,
			Price:       d.Price.StringFixed(2),
			IsActive:    d.IsActive,
		},
	})
}

func (h *AdminHandler) SaveDeliveryType(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	id, _ := formID(r, "id")
	form := DeliveryTypeForm{
		ID:          id,
		Name:        formText(r, "name"),
		Description: formText(r, "description"),
		Price:       formText(r, "price"),
		IsActive:    r.FormValue("is_active") != "",
	}
	errs := validateForm(form)
	price, err := decimal.NewFromString(form.Price)
	if _, bad := errs["price"]; !bad && (err != nil || price.IsNegative()) {
		errs["price"] = "Must not be negative."
	}
	if errs.Any() {
		h.render(w, r, http.StatusUnprocessableEntity, "admin_delivery_type_edit.html", map[string]any{
			"Form":   form,
			"Errors": errs,
		})
		return
	}

	d := &models.DeliveryType{
		ID:          form.ID,
		Name:        form.Name,
		Description: form.Description,
		Price:       price.Round(2),
		IsActive:    form.IsActive,
	}
	if d.ID == 0 {
		err = h.Store.CreateDeliveryType(r.Context(), d)
	} else {
		err = h.Store.UpdateDeliveryType(r.Context(), d)
	}
	if errors.Is(err, store.ErrNotFound) {
		h.notFound(w, r)
		return
	}
	if err != nil {
		h.serverError(w, r, "Error saving delivery type", err)
		return
	}
	h.redirectWithFlash(w, r, "/admin/delivery-types", "success", "Delivery type saved.")
}

func (h *AdminHandler) DeleteDeliveryType(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.redirectWithFlash(w, r, "/admin/delivery-types", "error", "Invalid ID.")
		return
	}
	err := h.Store.DeleteDeliveryType(r.Context(), id)
	switch {
	case errors.Is(err, store.ErrDeliveryTypeInUse):
		h.redirectWithFlash(w, r, "/admin/delivery-types", "error", "This delivery type is used by existing orders. Deactivate it instead.")
	case errors.Is(err, store.ErrNotFound):
		h.redirectWithFlash(w, r, "/admin/delivery-types", "error", "Delivery type not found.")
	case err != nil:
		h.serverError(w, r, "Error deleting delivery type", err)
	default:
		h.redirectWithFlash(w, r, "/admin/delivery-types", "success", "Delivery type deleted.")
	}
}
