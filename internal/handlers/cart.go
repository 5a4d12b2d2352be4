package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Beerzinss/DatKomp/internal/cart"
	"github.com/Beerzinss/DatKomp/internal/models"
	"github.com/Beerzinss/DatKomp/internal/notify"
	"github.com/Beerzinss/DatKomp/internal/store"
)

type CartHandler struct {
	Base
	Notifier notify.Notifier
	BaseURL  string
}

func (h *CartHandler) Index(w http.ResponseWriter, r *http.Request) {
	_, c := h.loadCart(r)
	h.render(w, r, http.StatusOK, "cart.html", map[string]any{
		"Cart":       c,
		"ItemsTotal": c.ItemsTotal(),
	})
}

// Add puts one unit of the posted product into the cart.
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	id, ok := formID(r, "product_id")
	if !ok {
		http.Error(w, "Invalid product ID", http.StatusBadRequest)
		return
	}
	product, err := h.Store.GetProductByID(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		h.notFound(w, r)
		return
	}
	if err != nil {
		h.serverError(w, r, "Error fetching product", err)
		return
	}

	session, c := h.loadCart(r)
	c.Add(*product)
	if err := h.saveCart(w, r, session, c); err != nil {
		h.serverError(w, r, "Failed to save cart", err)
		return
	}
	h.redirectWithFlash(w, r, "/cart", "success", product.Name+" added to your cart.")
}

func (h *CartHandler) Increment(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, (*cart.Cart).Increment)
}

func (h *CartHandler) Decrement(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, (*cart.Cart).Decrement)
}

func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, (*cart.Cart).Remove)
}

func (h *CartHandler) update(w http.ResponseWriter, r *http.Request, op func(*cart.Cart, int64) bool) {
	id, ok := formID(r, "product_id")
	if !ok {
		http.Error(w, "Invalid product ID", http.StatusBadRequest)
		return
	}
	session, c := h.loadCart(r)
	if op(c, id) {
		if err := h.saveCart(w, r, session, c); err != nil {
			h.serverError(w, r, "Failed to save cart", err)
			return
		}
	}
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	_, c := h.loadCart(r)
	if c.IsEmpty() {
		h.redirectWithFlash(w, r, "/cart", "error", "Your cart is empty.")
		return
	}

	form := CheckoutForm{}
	if u := CurrentUser(r); u != nil {
		form.FirstName, form.LastName, form.Email = u.FirstName, u.LastName, u.Email
	}
	h.renderCheckout(w, r, http.StatusOK, c, form, nil)
}

func (h *CartHandler) renderCheckout(w http.ResponseWriter, r *http.Request, status int, c *cart.Cart, form CheckoutForm, errs FieldErrors) {
	deliveryTypes, err := h.Store.GetActiveDeliveryTypes(r.Context())
	if err != nil {
		h.serverError(w, r, "Error fetching delivery types", err)
		return
	}
	h.render(w, r, status, "checkout.html", map[string]any{
		"Cart":          c,
		"ItemsTotal":    c.ItemsTotal(),
		"DeliveryTypes": deliveryTypes,
		"Form":          form,
		"Errors":        errs,
	})
}

// PlaceOrder turns the session cart into an order.
func (h *CartHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	session, c := h.loadCart(r)

	deliveryTypeID, _ := formID(r, "delivery_type_id")
	form := CheckoutForm{
		FirstName:      formText(r, "first_name"),
		LastName:       formText(r, "last_name"),
		Phone:          formText(r, "phone"),
		Email:          formText(r, "email"),
		AddressLine:    formText(r, "address_line"),
		DeliveryTypeID: deliveryTypeID,
	}
	if errs := validateForm(form); errs.Any() {
		h.renderCheckout(w, r, http.StatusUnprocessableEntity, c, form, errs)
		return
	}

	in := store.PlaceOrderInput{
		Customer: models.Customer{
			FirstName:   form.FirstName,
			LastName:    form.LastName,
			AddressLine: form.AddressLine,
			Phone:       form.Phone,
			Email:       form.Email,
		},
		DeliveryTypeID: form.DeliveryTypeID,
		Lines:          c.Lines(),
	}
	if u := CurrentUser(r); u != nil {
		in.UserID = &u.ID
	}

	orderID, err := h.Store.PlaceOrder(r.Context(), in)
	if err != nil {
		var se *store.StorageError
		switch {
		case errors.Is(err, store.ErrEmptyCart):
			h.renderCheckout(w, r, http.StatusUnprocessableEntity, c, form, FieldErrors{"_": "Your cart is empty."})
		case errors.Is(err, store.ErrInvalidDeliveryType):
			h.renderCheckout(w, r, http.StatusUnprocessableEntity, c, form, FieldErrors{"delivery_type_id": "Please choose an available delivery option."})
		case errors.As(err, &se):
			slog.Error("Failed to place order", "op", se.Op, "error", se.Err)
			h.renderCheckout(w, r, http.StatusInternalServerError, c, form, FieldErrors{"_": "Your order could not be placed. Please try again."})
		default:
			slog.Error("Failed to place order", "error", err)
			h.renderCheckout(w, r, http.StatusUnprocessableEntity, c, form, FieldErrors{"_": "Your order could not be placed. Please try again."})
		}
		return
	}

	c.Clear()
	if err := h.saveCart(w, r, session, c); err != nil {
		slog.Error("Failed to clear cart", "order_id", orderID, "error", err)
	}

	auth, _ := h.SessionStore.Get(r, authSessionName)
	auth.Values[lastOrderKey] = orderID
	auth.AddFlash(FlashMessage{Type: "success", Message: "Thank you! Your order has been placed."})
	if err := auth.Save(r, w); err != nil {
		slog.Error("Failed to save session", "error", err)
	}

	h.notify(r, orderID, form)
	http.Redirect(w, r, fmt.Sprintf("/cart/confirmation/%d", orderID), http.StatusSeeOther)
}

func (h *CartHandler) notify(r *http.Request, orderID int64, form CheckoutForm) {
	if h.Notifier == nil {
		return
	}
	order, err := h.Store.GetOrder(r.Context(), orderID)
	if err != nil {
		slog.Error("Failed to load order for notice", "order_id", orderID, "error", err)
		return
	}
	notice := notify.OrderNotice{
		OrderID:    orderID,
		Email:      form.Email,
		Name:       form.FirstName + " " + form.LastName,
		GrandTotal: order.GrandTotal,
		StatusURL:  fmt.Sprintf("%s/cart/confirmation/%d", h.BaseURL, orderID),
	}
	if err := h.Notifier.OrderPlaced(r.Context(), notice); err != nil {
		slog.Error("Failed to send order notice", "order_id", orderID, "error", err)
	}
}

// Confirmation shows an order to the session that placed it or to its owner.
func (h *CartHandler) Confirmation(w http.ResponseWriter, r *http.Request) {
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

	if !h.canSeeOrder(r, order) {
		h.notFound(w, r)
		return
	}
	h.render(w, r, http.StatusOK, "confirmation.html", map[string]any{"Order": order})
}

func (h *CartHandler) canSeeOrder(r *http.Request, order *models.Order) bool {
	if u := CurrentUser(r); u != nil && (u.IsAdmin || (order.UserID != nil && *order.UserID == u.ID)) {
		return true
	}
	session, _ := h.SessionStore.Get(r, authSessionName)
	last, ok := session.Values[lastOrderKey].(int64)
	return ok && last == order.ID
}
