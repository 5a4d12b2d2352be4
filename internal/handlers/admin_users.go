package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Beerzinss/DatKomp/internal/auth"
	"github.com/Beerzinss/DatKomp/internal/models"
	"github.com/Beerzinss/DatKomp/internal/store"
)

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Store.GetAllUsers(r.Context())
	if err != nil {
		h.serverError(w, r, "Error fetching users", err)
		return
	}
	h.render(w, r, http.StatusOK, "admin_users.html", map[string]any{"Users": users})
}

func (h *AdminHandler) EditUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.notFound(w, r)
		return
	}
	u, err := h.Store.GetUserByID(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		h.notFound(w, r)
		return
	}
	if err != nil {
		h.serverError(w, r, "Error fetching user", err)
		return
	}
	h.render(w, r, http.StatusOK, "admin_user_edit.html", map[string]any{
		"UserID": u.ID,
		"Form": UserEditForm{
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Email:     u.Email,
			IsAdmin:   u.IsAdmin,
		},
	})
}

// UpdateUser saves the profile fields and, when given, a new password.
func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.notFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	form := UserEditForm{
		FirstName:       formText(r, "first_name"),
		LastName:        formText(r, "last_name"),
		Email:           formText(r, "email"),
		IsAdmin:         r.FormValue("is_admin") != "",
		Password:        r.FormValue("password"),
		ConfirmPassword: r.FormValue("confirm_password"),
	}
	fail := func(errs FieldErrors) {
		form.Password, form.ConfirmPassword = "", ""
		h.render(w, r, http.StatusUnprocessableEntity, "admin_user_edit.html", map[string]any{
			"UserID": id,
			"Form":   form,
			"Errors": errs,
		})
	}
	if errs := validateForm(form); errs.Any() {
		fail(errs)
		return
	}

	u := &models.User{ID: id, FirstName: form.FirstName, LastName: form.LastName, Email: form.Email, IsAdmin: form.IsAdmin}
	if form.Password != "" {
		hash, err := auth.HashPassword(form.Password)
		if err != nil {
			h.serverError(w, r, "Failed to hash password", err)
			return
		}
		u.PasswordHash = hash
	}
	err := h.Store.UpdateUser(r.Context(), u)
	switch {
	case errors.Is(err, store.ErrNotFound):
		h.notFound(w, r)
		return
	case errors.Is(err, store.ErrEmailTaken):
		fail(FieldErrors{"email": "An account with this email already exists."})
		return
	case errors.Is(err, store.ErrLastAdmin):
		fail(FieldErrors{"is_admin": "The last administrator cannot be demoted."})
		return
	case err != nil:
		h.serverError(w, r, "Error updating user", err)
		return
	}
	if u.PasswordHash != "" {
		slog.Info("Password changed by admin", "user_id", id, "admin_id", CurrentUser(r).ID)
	}
	h.redirectWithFlash(w, r, "/admin/users", "success", "User updated.")
}

func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.redirectWithFlash(w, r, "/admin/users", "error", "Invalid ID.")
		return
	}
	err := h.Store.DeleteUser(r.Context(), id)
	switch {
	case errors.Is(err, store.ErrLastAdmin):
		h.redirectWithFlash(w, r, "/admin/users", "error", "The last administrator cannot be deleted.")
	case errors.Is(err, store.ErrUserHasOrders):
		h.redirectWithFlash(w, r, "/admin/users", "error", "This user has orders and cannot be deleted.")
	case errors.Is(err, store.ErrNotFound):
		h.redirectWithFlash(w, r, "/admin/users", "error", "User not found.")
	case err != nil:
		h.serverError(w, r, "Error deleting user", err)
	default:
		slog.Info("User deleted", "user_id", id, "admin_id", CurrentUser(r).ID)
		h.redirectWithFlash(w, r, "/admin/users", "success", "User deleted.")
	}
}
