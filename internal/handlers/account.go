package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Beerzinss/DatKomp/internal/auth"
	"github.com/Beerzinss/DatKomp/internal/models"
	"github.com/Beerzinss/DatKomp/internal/store"
)

const invalidCredentials = "Invalid email or password."

type AccountHandler struct {
	Base
}

func (h *AccountHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "register.html", map[string]any{"Form": RegisterForm{}})
}

func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	form := RegisterForm{
		FirstName:       formText(r, "first_name"),
		LastName:        formText(r, "last_name"),
		Email:           formText(r, "email"),
		Password:        r.FormValue("password"),
		ConfirmPassword: r.FormValue("confirm_password"),
	}
	fail := func(status int, errs FieldErrors) {
		form.Password, form.ConfirmPassword = "", ""
		h.render(w, r, status, "register.html", map[string]any{"Form": form, "Errors": errs})
	}
	if errs := validateForm(form); errs.Any() {
		fail(http.StatusUnprocessableEntity, errs)
		return
	}

	hash, err := auth.HashPassword(form.Password)
	if err != nil {
		h.serverError(w, r, "Failed to hash password", err)
		return
	}
	user := &models.User{
		FirstName:    form.FirstName,
		LastName:     form.LastName,
		Email:        form.Email,
		PasswordHash: hash,
	}
	err = h.Store.CreateUser(r.Context(), user)
	if errors.Is(err, store.ErrEmailTaken) {
		fail(http.StatusUnprocessableEntity, FieldErrors{"email": "An account with this email already exists."})
		return
	}
	if err != nil {
		h.serverError(w, r, "Failed to create user", err)
		return
	}

	slog.Info("User registered", "user_id", user.ID)
	h.logIn(w, r, user)
	h.redirectWithFlash(w, r, "/", "success", "Welcome, "+user.FirstName+"!")
}

func (h *AccountHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if CurrentUser(r) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.render(w, r, http.StatusOK, "login.html", map[string]any{"Form": LoginForm{}})
}

func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	form := LoginForm{Email: formText(r, "email"), Password: r.FormValue("password")}
	if errs := validateForm(form); errs.Any() {
		form.Password = ""
		h.render(w, r, http.StatusUnprocessableEntity, "login.html", map[string]any{"Form": form, "Errors": errs})
		return
	}

	user, err := h.Store.GetUserByEmail(r.Context(), form.Email)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		h.serverError(w, r, "Failed to look up user", err)
		return
	}
	if user == nil || !auth.VerifyPassword(form.Password, user.PasswordHash) {
		slog.Warn("Failed login attempt", "ip", clientIP(r))
		form.Password = ""
		h.render(w, r, http.StatusUnauthorized, "login.html", map[string]any{
			"Form":   form,
			"Errors": FieldErrors{"_": invalidCredentials},
		})
		return
	}

	h.logIn(w, r, user)
	target := "/"
	if user.IsAdmin {
		target = "/admin"
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *AccountHandler) logIn(w http.ResponseWriter, r *http.Request, user *models.User) {
	session, _ := h.SessionStore.Get(r, authSessionName)
	session.Values[sessionUserID] = user.ID
	session.Values[sessionIsAdmin] = user.IsAdmin
	if err := session.Save(r, w); err != nil {
		slog.Error("Failed to save session", "error", err)
	}
}

func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, authSessionName)
	delete(session.Values, sessionUserID)
	delete(session.Values, sessionIsAdmin)
	delete(session.Values, lastOrderKey)
	session.AddFlash(FlashMessage{Type: "success", Message: "You have been logged out."})
	if err := session.Save(r, w); err != nil {
		slog.Error("Failed to save session", "error", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Orders lists the logged-in user's orders, newest first.
func (h *AccountHandler) Orders(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r)
	orders, err := h.Store.GetOrdersForUser(r.Context(), user.ID)
	if err != nil {
		h.serverError(w, r, "Error fetching user orders", err)
		return
	}
	h.render(w, r, http.StatusOK, "my_orders.html", map[string]any{"Orders": orders})
}
