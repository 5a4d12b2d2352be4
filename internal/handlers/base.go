package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/Beerzinss/DatKomp/internal/cart"
	"github.com/Beerzinss/DatKomp/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"
)

const (
	authSessionName = "auth-session"
	sessionUserID   = "user_id"
	sessionIsAdmin  = "is_admin"
	lastOrderKey    = "last_order"
)

// Base carries what every handler needs. SessionStore holds the auth
// session and flashes, CartStore the cart.
type Base struct {
	Store        *store.Store
	SessionStore *sessions.CookieStore
	CartStore    sessions.Store
	Templates    *TemplateCache
}

// render adds the layout data (user, cart size, flashes, CSRF field) and writes the page.
func (b *Base) render(w http.ResponseWriter, r *http.Request, status int, name string, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	session, _ := b.SessionStore.Get(r, authSessionName)
	cartSession, _ := b.CartStore.Get(r, cart.SessionName)

	data["CurrentUser"] = CurrentUser(r)
	data["CartCount"] = cart.Load(cartSession).Count()
	data["CsrfField"] = csrf.TemplateField(r)
	data["Flashes"] = GetFlash(session)
	data["Path"] = r.URL.Path
	if _, ok := data["Errors"]; !ok {
		data["Errors"] = FieldErrors{}
	}

	if err := session.Save(r, w); err != nil { // clears the flashes
		slog.Error("Failed to save session", "error", err)
	}
	b.Templates.Render(w, status, name, data)
}

func (b *Base) flash(w http.ResponseWriter, r *http.Request, kind, message string) {
	session, _ := b.SessionStore.Get(r, authSessionName)
	session.AddFlash(FlashMessage{Type: kind, Message: message})
	if err := session.Save(r, w); err != nil {
		slog.Error("Failed to save session", "error", err)
	}
}

func (b *Base) redirectWithFlash(w http.ResponseWriter, r *http.Request, url, kind, message string) {
	b.flash(w, r, kind, message)
	http.Redirect(w, r, url, http.StatusSeeOther)
}

func (b *Base) loadCart(r *http.Request) (*sessions.Session, *cart.Cart) {
	session, _ := b.CartStore.Get(r, cart.SessionName)
	return session, cart.Load(session)
}

func (b *Base) saveCart(w http.ResponseWriter, r *http.Request, session *sessions.Session, c *cart.Cart) error {
	cart.Save(session, c)
	return session.Save(r, w)
}

func (b *Base) serverError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	slog.Error(msg, "error", err, "path", r.URL.Path)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

func (b *Base) notFound(w http.ResponseWriter, r *http.Request) {
	b.render(w, r, http.StatusNotFound, "not_found.html", nil)
}

// pathID parses the {id} route parameter.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func formID(r *http.Request, key string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(r.FormValue(key)), 10, 64)
	return id, err == nil && id > 0
}

func formText(r *http.Request, key string) string {
	return strings.TrimSpace(r.FormValue(key))
}

func queryInt(r *http.Request, key string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || v < 1 {
		return def
	}
	return v
}

func totalPages(total, perPage int) int {
	p := (total + perPage - 1) / perPage
	if p == 0 {
		return 1
	}
	return p
}
