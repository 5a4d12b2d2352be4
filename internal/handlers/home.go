package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Beerzinss/DatKomp/internal/models"
	"github.com/Beerzinss/DatKomp/internal/store"
)

const catalogPageSize = 12

type HomeHandler struct {
	Base
}

// parseSpecFilters reads repeated spec=key:value query parameters.
func parseSpecFilters(q url.Values) map[string][]string {
	filters := map[string][]string{}
	for _, raw := range q["spec"] {
		key, value, ok := strings.Cut(raw, ":")
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		if !ok || key == "" || value == "" {
			continue
		}
		filters[key] = append(filters[key], value)
	}
	return filters
}

func catalogFilter(q url.Values) store.ProductFilter {
	page, err := strconv.Atoi(q.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	return store.ProductFilter{
		Category: strings.TrimSpace(q.Get("category")),
		Specs:    parseSpecFilters(q),
		Page:     page,
		PageSize: catalogPageSize,
	}
}

func (h *HomeHandler) Index(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := catalogFilter(q)

	products, total, err := h.Store.ListProducts(r.Context(), filter)
	if err != nil {
		h.serverError(w, r, "Error fetching products", err)
		return
	}
	categories, err := h.Store.GetCategories(r.Context())
	if err != nil {
		h.serverError(w, r, "Error fetching categories", err)
		return
	}
	groups, err := h.Store.SpecFilterGroups(r.Context(), filter.Category)
	if err != nil {
		h.serverError(w, r, "Error fetching spec filters", err)
		return
	}

	pages := totalPages(total, catalogPageSize)

	// query string without page, for the pagination links
	base := url.Values{}
	for k, v := range q {
		if k != "page" {
			base[k] = v
		}
	}

	h.render(w, r, http.StatusOK, "home.html", map[string]any{
		"Products":        products,
		"Categories":      categories,
		"CurrentCategory": filter.Category,
		"SpecFilters":     groups,
		"SelectedFilters": filter.Specs,
		"CurrentPage":     min(filter.Page, pages),
		"TotalPages":      pages,
		"TotalItems":      total,
		"FilterQuery":     base.Encode(),
	})
}

func (h *HomeHandler) Details(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.notFound(w, r)
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
	specs, err := h.Store.GetSpecs(r.Context(), id)
	if err != nil {
		h.serverError(w, r, "Error fetching product specs", err)
		return
	}
	categories, err := h.Store.GetCategoriesForProduct(r.Context(), id)
	if err != nil {
		h.serverError(w, r, "Error fetching product categories", err)
		return
	}

	h.render(w, r, http.StatusOK, "product.html", map[string]any{
		"Title":      product.Name,
		"Product":    product,
		"Specs":      specs,
		"Categories": categories,
	})
}

func (h *HomeHandler) About(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "about.html", nil)
}

func (h *HomeHandler) Service(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "service.html", nil)
}

func (h *HomeHandler) Contacts(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "contacts.html", map[string]any{"Form": ContactForm{}})
}

// SendMessage stores a contact message from a logged-in user.
func (h *HomeHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r)
	if user == nil {
		h.redirectWithFlash(w, r, "/account/login", "error", "Please log in to send us a message.")
		return
	}

	form := ContactForm{Text: formText(r, "text")}
	if errs := validateForm(form); errs.Any() {
		h.render(w, r, http.StatusUnprocessableEntity, "contacts.html", map[string]any{"Form": form, "Errors": errs})
		return
	}

	msg := &models.ContactMessage{UserID: user.ID, Email: user.Email, Content: form.Text}
	if err := h.Store.CreateMessage(r.Context(), msg); err != nil {
		h.serverError(w, r, "Error saving contact message", err)
		return
	}
	h.redirectWithFlash(w, r, "/contacts", "success", "Thank you! Your message has been sent.")
}

// pageLink builds the catalog URL for page n keeping the active filters.
func pageLink(filterQuery string, n int) string {
	if filterQuery == "" {
		return "/?page=" + strconv.Itoa(n)
	}
	return "/?" + filterQuery + "&page=" + strconv.Itoa(n)
}
