package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Beerzinss/DatKomp/internal/models"
	"github.com/Beerzinss/DatKomp/internal/store"
	"github.com/shopspring/decimal"
)

const (
	specRows      = 5
	maxUploadSize = 10 << 20
)

func (h *AdminHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.Store.GetAllProducts(r.Context())
	if err != nil {
		h.serverError(w, r, "Error fetching products", err)
		return
	}
	h.render(w, r, http.StatusOK, "admin_products.html", map[string]any{"Products": products})
}

func (h *AdminHandler) NewProduct(w http.ResponseWriter, r *http.Request) {
	h.renderProductForm(w, r, http.StatusOK, ProductForm{}, nil, padSpecs(nil), "", nil)
}

func (h *AdminHandler) EditProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.notFound(w, r)
		return
	}
	p, err := h.Store.GetProductByID(r.Context(), id)
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
		h.serverError(w, r, "Error fetching specs", err)
		return
	}
	cats, err := h.Store.GetCategoriesForProduct(r.Context(), id)
	if err != nil {
		h.serverError(w, r, "Error fetching product categories", err)
		return
	}
	selected := make([]int64, len(cats))
	for i, c := range cats {
		selected[i] = c.ID
	}

	form := ProductForm{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.StringFixed(2),
		StockQty:    p.StockQty,
	}
	h.renderProductForm(w, r, http.StatusOK, form, selected, padSpecs(specs), p.ImageURL, nil)
}

func (h *AdminHandler) renderProductForm(w http.ResponseWriter, r *http.Request, status int, form ProductForm,
	selected []int64, specs []models.ProductSpec, imageURL string, errs FieldErrors) {
	categories, err := h.Store.GetCategories(r.Context())
	if err != nil {
		h.serverError(w, r, "Error fetching categories", err)
		return
	}
	h.render(w, r, status, "admin_product_edit.html", map[string]any{
		"Form":        form,
		"Categories":  categories,
		"SelectedIDs": selected,
		"Specs":       specs,
		"ImageURL":    imageURL,
		"Errors":      errs,
	})
}

// padSpecs returns the specs followed by empty rows so the form always has at least specRows rows.
func padSpecs(specs []models.ProductSpec) []models.ProductSpec {
	rows := append([]models.ProductSpec(nil), specs...)
	for len(rows) < specRows {
		rows = append(rows, models.ProductSpec{})
	}
	return rows
}

func specsFromForm(r *http.Request) []models.ProductSpec {
	keys, values, units := r.Form["spec_key"], r.Form["spec_value"], r.Form["spec_unit"]
	var specs []models.ProductSpec
	for i, k := range keys {
		sp := models.ProductSpec{Key: strings.TrimSpace(k)}
		if i < len(values) {
			sp.Value = strings.TrimSpace(values[i])
		}
		if i < len(units) {
			sp.Unit = strings.TrimSpace(units[i])
		}
		specs = append(specs, sp)
	}
	return specs
}

func categoryIDsFromForm(r *http.Request) []int64 {
	var ids []int64
	for _, raw := range r.Form["category_ids"] {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

// SaveProduct creates a product (no id) or updates an existing one, then
// replaces its categories and specs.
func (h *AdminHandler) SaveProduct(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.redirectWithFlash(w, r, "/admin/products", "error", "File too large. Max 10MB.")
			return
		}
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	id, _ := formID(r, "id")
	form := ProductForm{
		ID:          id,
		Name:        formText(r, "name"),
		Description: formText(r, "description"),
		Price:       formText(r, "price"),
	}
	errs := FieldErrors{}
	stock, err := strconv.Atoi(formText(r, "stock_qty"))
	if err != nil {
		errs["stock_qty"] = "Must be a whole number."
	}
	form.StockQty = stock
	for k, v := range validateForm(form) {
		errs[k] = v
	}

	price, err := decimal.NewFromString(form.Price)
	if _, bad := errs["price"]; !bad {
		if err != nil {
			errs["price"] = "Must be a number."
		} else if price.IsNegative() {
			errs["price"] = "Must not be negative."
		}
	}

	selected := categoryIDsFromForm(r)
	specs := specsFromForm(r)

	var imageURL, imageFile string
	file, header, err := r.FormFile("image")
	switch {
	case err == nil:
		defer file.Close()
		if !errs.Any() {
			name, err := saveImage(h.UploadDir, header.Filename, file)
			if err != nil {
				slog.Warn("Rejected product image", "file", header.Filename, "error", err)
				errs["image"] = imageMessage(err)
			} else {
				imageFile = filepath.Join(h.UploadDir, name)
				imageURL = "/uploads/" + name
			}
		}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		// keep the current image
	default:
		errs["image"] = "Could not read the uploaded file."
	}

	if errs.Any() {
		h.renderProductForm(w, r, http.StatusUnprocessableEntity, form, selected, padSpecs(specs), "", errs)
		return
	}

	p := &models.Product{
		ID:          form.ID,
		Name:        form.Name,
		Description: form.Description,
		Price:       price.Round(2),
		StockQty:    form.StockQty,
		ImageURL:    imageURL,
	}
	if p.ID == 0 {
		err = h.Store.CreateProduct(r.Context(), p)
	} else {
		err = h.Store.UpdateProduct(r.Context(), p)
	}
	if err != nil && imageFile != "" {
		if rmErr := os.Remove(imageFile); rmErr != nil {
			slog.Error("Failed to remove unused upload", "file", imageFile, "error", rmErr)
		}
	}
	if errors.Is(err, store.ErrNotFound) {
		h.notFound(w, r)
		return
	}
	if err != nil {
		h.serverError(w, r, "Error saving product", err)
		return
	}

	if err := h.Store.ReplaceProductCategories(r.Context(), p.ID, selected); err != nil {
		h.serverError(w, r, "Error saving product categories", err)
		return
	}
	if err := h.Store.ReplaceProductSpecs(r.Context(), p.ID, specs); err != nil {
		h.serverError(w, r, "Error saving product specs", err)
		return
	}

	slog.Info("Product saved", "product_id", p.ID, "admin_id", CurrentUser(r).ID)
	h.redirectWithFlash(w, r, "/admin/products", "success", fmt.Sprintf("Product %q saved.", p.Name))
}

func imageMessage(err error) string {
	if errors.Is(err, errUnsupportedImage) {
		return "Unsupported image format. Only PNG, JPG, JPEG are allowed."
	}
	return "The image could not be processed."
}

func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.redirectWithFlash(w, r, "/admin/products", "error", "Invalid ID.")
		return
	}
	err := h.Store.DeleteProduct(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		h.redirectWithFlash(w, r, "/admin/products", "error", "Product not found.")
		return
	}
	if err != nil {
		h.serverError(w, r, "Error deleting product", err)
		return
	}
	h.redirectWithFlash(w, r, "/admin/products", "success", "Product deleted.")
}

func (h *AdminHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Store.GetCategories(r.Context())
	if err != nil {
		h.serverError(w, r, "Error fetching categories", err)
		return
	}
	h.render(w, r, http.StatusOK, "admin_categories.html", map[string]any{
		"Categories": categories,
		"Form":       CategoryForm{},
	})
}

func (h *AdminHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	form := CategoryForm{Name: formText(r, "name")}
	errs := validateForm(form)
	if !errs.Any() {
		_, err := h.Store.CreateCategory(r.Context(), form.Name)
		switch {
		case errors.Is(err, store.ErrCategoryExists):
			errs["name"] = "A category with this name already exists."
		case err != nil:
			h.serverError(w, r, "Error creating category", err)
			return
		default:
			h.redirectWithFlash(w, r, "/admin/categories", "success", "Category created.")
			return
		}
	}

	categories, err := h.Store.GetCategories(r.Context())
	if err != nil {
		h.serverError(w, r, "Error fetching categories", err)
		return
	}
	h.render(w, r, http.StatusUnprocessableEntity, "admin_categories.html", map[string]any{
		"Categories": categories,
		"Form":       form,
		"Errors":     errs,
	})
}

func (h *AdminHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.redirectWithFlash(w, r, "/admin/categories", "error", "Invalid ID.")
		return
	}
	err := h.Store.DeleteCategory(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		h.redirectWithFlash(w, r, "/admin/categories", "error", "Category not found.")
		return
	}
	if err != nil {
		h.serverError(w, r, "Error deleting category", err)
		return
	}
	h.redirectWithFlash(w, r, "/admin/categories", "success", "Category deleted.")
}
