package handlers

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// TemplateCache holds one parsed template set per page. Every page is
// parsed together with the shared files in <dir>/partials.
type TemplateCache struct {
	cache map[string]*template.Template
	mu    sync.RWMutex
	funcs template.FuncMap
}

func NewTemplateCache() *TemplateCache {
	return &TemplateCache{
		cache: make(map[string]*template.Template),
		funcs: template.FuncMap{
			"prevPage": func(currentPage int) int { return currentPage - 1 },
			"nextPage": func(currentPage int) int { return currentPage + 1 },
			"pageLink": pageLink,
			"money":    func(d decimal.Decimal) string { return d.StringFixed(2) + " €" },
			"date":     func(t time.Time) string { return t.Local().Format("2006-01-02 15:04") },
			"contains": func(list []int64, v int64) bool {
				for _, x := range list {
					if x == v {
						return true
					}
				}
				return false
			},
			"has": func(selected map[string][]string, key, value string) bool {
				for _, v := range selected[key] {
					if v == value {
						return true
					}
				}
				return false
			},
		},
	}
}

// Load parses every *.html page in dir.
func (tc *TemplateCache) Load(dir string) error {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	partials, err := filepath.Glob(filepath.Join(dir, "partials", "*.html"))
	if err != nil {
		return err
	}
	pages, err := filepath.Glob(filepath.Join(dir, "*.html"))
	if err != nil {
		return err
	}
	if len(pages) == 0 {
		return fmt.Errorf("no templates found in %s", dir)
	}

	for _, page := range pages {
		name := filepath.Base(page)
		files := append([]string{page}, partials...)
		tmpl, err := template.New(name).Funcs(tc.funcs).ParseFiles(files...)
		if err != nil {
			slog.Error("Failed to parse template", "file", page, "error", err)
			return err
		}
		tc.cache[name] = tmpl
		slog.Debug("Cached template", "name", name)
	}
	return nil
}

func (tc *TemplateCache) Get(name string) *template.Template {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.cache[name]
}

// Render executes the page into a buffer first so a template error never
// leaves a half-written response.
func (tc *TemplateCache) Render(w http.ResponseWriter, status int, name string, data any) {
	tmpl := tc.Get(name)
	if tmpl == nil {
		slog.Error("Template not found", "name", name)
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		slog.Error("Failed to render template", "name", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
