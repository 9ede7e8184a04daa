package view

import (
	"bytes"
	"database/sql"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ovaphlow/pitchfork/service-settings-admin/internal/usersettings/entity"
)

//go:embed templates/*.html
var templateFS embed.FS

// pages maps a page name to its content template file.
var pages = map[string]string{
	"list":  "templates/list.html",
	"edit":  "templates/edit.html",
	"error": "templates/error.html",
}

var funcs = template.FuncMap{
	"join": strings.Join,
	"has":  slices.Contains[[]string],
	"boolText": func(b sql.NullBool) string {
		if !b.Valid {
			return ""
		}
		if b.Bool {
			return "true"
		}
		return "false"
	},
	"checked": func(b sql.NullBool) bool { return b.Valid && b.Bool },
	"decimalText": func(d decimal.NullDecimal) string {
		if !d.Valid {
			return ""
		}
		return entity.FormatNumeric(d.Decimal)
	},
}

// ListPage is the data for the user listing.
type ListPage struct {
	Flashes []Flash
	Query   string
	Rows    []*entity.UserSettings
}

// EditPage is the data for the edit form.
type EditPage struct {
	Flashes []Flash
	Row     *entity.UserSettings
	Allowed []string
}

// ErrorPage is the data for 404 and 500 pages.
type ErrorPage struct {
	Flashes []Flash
	Title   string
	Message string
}

// Renderer executes the embedded page templates inside the shared layout.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses all pages once.
func NewRenderer() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template, len(pages))}
	for name, file := range pages {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", file)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Render writes page name with status. The page is rendered to a buffer
// first so a template failure still yields a clean 500.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, data any) error {
	t, ok := r.pages[name]
	if !ok {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return fmt.Errorf("unknown page %q", name)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return fmt.Errorf("render %s: %w", name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// NotFound renders the 404 page.
func (r *Renderer) NotFound(w http.ResponseWriter) error {
	return r.Render(w, http.StatusNotFound, "error", ErrorPage{
		Title:   "Not Found",
		Message: "The requested user was not found.",
	})
}

// ServerError renders a generic 500 page without internal detail.
func (r *Renderer) ServerError(w http.ResponseWriter) error {
	return r.Render(w, http.StatusInternalServerError, "error", ErrorPage{
		Title:   "Internal Server Error",
		Message: "internal server error",
	})
}
