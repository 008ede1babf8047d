package handler

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/portfolio/internal/auth"
	"github.com/sakif/portfolio/internal/service"
)

// PageHandler renders the public site. Templates are parsed once at
// startup: every page is "base.html" plus its own file defining "content".
type PageHandler struct {
	home   *service.HomeService
	pages  map[string]*template.Template
	logger *slog.Logger
}

var pageFiles = []string{"home", "projects", "about"}

var templateFuncs = template.FuncMap{
	"year": func() int { return time.Now().Year() },
	"date": func(t time.Time) string { return t.Format("Jan 2006") },
	"dateOrPresent": func(t *time.Time) string {
		if t == nil {
			return "Present"
		}
		return t.Format("Jan 2006")
	},
	// safeHTML marks admin-authored HTML (the about body) as trusted.
	"safeHTML": func(s string) template.HTML { return template.HTML(s) },
}

// NewPageHandler parses the templates under templates/ in fsys.
func NewPageHandler(home *service.HomeService, fsys fs.FS, logger *slog.Logger) (*PageHandler, error) {
	pages := make(map[string]*template.Template, len(pageFiles))
	for _, name := range pageFiles {
		tmpl, err := template.New(name).Funcs(templateFuncs).ParseFS(fsys,
			"templates/base.html",
			"templates/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parsing %s template: %w", name, err)
		}
		pages[name] = tmpl
	}

	return &PageHandler{home: home, pages: pages, logger: logger}, nil
}

type pageData struct {
	Admin bool
	View  any
	Meta  service.PageMeta
}

// HandleHome serves GET /.
func (h *PageHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	v := h.home.Home(r.Context())
	h.render(w, r, "home", v.Meta, v)
}

// HandleProjects serves GET /projects.
func (h *PageHandler) HandleProjects(w http.ResponseWriter, r *http.Request) {
	v := h.home.Projects(r.Context())
	h.render(w, r, "projects", v.Meta, v)
}

// HandleAbout serves GET /about.
func (h *PageHandler) HandleAbout(w http.ResponseWriter, r *http.Request) {
	v := h.home.About(r.Context())
	h.render(w, r, "about", v.Meta, v)
}

// HandleHomeJSON serves GET /api/home, the same view-model as the home page.
func (h *PageHandler) HandleHomeJSON(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.home.Home(r.Context()))
}

// render executes into a buffer so a template error still yields a clean 500.
func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, page string, meta service.PageMeta, view any) {
	_, admin := auth.IdentityFromContext(r.Context())
	data := pageData{Admin: admin, View: view, Meta: meta}

	var buf bytes.Buffer
	if err := h.pages[page].ExecuteTemplate(&buf, "base", data); err != nil {
		h.logger.Error("failed to render template",
			slog.String("page", page),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
