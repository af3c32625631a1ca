// Package webui serves the intake form and the rendered report view.
// The pages are deliberately thin: every state change goes through the
// submission API, and the report page is what the capture browser
// screenshots during export.
package webui

import (
	"bytes"
	"embed"
	"html/template"
	"log"
	"net/http"

	"github.com/corex-health/corex/internal/submission"
)

//go:embed templates/*.html
var templateFS embed.FS

// Handler renders the HTML pages
type Handler struct {
	controller *submission.Controller
	templates  *template.Template
}

// NewHandler parses the embedded templates
func NewHandler(controller *submission.Controller) (*Handler, error) {
	templates, err := template.New("").Funcs(template.FuncMap{
		"pct": func(p float64) float64 { return p * 100 },
		"inc": func(i int) int { return i + 1 },
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Handler{controller: controller, templates: templates}, nil
}

// page is the view model shared by both templates
type page struct {
	State      submission.State
	Submitting bool
	Failed     bool
	Succeeded  bool
}

func (h *Handler) newPage() page {
	state := h.controller.State()
	return page{
		State:      state,
		Submitting: state.Status == submission.StatusSubmitting,
		Failed:     state.Status == submission.StatusFailed,
		Succeeded:  state.Status == submission.StatusSucceeded,
	}
}

// Index serves the intake form
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	h.render(w, "index.html", h.newPage())
}

// Report serves the report summary view. Without a result there is
// nothing to show, so the browser is sent back to the form.
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	p := h.newPage()
	if p.State.Result == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.render(w, "report.html", p)
}

func (h *Handler) render(w http.ResponseWriter, name string, data page) {
	var buf bytes.Buffer
	if err := h.templates.ExecuteTemplate(&buf, name, data); err != nil {
		log.Printf("render %s: %v", name, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}
