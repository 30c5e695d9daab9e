package web

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"signupdesk/internal/application/controller"
)

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set), preventing XSS.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// renderMarkdown converts an activity description to HTML.
func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

// pageSet holds the parsed templates. Request-bound funcs are swapped in on a clone.
type pageSet struct {
	root *template.Template
}

func baseFuncs() template.FuncMap {
	return template.FuncMap{
		"renderMarkdown": renderMarkdown,
		"csrfField":      func() template.HTML { return "" },
		"selected":       func(a, b string) bool { return a == b },
	}
}

func parsePages(fsys fs.FS) (*pageSet, error) {
	root, err := template.New("layout.html").Funcs(baseFuncs()).ParseFS(fsys, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &pageSet{root: root}, nil
}

// pageData is what layout.html and index.html render.
type pageData struct {
	View controller.View
}

// render executes the layout for the current view.
func (p *pageSet) render(w http.ResponseWriter, r *http.Request, status int, view controller.View) {
	tpl, err := p.root.Clone()
	if err != nil {
		internalError(w, err)
		return
	}
	tpl.Funcs(template.FuncMap{
		"csrfField": func() template.HTML { return csrf.TemplateField(r) },
	})

	var buf bytes.Buffer
	if err := tpl.ExecuteTemplate(&buf, "layout.html", pageData{View: view}); err != nil {
		internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
