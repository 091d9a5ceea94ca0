package handler

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/labstack/echo/v4"
)

var fieldLabels = map[string]string{
	"ic":              "IC Number",
	"visitorName":     "Visitor name",
	"visitorUsername": "Visitor username",
	"visitorPassword": "Visitor password",
	"visitDate":       "Visit date",
}

var funcs = template.FuncMap{
	// label turns a field key into form text.
	"label": func(key string) string {
		if l, ok := fieldLabels[key]; ok {
			return l
		}
		if key == "" {
			return ""
		}
		return strings.ToUpper(key[:1]) + key[1:]
	},
}

// Renderer executes one layout+page template set per page.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses templates/layout.html and templates/partials/*.html
// together with every templates/pages/*.html of fsys.  Pages are addressed
// by their base name without extension.
func NewRenderer(fsys fs.FS) (*Renderer, error) {
	files, err := fs.Glob(fsys, "templates/pages/*.html")
	if err != nil {
		return nil, err
	}
	r := &Renderer{pages: make(map[string]*template.Template, len(files))}
	for _, f := range files {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(fsys,
			"templates/layout.html", "templates/partials/*.html", f)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", f, err)
		}
		r.pages[strings.TrimSuffix(path.Base(f), ".html")] = t
	}
	return r, nil
}

// Render implements echo.Renderer.  The page is rendered into a buffer
// first so that a template error never leaves half a page behind.
func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}
