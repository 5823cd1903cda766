package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/Masterminds/sprig/v3"
)

// DataKey is the template variable holding the name sequence.
const DataKey = "data"

const pageTemplate = "index.html"

//go:embed templates/*.html
var templateFS embed.FS

// Renderer executes the embedded page template. It is safe for concurrent use.
type Renderer struct {
	tmpl  *template.Template
	title string
}

func New(title string) (*Renderer, error) {
	tmpl, err := template.New(pageTemplate).
		Option("missingkey=zero").
		Funcs(sprig.HtmlFuncMap()).
		ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page template: %w", err)
	}

	return &Renderer{tmpl: tmpl, title: title}, nil
}

// Render writes the page listing data, one escaped entry per name.
func (r *Renderer) Render(w io.Writer, data []string) error {
	ctx := map[string]any{
		"title": r.title,
		DataKey: data,
	}

	if err := r.tmpl.ExecuteTemplate(w, pageTemplate, ctx); err != nil {
		return fmt.Errorf("template execution error: %w", err)
	}

	return nil
}
