package worksheet

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"

	"github.com/conorfennell/kanjisheet/internal/domain"
)

//go:embed templates/*.html
var templateFiles embed.FS

const defaultTemplate = "worksheet.html"

// Renderer turns decoded notes into a worksheet document.
type Renderer struct {
	templates *template.Template
	name      string
}

var funcs = template.FuncMap{
	// safe marks a field as trusted markup; used for inlined stroke diagrams.
	"safe": func(s string) template.HTML { return template.HTML(s) },
	"seq": func(n int) []int {
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}
		return out
	},
}

// NewRenderer returns a Renderer using the embedded worksheet template.
func NewRenderer() (*Renderer, error) {
	tpl, err := template.New(defaultTemplate).Funcs(funcs).ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Renderer{templates: tpl, name: defaultTemplate}, nil
}

// NewRendererFromFile returns a Renderer using a user supplied template.
// The template sees the same data and functions as the embedded one.
func NewRendererFromFile(path string) (*Renderer, error) {
	name := filepath.Base(path)
	tpl, err := template.New(name).Funcs(funcs).ParseFiles(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", path, err)
	}
	return &Renderer{templates: tpl, name: name}, nil
}

// Render executes the worksheet template with the notes bound as .Notes.
func (r *Renderer) Render(w io.Writer, notes []domain.FieldMap) error {
	data := map[string]interface{}{
		"Notes": notes,
	}
	if err := r.templates.ExecuteTemplate(w, r.name, data); err != nil {
		return fmt.Errorf("failed to render worksheet: %w", err)
	}
	return nil
}

// WriteFile renders the worksheet and replaces the file at path with it.
// Nothing is written if rendering fails.
func (r *Renderer) WriteFile(path string, notes []domain.FieldMap) error {
	var buf bytes.Buffer
	if err := r.Render(&buf, notes); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write worksheet %s: %w", path, err)
	}
	return nil
}
