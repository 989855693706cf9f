// Package render turns view data into full HTML pages.
package render

import (
	"embed"
	"fmt"

	"evnt/internal/flash"
	"evnt/models"

	"github.com/pocketbase/pocketbase/tools/template"
)

//go:embed templates/*.html
var templates embed.FS

const (
	layout  = "templates/layout.html"
	partial = "templates/event_card.html"
)

// Page is the value every view template is executed with.
type Page struct {
	Title    string
	Viewer   models.Viewer
	Messages []flash.Message
	Data     any
}

type Renderer struct {
	registry *template.Registry
}

func New() *Renderer {
	registry := template.NewRegistry()
	registry.AddFuncs(map[string]any{
		"fieldError": func(errs map[string]string, field string) string {
			return errs[field]
		},
	})
	return &Renderer{registry: registry}
}

// Render executes the layout with view as its content block.
func (r *Renderer) Render(view string, page Page) (string, error) {
	html, err := r.registry.LoadFS(templates, layout, partial, "templates/"+view).Render(page)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", view, err)
	}
	return html, nil
}
