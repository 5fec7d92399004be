// Package web holds the server-rendered page templates.
package web

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

var funcs = template.FuncMap{
	"deref": func(p *uint) uint {
		if p == nil {
			return 0
		}
		return *p
	},
}

// ParseTemplates parses every page; pages share the "header" and "footer" blocks from layout.html.
func ParseTemplates() (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
}

// MustParseTemplates is ParseTemplates for startup wiring, where a broken template is fatal.
func MustParseTemplates() *template.Template {
	return template.Must(ParseTemplates())
}
