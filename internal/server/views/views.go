// Package views holds the embedded HTML templates for the weighbridge page.
package views

import (
	"embed"
	"html/template"

	"github.com/mamadbah2/weighbridge/internal/domain/models"
)

//go:embed templates/*.html
var files embed.FS

// Funcs are the helpers available inside the templates.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"formatNumber": models.FormatNumber,
		"formatDate":   models.FormatDate,
		"formatPrice":  func(v int64) string { return models.FormatNumber(float64(v)) },
		"formatRate":   func(r models.Rate) string { return models.FormatNumber(float64(r)) },
		"weightValue": func(v *float64) string {
			if v == nil {
				return ""
			}
			return models.FormatNumber(*v)
		},
	}
}

// Parse loads every template under templates/.
func Parse() (*template.Template, error) {
	return template.New("").Funcs(Funcs()).ParseFS(files, "templates/*.html")
}
