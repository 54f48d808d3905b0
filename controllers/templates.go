package controllers

import (
	"creditbank/utils"
	"embed"
	"html/template"

	"github.com/shopspring/decimal"
)

//go:embed templates/*.html
var templateFS embed.FS

// LoadTemplates разбирает HTML-шаблоны страниц сайта
func LoadTemplates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"rub":  func(d decimal.Decimal) string { return utils.FormatRub(d) },
		"rate": func(d decimal.Decimal) string { return d.StringFixed(2) },
		"date": utils.FormatDate,
	}).ParseFS(templateFS, "templates/*.html")
}
