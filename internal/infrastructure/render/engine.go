package render

import (
	"bytes"
	"context"
	"html/template"
	"strings"
	"time"

	"github.com/billforge/invoicegen/internal/domain/document"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// LocaleFor maps a currency to the number-formatting locale observed for
// it: GBP and USD format en-style (1,234.56), EUR and CHF de-style
// (1.234,56). Anything else formats en-style.
func LocaleFor(c document.Currency) language.Tag {
	switch c {
	case document.EUR, document.CHF:
		return language.German
	case document.GBP, document.USD:
		return language.English
	default:
		return language.English
	}
}

// ParseLocale resolves an explicit caller override ("en"/"de"). Unknown
// values fall back to the currency-derived locale.
func ParseLocale(s string, fallback language.Tag) language.Tag {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "de":
		return language.German
	case "en":
		return language.English
	default:
		return fallback
	}
}

// RenderOptions carries the per-render context: the formatting locale and
// the caller's translate function. A nil Translate falls back to the
// built-in English label table.
type RenderOptions struct {
	Locale    language.Tag
	Translate document.Translator
}

// TemplateEngine renders HTML template content with invoice view data.
// It uses Go's html/template package with formatting functions bound to
// the render's locale, so no ambient language state exists anywhere.
type TemplateEngine struct{}

// NewTemplateEngine creates a new template engine
func NewTemplateEngine() *TemplateEngine {
	return &TemplateEngine{}
}

// Render parses and executes the template content with the provided data
func (e *TemplateEngine) Render(ctx context.Context, name, content string, data interface{}, opts RenderOptions) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", NewRenderError(ErrCodeInvalidHTML, "template content is empty", nil)
	}

	tmpl, err := template.New(name).Funcs(e.FuncMap(opts)).Parse(content)
	if err != nil {
		return "", NewRenderError(ErrCodeInvalidHTML, "failed to parse template", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", NewRenderError(ErrCodeRenderFailed, "failed to execute template", err)
	}

	return buf.String(), nil
}

// FuncMap builds the template function map for one render. The money and
// number functions are bound to the locale so the same template produces
// "1.234,56" for de and "1,234.56" for en.
func (e *TemplateEngine) FuncMap(opts RenderOptions) template.FuncMap {
	printer := message.NewPrinter(normalizeLocale(opts.Locale))
	translate := opts.Translate

	return template.FuncMap{
		// Money and number formatting
		"amount":  func(v decimal.Decimal) string { return formatAmount(printer, v) },
		"qty":     formatQuantity,
		"rate":    formatRate,
		"percent": func(v decimal.Decimal) string { return formatRate(v) + "%" },

		// Date formatting
		"date":    formatDate,
		"dateOpt": formatDateOpt,

		// Labels
		"t": func(key string) string { return Label(translate, key) },

		// String utilities
		"upper": strings.ToUpper,
		"lower": strings.ToLower,
		"trim":  strings.TrimSpace,

		// Safe CSS/URL for the per-variant styling constants and the
		// engine-built logo data URL. Only used with values the engine
		// produced itself, never with user-provided text.
		"safeCSS": func(s string) template.CSS { return template.CSS(s) },
		"safeURL": func(s string) template.URL { return template.URL(s) },
	}
}

func normalizeLocale(tag language.Tag) language.Tag {
	if tag == (language.Tag{}) {
		return language.English
	}
	return tag
}

// formatAmount rounds to 2 decimal places at this boundary only and
// applies locale grouping and decimal separators.
func formatAmount(p *message.Printer, v decimal.Decimal) string {
	f, _ := v.Round(2).Float64()
	return p.Sprint(number.Decimal(f,
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2)))
}

// formatQuantity prints a quantity without grouping, trimming trailing
// zeros (2 -> "2", 2.50 -> "2.5")
func formatQuantity(v decimal.Decimal) string {
	s := v.String()
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimRight(s, ".")
	}
	return s
}

// formatRate prints a tax rate without a unit (19 -> "19", 7.7 -> "7.7")
func formatRate(v decimal.Decimal) string {
	return formatQuantity(v)
}

// formatDate formats a time value as yyyy-MM-dd
func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

// formatDateOpt formats an optional date, empty when nil
func formatDateOpt(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatDate(*t)
}
