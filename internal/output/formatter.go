// Package output renders calculation results and strategy comparisons for
// the CLI in console, CSV, and JSON form.
package output

import (
	"github.com/moneysplit/moneysplit/internal/domain"
	"github.com/shopspring/decimal"
)

// Formatter renders a single result or a full strategy comparison.
type Formatter interface {
	FormatResult(res *domain.TaxResult) (string, error)
	FormatRecommendation(rec *domain.Recommendation) (string, error)
}

// GetFormatterByName returns the formatter for a --format flag value, nil
// for unknown names.
func GetFormatterByName(name string) Formatter {
	switch name {
	case "console", "table", "":
		return &ConsoleFormatter{}
	case "csv":
		return &CSVFormatter{}
	case "json":
		return &JSONFormatter{Pretty: true}
	default:
		return nil
	}
}

// FormatCurrency formats a decimal as a dollar amount.
func FormatCurrency(amount decimal.Decimal) string {
	return "$" + amount.StringFixed(2)
}

// FormatPercentage formats a decimal as a percentage.
func FormatPercentage(amount decimal.Decimal) string {
	return amount.StringFixed(2) + "%"
}
