package output

import (
	"encoding/csv"
	"strings"

	"github.com/moneysplit/moneysplit/internal/domain"
)

// CSVFormatter renders results as CSV for spreadsheet import.
type CSVFormatter struct{}

// FormatResult writes one row per breakdown line plus a total row.
func (cf *CSVFormatter) FormatResult(res *domain.TaxResult) (string, error) {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	if err := writer.Write([]string{"Label", "Amount", "Note"}); err != nil {
		return "", err
	}
	if err := writer.Write([]string{"Gross Income", res.GrossIncome.StringFixed(2), ""}); err != nil {
		return "", err
	}
	for _, line := range res.Breakdown {
		if err := writer.Write([]string{line.Label, line.Amount.StringFixed(2), line.Note}); err != nil {
			return "", err
		}
	}
	rows := [][]string{
		{"Total Tax", res.TotalTax.StringFixed(2), ""},
		{"Effective Rate (%)", res.EffectiveRate.StringFixed(2), ""},
		{"Net Income (group)", res.NetIncomeGroup.StringFixed(2), ""},
		{"Net Income (per person)", res.NetIncomePerPerson.StringFixed(2), ""},
	}
	if res.CompanyRetained != nil {
		rows = append(rows, []string{"Retained in Company", res.CompanyRetained.StringFixed(2), ""})
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// FormatRecommendation writes one row per strategy.
func (cf *CSVFormatter) FormatRecommendation(rec *domain.Recommendation) (string, error) {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	header := []string{"Strategy", "Total Tax", "Net Income Group", "Net Income Per Person", "Effective Rate (%)", "Optimal"}
	if err := writer.Write(header); err != nil {
		return "", err
	}

	for _, s := range rec.Strategies {
		optimal := ""
		if rec.Optimal != nil && s.StrategyName == rec.Optimal.StrategyName {
			optimal = "yes"
		}
		row := []string{
			s.StrategyName,
			s.TotalTax.StringFixed(2),
			s.NetIncomeGroup.StringFixed(2),
			s.NetIncomePerPerson.StringFixed(2),
			s.EffectiveRate.StringFixed(2),
			optimal,
		}
		if err := writer.Write(row); err != nil {
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}
	return sb.String(), nil
}
