package output

import (
	"fmt"
	"strings"

	"github.com/moneysplit/moneysplit/internal/domain"
)

// ConsoleFormatter renders results as fixed-width console tables.
type ConsoleFormatter struct{}

// FormatResult renders one calculation with its line-by-line breakdown.
func (cf *ConsoleFormatter) FormatResult(res *domain.TaxResult) (string, error) {
	var sb strings.Builder

	title := fmt.Sprintf("TAX CALCULATION - %s %s", res.Jurisdiction, res.Structure)
	if res.State != "" {
		title += fmt.Sprintf(" (%s)", res.State)
	}
	if res.Method != domain.MethodNotApplicable {
		title += fmt.Sprintf(" / %s", res.Method)
	}
	sb.WriteString(title + "\n")
	sb.WriteString(strings.Repeat("=", 60) + "\n")

	sb.WriteString(fmt.Sprintf("%-40s %18s\n", "Gross Income", FormatCurrency(res.GrossIncome)))
	if res.StandardDeductionUsed.IsPositive() {
		sb.WriteString(fmt.Sprintf("%-40s %18s\n", "Standard Deduction Applied", FormatCurrency(res.StandardDeductionUsed)))
	}
	sb.WriteString(strings.Repeat("-", 60) + "\n")

	for _, line := range res.Breakdown {
		sb.WriteString(fmt.Sprintf("%-40s %18s\n", line.Label, FormatCurrency(line.Amount)))
		if line.Note != "" {
			sb.WriteString(fmt.Sprintf("  %s\n", line.Note))
		}
	}

	sb.WriteString(strings.Repeat("-", 60) + "\n")
	sb.WriteString(fmt.Sprintf("%-40s %18s\n", "Total Tax", FormatCurrency(res.TotalTax)))
	sb.WriteString(fmt.Sprintf("%-40s %18s\n", "Effective Rate", FormatPercentage(res.EffectiveRate)))
	sb.WriteString(fmt.Sprintf("%-40s %18s\n", "Net Income (group)", FormatCurrency(res.NetIncomeGroup)))
	sb.WriteString(fmt.Sprintf("%-40s %18s\n", "Net Income (per person)", FormatCurrency(res.NetIncomePerPerson)))
	if res.CompanyRetained != nil {
		sb.WriteString(fmt.Sprintf("%-40s %18s\n", "Retained in Company", FormatCurrency(*res.CompanyRetained)))
	}
	sb.WriteString(strings.Repeat("=", 60) + "\n")

	return sb.String(), nil
}

// FormatRecommendation renders the full strategy comparison with the
// optimal pick highlighted.
func (cf *ConsoleFormatter) FormatRecommendation(rec *domain.Recommendation) (string, error) {
	var sb strings.Builder

	sb.WriteString("STRATEGY COMPARISON\n")
	sb.WriteString(strings.Repeat("=", 78) + "\n")
	sb.WriteString(fmt.Sprintf("%-30s %15s %15s %10s\n",
		"Strategy", "Total Tax", "Net (group)", "Eff. Rate"))
	sb.WriteString(strings.Repeat("-", 78) + "\n")

	for _, s := range rec.Strategies {
		marker := "  "
		if rec.Optimal != nil && s.StrategyName == rec.Optimal.StrategyName {
			marker = "* "
		}
		sb.WriteString(fmt.Sprintf("%s%-28s %15s %15s %10s\n",
			marker, s.StrategyName,
			FormatCurrency(s.TotalTax),
			FormatCurrency(s.NetIncomeGroup),
			FormatPercentage(s.EffectiveRate)))
		if s.CompanyRetained != nil {
			sb.WriteString(fmt.Sprintf("  %-28s %15s retained in company\n", "", FormatCurrency(*s.CompanyRetained)))
		}
	}

	sb.WriteString(strings.Repeat("=", 78) + "\n")
	if rec.Optimal != nil {
		sb.WriteString(fmt.Sprintf("Optimal:  %s (net %s)\n",
			rec.Optimal.StrategyName, FormatCurrency(rec.Optimal.NetIncomeGroup)))
	}
	if rec.Worst != nil {
		sb.WriteString(fmt.Sprintf("Worst:    %s (net %s)\n",
			rec.Worst.StrategyName, FormatCurrency(rec.Worst.NetIncomeGroup)))
	}
	sb.WriteString(fmt.Sprintf("Savings:  %s by choosing the optimal strategy\n", FormatCurrency(rec.Savings)))

	return sb.String(), nil
}
