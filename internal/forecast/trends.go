package forecast

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// TrendReport summarizes direction and growth of the monthly history.
type TrendReport struct {
	MonthsAnalyzed      int      `json:"months_analyzed"`
	RevenueTrend        string   `json:"revenue_trend"`
	CostTrend           string   `json:"cost_trend"`
	ProfitTrend         string   `json:"profit_trend"`
	RevenueGrowthPct    float64  `json:"revenue_growth"`
	CostGrowthPct       float64  `json:"cost_growth"`
	ProfitGrowthPct     float64  `json:"profit_growth"`
	Seasonality         string   `json:"seasonality"`
	AvgProjectsPerMonth float64  `json:"avg_projects_per_month"`
	Insights            []string `json:"insights"`
}

// AnalyzeTrends derives direction, growth rates, and a volatility-based
// seasonality signal from at least three months of history.
func AnalyzeTrends(history []Point) (*TrendReport, error) {
	if len(history) < 3 {
		return nil, fmt.Errorf("%w: need at least 3 months for trend analysis, have %d", ErrInsufficientData, len(history))
	}

	revenues := make([]float64, len(history))
	costs := make([]float64, len(history))
	profits := make([]float64, len(history))
	projects := make([]float64, len(history))
	for i, p := range history {
		revenues[i] = p.Revenue.InexactFloat64()
		costs[i] = p.Costs.InexactFloat64()
		profits[i] = p.Profit.InexactFloat64()
		projects[i] = float64(p.NumProjects)
	}

	report := &TrendReport{
		MonthsAnalyzed:      len(history),
		RevenueTrend:        direction(revenues),
		CostTrend:           direction(costs),
		ProfitTrend:         direction(profits),
		RevenueGrowthPct:    growthPct(revenues),
		CostGrowthPct:       growthPct(costs),
		ProfitGrowthPct:     growthPct(profits),
		Seasonality:         seasonality(revenues),
		AvgProjectsPerMonth: mean(projects),
	}
	report.Insights = insights(report)
	return report, nil
}

// BreakEvenReport relates revenue to costs for one project.
type BreakEvenReport struct {
	Revenue           decimal.Decimal `json:"revenue"`
	Costs             decimal.Decimal `json:"costs"`
	Profit            decimal.Decimal `json:"profit"`
	ProfitMarginPct   decimal.Decimal `json:"profit_margin"`
	BreakEvenRevenue  decimal.Decimal `json:"break_even_revenue"`
	MarginOfSafety    decimal.Decimal `json:"margin_of_safety"`
	MarginOfSafetyPct decimal.Decimal `json:"margin_of_safety_pct"`
}

// BreakEven computes the break-even revenue and margin of safety. Costs
// are treated as fixed for the project, so break-even revenue equals
// costs and the safety margin is the profit itself.
func BreakEven(revenue, costs decimal.Decimal) BreakEvenReport {
	profit := revenue.Sub(costs)
	margin := decimal.Zero
	if revenue.GreaterThan(decimal.Zero) {
		margin = profit.Div(revenue).Mul(decimal.NewFromInt(100))
	}
	return BreakEvenReport{
		Revenue:           revenue,
		Costs:             costs,
		Profit:            profit,
		ProfitMarginPct:   margin,
		BreakEvenRevenue:  costs,
		MarginOfSafety:    profit,
		MarginOfSafetyPct: margin,
	}
}

func direction(values []float64) string {
	if values[len(values)-1] > values[0] {
		return "increasing"
	}
	return "decreasing"
}

func growthPct(values []float64) float64 {
	if values[0] <= 0 {
		return 0
	}
	return (values[len(values)-1] - values[0]) / values[0] * 100
}

// seasonality uses the coefficient of variation as a rough volatility
// proxy; six months of data is the minimum for it to mean anything.
func seasonality(revenues []float64) string {
	if len(revenues) < 6 {
		return "Insufficient data"
	}
	avg := mean(revenues)
	if avg <= 0 {
		return "Insufficient data"
	}
	volatility := stdDev(revenues) / avg
	switch {
	case volatility > 0.3:
		return "High seasonality detected"
	case volatility > 0.1:
		return "Low seasonality"
	default:
		return "Stable"
	}
}

func insights(r *TrendReport) []string {
	var out []string

	if r.RevenueTrend == "increasing" && r.CostTrend == "increasing" {
		if r.CostGrowthPct > r.RevenueGrowthPct {
			out = append(out, "Costs are growing faster than revenue. Review cost management.")
		} else {
			out = append(out, "Revenue growth is outpacing cost growth.")
		}
	}
	if r.RevenueTrend == "decreasing" {
		out = append(out, "Revenue is declining. Consider marketing efforts or new revenue streams.")
	}
	if r.ProfitTrend == "decreasing" {
		out = append(out, "Profitability is declining. Focus on cost reduction or pricing optimization.")
	} else {
		out = append(out, "Profitability is improving. Maintain current strategy.")
	}
	if math.Abs(r.RevenueGrowthPct) < 5 {
		out = append(out, "Revenue is relatively stable. Consider growth strategies.")
	}

	if len(out) == 0 {
		out = append(out, "Business metrics are stable.")
	}
	return out
}
