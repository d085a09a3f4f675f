package domain

import "github.com/shopspring/decimal"

// BreakdownLine is one labelled component of a tax calculation. Negative
// amounts are informational (the QBI deduction line); Note carries extra
// context such as the Social Security / Medicare split.
type BreakdownLine struct {
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
	Note   string          `json:"note,omitempty"`
}

// TaxResult is the full outcome of one strategy calculation. The sum of
// breakdown amounts, excluding informational negative lines, equals
// TotalTax; for cash-distributing strategies NetIncomeGroup plus TotalTax
// equals GrossIncome.
type TaxResult struct {
	StrategyName string             `json:"strategy_name,omitempty"`
	Jurisdiction string             `json:"jurisdiction"`
	State        string             `json:"state,omitempty"`
	Structure    TaxStructure       `json:"tax_structure"`
	Method       DistributionMethod `json:"distribution_method"`

	GrossIncome       decimal.Decimal `json:"gross_income"`
	CorporateTax      decimal.Decimal `json:"corporate_tax"`
	PersonalTax       decimal.Decimal `json:"personal_tax"`
	SelfEmploymentTax decimal.Decimal `json:"se_tax"`
	StateTax          decimal.Decimal `json:"state_tax"`
	DividendTax       decimal.Decimal `json:"dividend_tax"`
	TotalTax          decimal.Decimal `json:"total_tax"`

	NetIncomeGroup     decimal.Decimal `json:"net_income_group"`
	NetIncomePerPerson decimal.Decimal `json:"net_income_per_person"`

	// EffectiveRate is total tax over gross income, in percent. Zero when
	// gross income is not positive.
	EffectiveRate decimal.Decimal `json:"effective_rate"`

	// StandardDeductionUsed is the group total deduction applied, reported
	// for transparency.
	StandardDeductionUsed decimal.Decimal `json:"standard_deduction_used"`

	Breakdown []BreakdownLine `json:"breakdown"`

	// CompanyRetained is set only for Reinvest: profit kept in the company
	// instead of distributed.
	CompanyRetained *decimal.Decimal `json:"company_retained,omitempty"`
}

// Recommendation is the outcome of the optimal-strategy search. Strategies
// holds every enumerated result including Reinvest; Optimal and Worst rank
// only strategies that distribute cash now.
type Recommendation struct {
	Strategies []*TaxResult    `json:"all_strategies"`
	Optimal    *TaxResult      `json:"optimal"`
	Worst      *TaxResult      `json:"worst"`
	Savings    decimal.Decimal `json:"savings"`
}
