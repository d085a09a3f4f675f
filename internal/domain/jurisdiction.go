package domain

import "github.com/shopspring/decimal"

// SelfEmploymentRules parameterize the payroll-style tax on self-employment
// earnings. Only jurisdictions that levy it carry a non-nil rule set.
type SelfEmploymentRules struct {
	NetEarningsFactor           decimal.Decimal `yaml:"net_earnings_factor" json:"net_earnings_factor"`
	SocialSecurityRate          decimal.Decimal `yaml:"social_security_rate" json:"social_security_rate"`
	WageBase                    decimal.Decimal `yaml:"wage_base" json:"wage_base"`
	MedicareRate                decimal.Decimal `yaml:"medicare_rate" json:"medicare_rate"`
	AdditionalMedicareRate      decimal.Decimal `yaml:"additional_medicare_rate" json:"additional_medicare_rate"`
	AdditionalMedicareThreshold decimal.Decimal `yaml:"additional_medicare_threshold" json:"additional_medicare_threshold"`
}

// QBIRules parameterize the qualified-business-income deduction applied
// before corporate tax. No income phase-out is modeled.
type QBIRules struct {
	Rate decimal.Decimal `yaml:"rate" json:"rate"`
}

// NamedTable is a fixed personal-income schedule with a display label, used
// by jurisdictions whose personal tax is hard-coded rather than sourced
// from the bracket provider. Canada carries two (federal plus provincial);
// the second and later tables report as state/provincial tax.
type NamedTable struct {
	Name  string       `yaml:"name" json:"name"`
	Table BracketTable `yaml:"brackets" json:"brackets"`
}

// StateProfile is a US state's flat-bracket schedule plus its own standard
// deduction. No-income-tax states carry a single unbounded 0% bracket.
type StateProfile struct {
	Code              string          `yaml:"code" json:"code"`
	StandardDeduction decimal.Decimal `yaml:"standard_deduction" json:"standard_deduction"`
	Table             BracketTable    `yaml:"brackets" json:"brackets"`
}

// JurisdictionProfile is the per-country rule set. Nil pointer fields mean
// "not applicable", which is distinct from a rate of zero.
type JurisdictionProfile struct {
	Code string `yaml:"code" json:"code"`

	// StandardDeduction reduces personal taxable income before the
	// individual schedule runs. Nil for jurisdictions whose fixed tables
	// already embed an allowance band.
	StandardDeduction *decimal.Decimal `yaml:"standard_deduction,omitempty" json:"standard_deduction,omitempty"`

	SelfEmployment *SelfEmploymentRules `yaml:"self_employment,omitempty" json:"self_employment,omitempty"`
	QBI            *QBIRules            `yaml:"qbi,omitempty" json:"qbi,omitempty"`

	// DividendRate taxes distributions paid as dividends. Engines fall back
	// to a default when nil.
	DividendRate *decimal.Decimal `yaml:"dividend_rate,omitempty" json:"dividend_rate,omitempty"`

	// FlatCorporateRate replaces the progressive Business schedule when set.
	FlatCorporateRate *decimal.Decimal `yaml:"flat_corporate_rate,omitempty" json:"flat_corporate_rate,omitempty"`

	// FixedPersonal, when non-empty, replaces the provider-sourced
	// Individual schedule; each table is applied to the full amount and the
	// results summed.
	FixedPersonal []NamedTable `yaml:"fixed_personal,omitempty" json:"fixed_personal,omitempty"`

	// MixedSalaryBracketTop is the income level the Mixed auto-split fills
	// salary up to (plus the standard deduction). Nil means an even split.
	MixedSalaryBracketTop *decimal.Decimal `yaml:"mixed_salary_bracket_top,omitempty" json:"mixed_salary_bracket_top,omitempty"`
}

// StandardDeductionOrZero resolves the optional deduction for arithmetic.
func (jp *JurisdictionProfile) StandardDeductionOrZero() decimal.Decimal {
	if jp == nil || jp.StandardDeduction == nil {
		return decimal.Zero
	}
	return *jp.StandardDeduction
}
