package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// TaxStructure is the legal form the group operates under.
type TaxStructure string

const (
	StructureIndividual TaxStructure = "Individual"
	StructureBusiness   TaxStructure = "Business"
)

// ParseTaxStructure converts a string to a TaxStructure. Anything outside
// the closed set is an input error.
func ParseTaxStructure(s string) (TaxStructure, error) {
	switch TaxStructure(s) {
	case StructureIndividual, StructureBusiness:
		return TaxStructure(s), nil
	}
	return "", fmt.Errorf("%w: unknown tax structure %q (must be Individual or Business)", ErrInvalidInput, s)
}

// DistributionMethod is how after-corporate-tax profit reaches the owners.
// Only meaningful for the Business structure.
type DistributionMethod string

const (
	MethodNotApplicable DistributionMethod = "N/A"
	MethodSalary        DistributionMethod = "Salary"
	MethodDividend      DistributionMethod = "Dividend"
	MethodMixed         DistributionMethod = "Mixed"
	MethodReinvest      DistributionMethod = "Reinvest"
)

// ParseDistributionMethod converts a string to a DistributionMethod. An
// empty string maps to N/A; unknown values are rejected, never treated as
// Salary.
func ParseDistributionMethod(s string) (DistributionMethod, error) {
	if s == "" {
		return MethodNotApplicable, nil
	}
	switch DistributionMethod(s) {
	case MethodNotApplicable, MethodSalary, MethodDividend, MethodMixed, MethodReinvest:
		return DistributionMethod(s), nil
	}
	return "", fmt.Errorf("%w: unknown distribution method %q", ErrInvalidInput, s)
}

// ProjectFinancials are the money facts of a single project. Gross income
// may be negative when costs exceed revenue.
type ProjectFinancials struct {
	Revenue    decimal.Decimal `yaml:"revenue" json:"revenue"`
	TotalCosts decimal.Decimal `yaml:"total_costs" json:"total_costs"`
	NumPeople  int             `yaml:"num_people" json:"num_people"`
}

// GrossIncome is revenue minus costs.
func (pf ProjectFinancials) GrossIncome() decimal.Decimal {
	return pf.Revenue.Sub(pf.TotalCosts)
}

// Validate rejects non-positive people counts.
func (pf ProjectFinancials) Validate() error {
	if pf.NumPeople <= 0 {
		return fmt.Errorf("%w: number of people must be greater than 0, got %d", ErrInvalidInput, pf.NumPeople)
	}
	return nil
}
