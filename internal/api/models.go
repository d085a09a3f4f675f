package api

import (
	"fmt"

	"github.com/moneysplit/moneysplit/internal/domain"
	"github.com/shopspring/decimal"
)

// PersonInput is one member of a project.
type PersonInput struct {
	Name      string          `json:"name"`
	WorkShare decimal.Decimal `json:"work_share"`
}

// CalculateRequest runs one strategy without persisting anything.
type CalculateRequest struct {
	Revenue            decimal.Decimal `json:"revenue"`
	TotalCosts         decimal.Decimal `json:"total_costs"`
	NumPeople          int             `json:"num_people"`
	Country            string          `json:"country"`
	State              string          `json:"state,omitempty"`
	TaxType            string          `json:"tax_type"`
	DistributionMethod string          `json:"distribution_method,omitempty"`
	SalaryAmount       decimal.Decimal `json:"salary_amount,omitempty"`
}

// Validate checks the request and resolves the enum fields.
func (cr *CalculateRequest) Validate() (domain.ProjectFinancials, domain.TaxStructure, domain.DistributionMethod, error) {
	var fin domain.ProjectFinancials
	if cr.Country == "" {
		return fin, "", "", fmt.Errorf("%w: country is required", domain.ErrInvalidInput)
	}
	structure, err := domain.ParseTaxStructure(cr.TaxType)
	if err != nil {
		return fin, "", "", err
	}
	method, err := domain.ParseDistributionMethod(cr.DistributionMethod)
	if err != nil {
		return fin, "", "", err
	}
	if cr.SalaryAmount.IsNegative() {
		return fin, "", "", fmt.Errorf("%w: salary_amount cannot be negative", domain.ErrInvalidInput)
	}

	fin = domain.ProjectFinancials{
		Revenue:    cr.Revenue,
		TotalCosts: cr.TotalCosts,
		NumPeople:  cr.NumPeople,
	}
	if err := fin.Validate(); err != nil {
		return fin, "", "", err
	}
	return fin, structure, method, nil
}

// OptimalRequest compares every strategy for a project.
type OptimalRequest struct {
	Revenue    decimal.Decimal `json:"revenue"`
	TotalCosts decimal.Decimal `json:"total_costs"`
	NumPeople  int             `json:"num_people"`
	Country    string          `json:"country"`
	State      string          `json:"state,omitempty"`
}

// Validate checks the request.
func (or *OptimalRequest) Validate() (domain.ProjectFinancials, error) {
	var fin domain.ProjectFinancials
	if or.Country == "" {
		return fin, fmt.Errorf("%w: country is required", domain.ErrInvalidInput)
	}
	fin = domain.ProjectFinancials{
		Revenue:    or.Revenue,
		TotalCosts: or.TotalCosts,
		NumPeople:  or.NumPeople,
	}
	return fin, fin.Validate()
}

// ProjectCreateRequest calculates a project and persists the record with
// its per-person split.
type ProjectCreateRequest struct {
	CalculateRequest
	People []PersonInput `json:"people"`
}

// workShareTolerance bounds float drift when clients sum shares.
var workShareTolerance = decimal.NewFromFloat(0.01)

// Validate additionally checks the people list: the count must match
// num_people and the work shares must sum to 1.
func (pr *ProjectCreateRequest) Validate() (domain.ProjectFinancials, domain.TaxStructure, domain.DistributionMethod, error) {
	fin, structure, method, err := pr.CalculateRequest.Validate()
	if err != nil {
		return fin, structure, method, err
	}

	if len(pr.People) != pr.NumPeople {
		return fin, "", "", fmt.Errorf("%w: expected %d people, got %d", domain.ErrInvalidInput, pr.NumPeople, len(pr.People))
	}
	total := decimal.Zero
	for i, p := range pr.People {
		if p.Name == "" {
			return fin, "", "", fmt.Errorf("%w: person %d has no name", domain.ErrInvalidInput, i)
		}
		if p.WorkShare.IsNegative() || p.WorkShare.GreaterThan(decimal.NewFromInt(1)) {
			return fin, "", "", fmt.Errorf("%w: work share for %q must be between 0 and 1", domain.ErrInvalidInput, p.Name)
		}
		total = total.Add(p.WorkShare)
	}
	if total.Sub(decimal.NewFromInt(1)).Abs().GreaterThan(workShareTolerance) {
		return fin, "", "", fmt.Errorf("%w: work shares must sum to 1.0, got %s", domain.ErrInvalidInput, total)
	}
	return fin, structure, method, nil
}

// BracketCreateRequest adds one stored bracket row.
type BracketCreateRequest struct {
	Country     string           `json:"country"`
	TaxType     string           `json:"tax_type"`
	IncomeLimit *decimal.Decimal `json:"income_limit"` // null means unbounded
	Rate        decimal.Decimal  `json:"rate"`
}

// Validate checks the bracket fields.
func (br *BracketCreateRequest) Validate() (domain.TaxClass, error) {
	if br.Country == "" {
		return "", fmt.Errorf("%w: country is required", domain.ErrInvalidInput)
	}
	class, err := domain.ParseTaxClass(br.TaxType)
	if err != nil {
		return "", err
	}
	if br.Rate.IsNegative() || br.Rate.GreaterThan(decimal.NewFromInt(1)) {
		return "", fmt.Errorf("%w: rate must be between 0 and 1", domain.ErrInvalidInput)
	}
	if br.IncomeLimit != nil && br.IncomeLimit.IsNegative() {
		return "", fmt.Errorf("%w: income_limit cannot be negative", domain.ErrInvalidInput)
	}
	return class, nil
}

// ProjectCreateResponse confirms a persisted project.
type ProjectCreateResponse struct {
	RecordID int64             `json:"record_id"`
	Message  string            `json:"message"`
	Result   *domain.TaxResult `json:"result"`
}

// MessageResponse is the generic confirmation body.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}
