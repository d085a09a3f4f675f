package calculation

import (
	"fmt"

	"github.com/moneysplit/moneysplit/internal/domain"
	"github.com/moneysplit/moneysplit/internal/jurisdiction"
	"github.com/shopspring/decimal"
)

// Logger lets callers capture engine diagnostics without binding the engine
// to a logging implementation.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// defaultDividendRate applies when a jurisdiction profile carries no
// dividend rate of its own.
var defaultDividendRate = decimal.NewFromFloat(0.15)

// Engine computes tax and distribution outcomes for a project under a
// given legal structure. It is purely functional over the registry
// snapshot it was built with: identical inputs always produce identical
// results, and concurrent calls are safe.
type Engine struct {
	Registry *jurisdiction.Registry
	Debug    bool

	logger Logger
}

// NewEngine builds an engine over a registry snapshot.
func NewEngine(reg *jurisdiction.Registry) *Engine {
	return &Engine{Registry: reg}
}

// SetLogger installs a diagnostics logger.
func (e *Engine) SetLogger(l Logger) { e.logger = l }

func (e *Engine) debugf(format string, args ...any) {
	if e.Debug && e.logger != nil {
		e.logger.Debugf(format, args...)
	}
}

// Calculate runs the full tax model for one strategy and returns the
// structured breakdown. salaryAmount is only consulted for the Mixed
// distribution; state is an optional two-letter US state code.
func (e *Engine) Calculate(fin domain.ProjectFinancials, jur string, structure domain.TaxStructure,
	method domain.DistributionMethod, salaryAmount decimal.Decimal, state string) (*domain.TaxResult, error) {

	if err := fin.Validate(); err != nil {
		return nil, err
	}

	switch structure {
	case domain.StructureIndividual:
		return e.calculateIndividual(fin, jur, state)
	case domain.StructureBusiness:
		return e.calculateBusiness(fin, jur, method, salaryAmount, state)
	default:
		return nil, fmt.Errorf("%w: unknown tax structure %q", domain.ErrInvalidInput, structure)
	}
}

// calculateIndividual models the group as self-employed people splitting
// gross income evenly. Personal tax, self-employment tax, and state tax are
// computed per person and scaled back up to the group.
func (e *Engine) calculateIndividual(fin domain.ProjectFinancials, jur, state string) (*domain.TaxResult, error) {
	gross := fin.GrossIncome()
	people := decimal.NewFromInt(int64(fin.NumPeople))
	perPerson := gross.Div(people)
	profile := e.Registry.Profile(jur)

	res := &domain.TaxResult{
		Jurisdiction: jur,
		State:        state,
		Structure:    domain.StructureIndividual,
		Method:       domain.MethodNotApplicable,
		GrossIncome:  gross,
	}

	var personal, seTax, stateTax decimal.Decimal

	if profile != nil && len(profile.FixedPersonal) > 0 {
		// Fixed-schedule jurisdictions: no standard deduction, no SE tax.
		// The first table is the national income tax; any further tables
		// (Canada's provincial schedule) report as provincial tax.
		taxes, err := sumFixedTables(perPerson, profile.FixedPersonal)
		if err != nil {
			return nil, err
		}
		personal = taxes[0]
		for _, t := range taxes[1:] {
			stateTax = stateTax.Add(t)
		}
		for i, nt := range profile.FixedPersonal {
			res.Breakdown = append(res.Breakdown, domain.BreakdownLine{
				Label:  nt.Name,
				Amount: taxes[i].Mul(people),
			})
		}
	} else {
		taxable, dedUsed := e.applyStandardDeduction(perPerson, profile, state)
		res.StandardDeductionUsed = dedUsed.Mul(people)

		table, err := e.Registry.Brackets(jur, domain.ClassIndividual)
		if err != nil {
			return nil, err
		}
		personal, err = ProgressiveTax(taxable, table)
		if err != nil {
			return nil, err
		}
		res.Breakdown = append(res.Breakdown, domain.BreakdownLine{
			Label:  "Federal Income Tax",
			Amount: personal.Mul(people),
		})

		// SE tax runs on income before the deduction.
		var seDetail SelfEmploymentTaxDetail
		if profile != nil {
			seDetail = SelfEmploymentTax(perPerson, profile.SelfEmployment)
		}
		seTax = seDetail.Total
		if seTax.GreaterThan(decimal.Zero) {
			res.Breakdown = append(res.Breakdown, domain.BreakdownLine{
				Label:  "Self-Employment Tax (SS + Medicare)",
				Amount: seTax.Mul(people),
				Note: fmt.Sprintf("Social Security: $%s, Medicare: $%s",
					seDetail.SocialSecurity.Mul(people).StringFixed(2),
					seDetail.Medicare.Mul(people).StringFixed(2)),
			})
		}

		if sp, ok := e.stateProfile(jur, state); ok {
			stateTax, err = ProgressiveTax(perPerson, sp.Table)
			if err != nil {
				return nil, err
			}
			if stateTax.GreaterThan(decimal.Zero) {
				res.Breakdown = append(res.Breakdown, domain.BreakdownLine{
					Label:  fmt.Sprintf("State Tax (%s)", state),
					Amount: stateTax.Mul(people),
				})
			}
		}
	}

	totalPerPerson := personal.Add(seTax).Add(stateTax)
	e.debugf("individual %s: per-person income %s, tax %s", jur, perPerson, totalPerPerson)

	res.PersonalTax = personal.Mul(people)
	res.SelfEmploymentTax = seTax.Mul(people)
	res.StateTax = stateTax.Mul(people)
	res.TotalTax = totalPerPerson.Mul(people)
	res.NetIncomePerPerson = perPerson.Sub(totalPerPerson)
	res.NetIncomeGroup = res.NetIncomePerPerson.Mul(people)
	res.EffectiveRate = effectiveRate(res.TotalTax, gross)
	return res, nil
}

// calculateBusiness models the group as a corporation: QBI deduction where
// applicable, corporate tax on the remainder, then distribution of
// after-tax profit by the requested method.
func (e *Engine) calculateBusiness(fin domain.ProjectFinancials, jur string,
	method domain.DistributionMethod, salaryAmount decimal.Decimal, state string) (*domain.TaxResult, error) {

	gross := fin.GrossIncome()
	people := decimal.NewFromInt(int64(fin.NumPeople))
	profile := e.Registry.Profile(jur)

	res := &domain.TaxResult{
		Jurisdiction: jur,
		State:        state,
		Structure:    domain.StructureBusiness,
		Method:       method,
		GrossIncome:  gross,
	}

	qbi := decimal.Zero
	if profile != nil && profile.QBI != nil && gross.GreaterThan(decimal.Zero) {
		qbi = gross.Mul(profile.QBI.Rate)
		res.Breakdown = append(res.Breakdown, domain.BreakdownLine{
			Label:  fmt.Sprintf("QBI Deduction (%s%%)", profile.QBI.Rate.Mul(decimal.NewFromInt(100)).String()),
			Amount: qbi.Neg(),
			Note:   fmt.Sprintf("Reduces taxable business income by $%s", qbi.StringFixed(0)),
		})
	}
	taxableBusiness := gross.Sub(qbi)

	corporate, err := e.corporateTax(taxableBusiness, jur, profile)
	if err != nil {
		return nil, err
	}
	res.CorporateTax = corporate
	res.Breakdown = append(res.Breakdown, domain.BreakdownLine{Label: "Corporate Tax", Amount: corporate})

	afterCorp := gross.Sub(corporate)
	e.debugf("business %s: gross %s, corporate tax %s, after-corp %s", jur, gross, corporate, afterCorp)

	switch method {
	case domain.MethodSalary:
		personal, dedUsed, err := e.salaryTax(afterCorp, jur, profile, state)
		if err != nil {
			return nil, err
		}
		res.PersonalTax = personal
		res.StandardDeductionUsed = dedUsed
		res.TotalTax = corporate.Add(personal)
		res.NetIncomeGroup = afterCorp.Sub(personal)
		res.Breakdown = append(res.Breakdown, domain.BreakdownLine{
			Label:  "Personal Tax (on salary)",
			Amount: personal,
		})

	case domain.MethodDividend:
		rate := e.dividendRate(profile)
		dividend := decimal.Zero
		if afterCorp.GreaterThan(decimal.Zero) {
			dividend = afterCorp.Mul(rate)
		}
		res.DividendTax = dividend
		res.TotalTax = corporate.Add(dividend)
		res.NetIncomeGroup = afterCorp.Sub(dividend)
		res.Breakdown = append(res.Breakdown, domain.BreakdownLine{
			Label:  fmt.Sprintf("Dividend Tax (%s%%)", rate.Mul(decimal.NewFromInt(100)).String()),
			Amount: dividend,
		})

	case domain.MethodMixed:
		autoReason := ""
		if salaryAmount.IsZero() {
			salaryAmount, autoReason = optimalSalarySplit(afterCorp, profile)
		}
		if salaryAmount.IsPositive() && salaryAmount.GreaterThan(afterCorp) {
			return nil, fmt.Errorf("%w: salary %s exceeds after-tax profit %s",
				domain.ErrSalaryExceedsProfit, salaryAmount.StringFixed(2), afterCorp.StringFixed(2))
		}

		salaryTax, dedUsed, err := e.salaryTax(salaryAmount, jur, profile, state)
		if err != nil {
			return nil, err
		}
		remainder := afterCorp.Sub(salaryAmount)
		rate := e.dividendRate(profile)
		dividend := decimal.Zero
		if remainder.GreaterThan(decimal.Zero) {
			dividend = remainder.Mul(rate)
		}

		res.PersonalTax = salaryTax
		res.DividendTax = dividend
		res.StandardDeductionUsed = dedUsed
		res.TotalTax = corporate.Add(salaryTax).Add(dividend)
		res.NetIncomeGroup = salaryAmount.Sub(salaryTax).Add(remainder).Sub(dividend)
		res.Breakdown = append(res.Breakdown,
			domain.BreakdownLine{
				Label:  fmt.Sprintf("Personal Tax (on $%s salary)", salaryAmount.StringFixed(0)),
				Amount: salaryTax,
			},
			domain.BreakdownLine{
				Label:  fmt.Sprintf("Dividend Tax (%s%% on $%s)", rate.Mul(decimal.NewFromInt(100)).String(), remainder.StringFixed(0)),
				Amount: dividend,
			})
		if autoReason != "" {
			res.Breakdown = append(res.Breakdown, domain.BreakdownLine{
				Label: "Auto-Optimized Split",
				Note:  autoReason,
			})
		}

	case domain.MethodReinvest:
		res.TotalTax = corporate
		res.NetIncomeGroup = decimal.Zero
		retained := afterCorp
		res.CompanyRetained = &retained
		res.Breakdown = append(res.Breakdown, domain.BreakdownLine{
			Label: "Personal Tax",
			Note:  "Deferred until distribution",
		})

	default:
		// N/A and anything else: distributing nothing is not a business
		// strategy, and silently assuming Salary would hide caller bugs.
		return nil, fmt.Errorf("%w: distribution method %q is not valid for a Business structure", domain.ErrInvalidInput, method)
	}

	res.NetIncomePerPerson = res.NetIncomeGroup.Div(people)
	res.EffectiveRate = effectiveRate(res.TotalTax, gross)
	return res, nil
}

// corporateTax applies the flat rate where one is configured, otherwise the
// progressive Business schedule.
func (e *Engine) corporateTax(taxableBusiness decimal.Decimal, jur string, profile *domain.JurisdictionProfile) (decimal.Decimal, error) {
	if profile != nil && profile.FlatCorporateRate != nil {
		if taxableBusiness.LessThanOrEqual(decimal.Zero) {
			return decimal.Zero, nil
		}
		return taxableBusiness.Mul(*profile.FlatCorporateRate), nil
	}
	table, err := e.Registry.Brackets(jur, domain.ClassBusiness)
	if err != nil {
		return decimal.Zero, err
	}
	return ProgressiveTax(taxableBusiness, table)
}

// salaryTax computes personal income tax on a salary distribution: fixed
// schedules where the jurisdiction carries them, otherwise standard
// deduction then the provider's Individual schedule. It returns the tax and
// the deduction actually applied.
func (e *Engine) salaryTax(salary decimal.Decimal, jur string, profile *domain.JurisdictionProfile, state string) (decimal.Decimal, decimal.Decimal, error) {
	if profile != nil && len(profile.FixedPersonal) > 0 {
		taxes, err := sumFixedTables(salary, profile.FixedPersonal)
		if err != nil {
			return decimal.Zero, decimal.Zero, err
		}
		total := decimal.Zero
		for _, t := range taxes {
			total = total.Add(t)
		}
		return total, decimal.Zero, nil
	}

	taxable, dedUsed := e.applyStandardDeduction(salary, profile, state)
	table, err := e.Registry.Brackets(jur, domain.ClassIndividual)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	tax, err := ProgressiveTax(taxable, table)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return tax, dedUsed, nil
}

// applyStandardDeduction reduces income by the jurisdiction deduction plus
// the state deduction when a known state is supplied, clamping at zero.
func (e *Engine) applyStandardDeduction(income decimal.Decimal, profile *domain.JurisdictionProfile, state string) (taxable, deduction decimal.Decimal) {
	deduction = profile.StandardDeductionOrZero()
	if profile != nil {
		if sp, ok := e.stateProfile(profile.Code, state); ok {
			deduction = deduction.Add(sp.StandardDeduction)
		}
	}
	taxable = income.Sub(deduction)
	if taxable.IsNegative() {
		taxable = decimal.Zero
	}
	return taxable, deduction
}

// stateProfile resolves an optional state code. State schedules only exist
// for the US; unknown codes are ignored rather than failing the whole
// calculation.
func (e *Engine) stateProfile(jur, state string) (domain.StateProfile, bool) {
	if jur != "US" || state == "" {
		return domain.StateProfile{}, false
	}
	return e.Registry.State(state)
}

func (e *Engine) dividendRate(profile *domain.JurisdictionProfile) decimal.Decimal {
	if profile != nil && profile.DividendRate != nil {
		return *profile.DividendRate
	}
	return defaultDividendRate
}

// optimalSalarySplit is the Mixed auto-split heuristic: fill salary up to
// the configured low-bracket top plus the standard deduction and pay the
// remainder as dividend, or split evenly when the jurisdiction has no
// configured target. This is a rule of thumb, not a solved optimum.
func optimalSalarySplit(afterCorp decimal.Decimal, profile *domain.JurisdictionProfile) (decimal.Decimal, string) {
	if afterCorp.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, "No distributable profit; nothing to split"
	}
	if profile != nil && profile.MixedSalaryBracketTop != nil {
		target := profile.MixedSalaryBracketTop.Add(profile.StandardDeductionOrZero())
		salary := decimal.Min(afterCorp, target)
		reason := fmt.Sprintf("Pay salary up to top of low bracket ($%s) plus deduction, rest as dividend",
			profile.MixedSalaryBracketTop.StringFixed(0))
		return salary, reason
	}
	half := afterCorp.Div(decimal.NewFromInt(2))
	return half, "50/50 salary-dividend split (no jurisdiction-specific heuristic)"
}

// effectiveRate is total tax over gross income in percent, zero when gross
// income is not positive.
func effectiveRate(totalTax, gross decimal.Decimal) decimal.Decimal {
	if gross.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return totalTax.Div(gross).Mul(decimal.NewFromInt(100))
}
