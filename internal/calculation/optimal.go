package calculation

import (
	"fmt"

	"github.com/moneysplit/moneysplit/internal/domain"
	"github.com/shopspring/decimal"
)

// strategySpec pairs a display name with the structure/method it runs.
type strategySpec struct {
	name      string
	structure domain.TaxStructure
	method    domain.DistributionMethod
}

// allStrategies is the full strategy space the optimizer explores.
var allStrategies = []strategySpec{
	{"Individual Tax", domain.StructureIndividual, domain.MethodNotApplicable},
	{"Business + Salary", domain.StructureBusiness, domain.MethodSalary},
	{"Business + Dividend", domain.StructureBusiness, domain.MethodDividend},
	{"Business + Mixed (Optimized)", domain.StructureBusiness, domain.MethodMixed},
	{"Business + Reinvest", domain.StructureBusiness, domain.MethodReinvest},
}

// FindOptimal runs every strategy for the given financials and ranks the
// outcomes by group net income. Reinvest is always reported for comparison
// but never ranked, since its distributed net is zero by construction.
// Strategies that error out for this jurisdiction are skipped rather than
// failing the whole comparison; if every strategy errors, the first error
// is returned as-is.
func (e *Engine) FindOptimal(fin domain.ProjectFinancials, jur, state string) (*domain.Recommendation, error) {
	if err := fin.Validate(); err != nil {
		return nil, err
	}

	rec := &domain.Recommendation{}
	var optimal, worst *domain.TaxResult
	var firstErr error

	for _, s := range allStrategies {
		res, err := e.Calculate(fin, jur, s.structure, s.method, decimal.Zero, state)
		if err != nil {
			e.debugf("strategy %q skipped: %v", s.name, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		res.StrategyName = s.name
		rec.Strategies = append(rec.Strategies, res)

		if s.method == domain.MethodReinvest || !res.NetIncomeGroup.GreaterThan(decimal.Zero) {
			continue
		}
		if optimal == nil || res.NetIncomeGroup.GreaterThan(optimal.NetIncomeGroup) {
			optimal = res
		}
		if worst == nil || res.NetIncomeGroup.LessThan(worst.NetIncomeGroup) {
			worst = res
		}
	}

	if len(rec.Strategies) == 0 {
		// Every strategy failed the same way; surface the real cause
		// instead of reporting it as a viability problem.
		return nil, firstErr
	}
	if optimal == nil {
		return nil, fmt.Errorf("%w: no strategy yields positive net income for %s", domain.ErrNoViableStrategy, jur)
	}

	rec.Optimal = optimal
	rec.Worst = worst
	rec.Savings = optimal.NetIncomeGroup.Sub(worst.NetIncomeGroup)
	return rec, nil
}
