package calculation

import (
	"github.com/moneysplit/moneysplit/internal/domain"
	"github.com/shopspring/decimal"
)

// ProgressiveTax walks a bracket schedule with a running previous-limit
// accumulator: each bracket taxes only the slice of income inside it. The
// terminal bracket is unbounded so the walk always terminates with the full
// amount taxed.
//
// Zero or negative income yields zero tax. The source this model derives
// from let losses produce a negative first-bracket amount; refunds on
// losses are out of model, so the result is clamped here instead.
func ProgressiveTax(income decimal.Decimal, table domain.BracketTable) (decimal.Decimal, error) {
	if len(table) == 0 {
		return decimal.Zero, domain.ErrMissingBrackets
	}
	if income.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, nil
	}

	tax := decimal.Zero
	prev := decimal.Zero
	for _, b := range table {
		if !b.Unbounded && income.GreaterThan(b.Limit) {
			tax = tax.Add(b.Limit.Sub(prev).Mul(b.Rate))
			prev = b.Limit
			continue
		}
		tax = tax.Add(income.Sub(prev).Mul(b.Rate))
		break
	}
	return tax, nil
}

// sumFixedTables applies each named fixed schedule to the full amount and
// returns the per-table taxes in order.
func sumFixedTables(income decimal.Decimal, tables []domain.NamedTable) ([]decimal.Decimal, error) {
	taxes := make([]decimal.Decimal, 0, len(tables))
	for _, nt := range tables {
		tax, err := ProgressiveTax(income, nt.Table)
		if err != nil {
			return nil, err
		}
		taxes = append(taxes, tax)
	}
	return taxes, nil
}
