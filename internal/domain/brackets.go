package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// TaxClass selects which bracket schedule applies to an amount of income.
type TaxClass string

const (
	ClassIndividual TaxClass = "Individual"
	ClassBusiness   TaxClass = "Business"
)

// ParseTaxClass converts a string to a TaxClass.
func ParseTaxClass(s string) (TaxClass, error) {
	switch TaxClass(s) {
	case ClassIndividual, ClassBusiness:
		return TaxClass(s), nil
	}
	return "", fmt.Errorf("%w: unknown tax class %q", ErrInvalidInput, s)
}

// Bracket is one slice of a progressive schedule: income up to Limit is
// taxed at Rate. The terminal bracket carries Unbounded=true instead of a
// limit, the explicit stand-in for an infinite upper bound.
type Bracket struct {
	Limit     decimal.Decimal `yaml:"limit" json:"limit"`
	Rate      decimal.Decimal `yaml:"rate" json:"rate"`
	Unbounded bool            `yaml:"unbounded,omitempty" json:"unbounded,omitempty"`
}

// BracketUpTo builds a bounded bracket.
func BracketUpTo(limit, rate decimal.Decimal) Bracket {
	return Bracket{Limit: limit, Rate: rate}
}

// TopBracket builds the unbounded terminal bracket.
func TopBracket(rate decimal.Decimal) Bracket {
	return Bracket{Rate: rate, Unbounded: true}
}

// BracketTable is an ordered progressive schedule. Limits ascend strictly
// and the final bracket must be unbounded so every income level lands in a
// bracket.
type BracketTable []Bracket

// Validate checks the table invariants: non-empty, strictly ascending
// limits, non-negative rates, exactly one unbounded bracket in terminal
// position.
func (bt BracketTable) Validate() error {
	if len(bt) == 0 {
		return ErrMissingBrackets
	}
	prev := decimal.Zero
	for i, b := range bt {
		if b.Rate.IsNegative() {
			return fmt.Errorf("bracket %d: rate %s is negative", i, b.Rate)
		}
		if b.Unbounded {
			if i != len(bt)-1 {
				return fmt.Errorf("bracket %d: unbounded bracket must be last", i)
			}
			continue
		}
		if i == len(bt)-1 {
			return fmt.Errorf("last bracket must be unbounded")
		}
		if i > 0 && b.Limit.LessThanOrEqual(prev) {
			return fmt.Errorf("bracket %d: limit %s does not ascend past %s", i, b.Limit, prev)
		}
		prev = b.Limit
	}
	return nil
}

// BracketProvider supplies bracket schedules per (jurisdiction, class).
// Implementations must return tables already satisfying Validate; an
// unknown pair yields ErrMissingBrackets.
type BracketProvider interface {
	Brackets(jurisdiction string, class TaxClass) (BracketTable, error)
}
