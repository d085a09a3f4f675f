package calculation

import (
	"github.com/moneysplit/moneysplit/internal/domain"
	"github.com/shopspring/decimal"
)

// SelfEmploymentTaxDetail itemizes the components of the self-employment
// tax for breakdown reporting.
type SelfEmploymentTaxDetail struct {
	SocialSecurity     decimal.Decimal
	Medicare           decimal.Decimal
	AdditionalMedicare decimal.Decimal
	Total              decimal.Decimal
}

// SelfEmploymentTax computes the payroll-style tax on self-employment
// income. Net earnings are income scaled by the net-earnings factor
// (92.35%, reflecting the deductible employer half); Social Security
// applies up to the wage base, Medicare to all net earnings, and the
// additional Medicare rate to net earnings over the threshold.
//
// A nil rule set means the jurisdiction does not levy this tax.
func SelfEmploymentTax(income decimal.Decimal, rules *domain.SelfEmploymentRules) SelfEmploymentTaxDetail {
	if rules == nil || income.LessThanOrEqual(decimal.Zero) {
		return SelfEmploymentTaxDetail{}
	}

	netEarnings := income.Mul(rules.NetEarningsFactor)

	ssBase := decimal.Min(netEarnings, rules.WageBase)
	ss := ssBase.Mul(rules.SocialSecurityRate)

	medicare := netEarnings.Mul(rules.MedicareRate)

	additional := decimal.Zero
	if netEarnings.GreaterThan(rules.AdditionalMedicareThreshold) {
		excess := netEarnings.Sub(rules.AdditionalMedicareThreshold)
		additional = excess.Mul(rules.AdditionalMedicareRate)
	}

	return SelfEmploymentTaxDetail{
		SocialSecurity:     ss,
		Medicare:           medicare,
		AdditionalMedicare: additional,
		Total:              ss.Add(medicare).Add(additional),
	}
}
