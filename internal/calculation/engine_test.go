package calculation

import (
	"testing"

	"github.com/moneysplit/moneysplit/internal/domain"
	"github.com/moneysplit/moneysplit/internal/jurisdiction"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoPersonProject is the reference scenario used throughout: $100k revenue,
// $20k costs, two people, so $80k gross and $40k per person.
func twoPersonProject() domain.ProjectFinancials {
	return domain.ProjectFinancials{
		Revenue:    decimal.NewFromInt(100000),
		TotalCosts: decimal.NewFromInt(20000),
		NumPeople:  2,
	}
}

func newTestEngine() *Engine {
	return NewEngine(jurisdiction.DefaultRegistry())
}

func TestCalculateIndividualUS(t *testing.T) {
	e := newTestEngine()
	res, err := e.Calculate(twoPersonProject(), "US", domain.StructureIndividual, domain.MethodNotApplicable, decimal.Zero, "")
	require.NoError(t, err)

	// Per person: $40k income, $13850 deduction, $26150 taxable.
	assert.Equal(t, "80000.00", res.GrossIncome.StringFixed(2))
	assert.Equal(t, "5865.00", res.PersonalTax.StringFixed(2))      // 2932.50 x 2
	assert.Equal(t, "11303.64", res.SelfEmploymentTax.StringFixed(2)) // 5651.82 x 2
	assert.Equal(t, "0.00", res.StateTax.StringFixed(2))
	assert.Equal(t, "17168.64", res.TotalTax.StringFixed(2))
	assert.Equal(t, "62831.36", res.NetIncomeGroup.StringFixed(2))
	assert.Equal(t, "31415.68", res.NetIncomePerPerson.StringFixed(2))
	assert.Equal(t, "27700.00", res.StandardDeductionUsed.StringFixed(2))
	assert.Equal(t, "21.46", res.EffectiveRate.StringFixed(2))
	assert.Equal(t, domain.MethodNotApplicable, res.Method)
}

func TestCalculateIndividualUSWithState(t *testing.T) {
	e := newTestEngine()

	t.Run("california", func(t *testing.T) {
		res, err := e.Calculate(twoPersonProject(), "US", domain.StructureIndividual, domain.MethodNotApplicable, decimal.Zero, "CA")
		require.NoError(t, err)

		// Deduction per person 13850 + 5202, taxable 20948; state tax runs
		// on the undeducted 40000.
		assert.Equal(t, "4616.52", res.PersonalTax.StringFixed(2))
		assert.Equal(t, "2128.82", res.StateTax.StringFixed(2))
		assert.Equal(t, "18048.98", res.TotalTax.StringFixed(2))
		assert.Equal(t, "61951.02", res.NetIncomeGroup.StringFixed(2))
		assert.Equal(t, "38104.00", res.StandardDeductionUsed.StringFixed(2))
	})

	t.Run("texas has no income tax", func(t *testing.T) {
		res, err := e.Calculate(twoPersonProject(), "US", domain.StructureIndividual, domain.MethodNotApplicable, decimal.Zero, "TX")
		require.NoError(t, err)
		assert.Equal(t, "0.00", res.StateTax.StringFixed(2))
		assert.Equal(t, "5865.00", res.PersonalTax.StringFixed(2))
		for _, line := range res.Breakdown {
			assert.NotContains(t, line.Label, "State Tax")
		}
	})

	t.Run("unknown state is ignored", func(t *testing.T) {
		res, err := e.Calculate(twoPersonProject(), "US", domain.StructureIndividual, domain.MethodNotApplicable, decimal.Zero, "ZZ")
		require.NoError(t, err)
		assert.Equal(t, "17168.64", res.TotalTax.StringFixed(2))
	})
}

func TestCalculateIndividualSpain(t *testing.T) {
	e := newTestEngine()
	res, err := e.Calculate(twoPersonProject(), "Spain", domain.StructureIndividual, domain.MethodNotApplicable, decimal.Zero, "")
	require.NoError(t, err)

	// Per person: 40000 - 5550 allowance = 34450 taxable, 8500.50 tax.
	// Spain carries no self-employment rules in the default registry.
	assert.Equal(t, "17001.00", res.PersonalTax.StringFixed(2))
	assert.True(t, res.SelfEmploymentTax.IsZero())
	assert.Equal(t, "62999.00", res.NetIncomeGroup.StringFixed(2))
}

func TestCalculateIndividualFixedSchedules(t *testing.T) {
	e := newTestEngine()

	t.Run("uk", func(t *testing.T) {
		res, err := e.Calculate(twoPersonProject(), "UK", domain.StructureIndividual, domain.MethodNotApplicable, decimal.Zero, "")
		require.NoError(t, err)

		// Per person: (40000 - 12570) x 20% = 5486. The personal allowance
		// is the zero band, so no separate deduction is reported.
		assert.Equal(t, "10972.00", res.PersonalTax.StringFixed(2))
		assert.True(t, res.StandardDeductionUsed.IsZero())
		assert.True(t, res.SelfEmploymentTax.IsZero())
		assert.Equal(t, "69028.00", res.NetIncomeGroup.StringFixed(2))
		require.Len(t, res.Breakdown, 1)
		assert.Equal(t, "UK Income Tax", res.Breakdown[0].Label)
	})

	t.Run("canada with ontario provincial", func(t *testing.T) {
		res, err := e.Calculate(twoPersonProject(), "Canada", domain.StructureIndividual, domain.MethodNotApplicable, decimal.Zero, "")
		require.NoError(t, err)

		// Per person: federal 40000 x 15% = 6000, Ontario 40000 x 5.05% = 2020.
		assert.Equal(t, "12000.00", res.PersonalTax.StringFixed(2))
		assert.Equal(t, "4040.00", res.StateTax.StringFixed(2))
		assert.Equal(t, "63960.00", res.NetIncomeGroup.StringFixed(2))
		require.Len(t, res.Breakdown, 2)
		assert.Equal(t, "Federal Tax (Canada)", res.Breakdown[0].Label)
		assert.Equal(t, "Provincial Tax (Ontario)", res.Breakdown[1].Label)
	})
}

func TestCalculateBusinessDividend(t *testing.T) {
	e := newTestEngine()
	res, err := e.Calculate(twoPersonProject(), "US", domain.StructureBusiness, domain.MethodDividend, decimal.Zero, "")
	require.NoError(t, err)

	// QBI 16000, corporate 21% of 64000 = 13440, dividend 15% of 66560.
	assert.Equal(t, "13440.00", res.CorporateTax.StringFixed(2))
	assert.Equal(t, "9984.00", res.DividendTax.StringFixed(2))
	assert.Equal(t, "23424.00", res.TotalTax.StringFixed(2))
	assert.Equal(t, "56576.00", res.NetIncomeGroup.StringFixed(2))
	assert.Equal(t, "28288.00", res.NetIncomePerPerson.StringFixed(2))
	assert.Equal(t, "29.28", res.EffectiveRate.StringFixed(2))

	require.NotEmpty(t, res.Breakdown)
	assert.Equal(t, "QBI Deduction (20%)", res.Breakdown[0].Label)
	assert.Equal(t, "-16000.00", res.Breakdown[0].Amount.StringFixed(2))
}

func TestCalculateBusinessSalary(t *testing.T) {
	e := newTestEngine()
	res, err := e.Calculate(twoPersonProject(), "US", domain.StructureBusiness, domain.MethodSalary, decimal.Zero, "")
	require.NoError(t, err)

	// The whole 66560 after-corp profit is paid as salary: taxable 52710,
	// personal tax 7213.20.
	assert.Equal(t, "13440.00", res.CorporateTax.StringFixed(2))
	assert.Equal(t, "7213.20", res.PersonalTax.StringFixed(2))
	assert.Equal(t, "20653.20", res.TotalTax.StringFixed(2))
	assert.Equal(t, "59346.80", res.NetIncomeGroup.StringFixed(2))
	assert.Equal(t, "13850.00", res.StandardDeductionUsed.StringFixed(2))
}

func TestCalculateBusinessMixed(t *testing.T) {
	e := newTestEngine()

	t.Run("auto split", func(t *testing.T) {
		res, err := e.Calculate(twoPersonProject(), "US", domain.StructureBusiness, domain.MethodMixed, decimal.Zero, "")
		require.NoError(t, err)

		// Auto salary 44725 + 13850 = 58575, dividend on the 7985 rest.
		assert.Equal(t, "5456.50", res.PersonalTax.StringFixed(2))
		assert.Equal(t, "1197.75", res.DividendTax.StringFixed(2))
		assert.Equal(t, "20094.25", res.TotalTax.StringFixed(2))
		assert.Equal(t, "59905.75", res.NetIncomeGroup.StringFixed(2))

		found := false
		for _, line := range res.Breakdown {
			if line.Label == "Auto-Optimized Split" {
				found = true
				assert.NotEmpty(t, line.Note)
			}
		}
		assert.True(t, found, "auto split line missing from breakdown")
	})

	t.Run("explicit salary", func(t *testing.T) {
		res, err := e.Calculate(twoPersonProject(), "US", domain.StructureBusiness, domain.MethodMixed, decimal.NewFromInt(30000), "")
		require.NoError(t, err)

		assert.Equal(t, "1732.50", res.PersonalTax.StringFixed(2))
		assert.Equal(t, "5484.00", res.DividendTax.StringFixed(2))
		assert.Equal(t, "59343.50", res.NetIncomeGroup.StringFixed(2))
		for _, line := range res.Breakdown {
			assert.NotEqual(t, "Auto-Optimized Split", line.Label)
		}
	})

	t.Run("salary exceeding profit", func(t *testing.T) {
		_, err := e.Calculate(twoPersonProject(), "US", domain.StructureBusiness, domain.MethodMixed, decimal.NewFromInt(70000), "")
		assert.ErrorIs(t, err, domain.ErrSalaryExceedsProfit)
	})
}

func TestCalculateBusinessReinvest(t *testing.T) {
	e := newTestEngine()
	res, err := e.Calculate(twoPersonProject(), "US", domain.StructureBusiness, domain.MethodReinvest, decimal.Zero, "")
	require.NoError(t, err)

	assert.Equal(t, "13440.00", res.TotalTax.StringFixed(2))
	assert.True(t, res.NetIncomeGroup.IsZero())
	require.NotNil(t, res.CompanyRetained)
	assert.Equal(t, "66560.00", res.CompanyRetained.StringFixed(2))
}

func TestCalculateBusinessUK(t *testing.T) {
	e := newTestEngine()
	res, err := e.Calculate(twoPersonProject(), "UK", domain.StructureBusiness, domain.MethodDividend, decimal.Zero, "")
	require.NoError(t, err)

	// Flat 19% corporation tax, no QBI, fallback 15% dividend rate.
	assert.Equal(t, "15200.00", res.CorporateTax.StringFixed(2))
	assert.Equal(t, "9720.00", res.DividendTax.StringFixed(2))
	assert.Equal(t, "55080.00", res.NetIncomeGroup.StringFixed(2))
}

func TestCalculateInvalidInputs(t *testing.T) {
	e := newTestEngine()

	t.Run("zero people", func(t *testing.T) {
		fin := twoPersonProject()
		fin.NumPeople = 0
		_, err := e.Calculate(fin, "US", domain.StructureIndividual, domain.MethodNotApplicable, decimal.Zero, "")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("unknown structure", func(t *testing.T) {
		_, err := e.Calculate(twoPersonProject(), "US", domain.TaxStructure("Partnership"), domain.MethodNotApplicable, decimal.Zero, "")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("business without a distribution method", func(t *testing.T) {
		_, err := e.Calculate(twoPersonProject(), "US", domain.StructureBusiness, domain.MethodNotApplicable, decimal.Zero, "")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("unknown jurisdiction", func(t *testing.T) {
		_, err := e.Calculate(twoPersonProject(), "Mars", domain.StructureIndividual, domain.MethodNotApplicable, decimal.Zero, "")
		assert.ErrorIs(t, err, domain.ErrMissingBrackets)
	})
}

// Losses pay no tax anywhere in the model.
func TestCalculateNegativeGrossIncome(t *testing.T) {
	e := newTestEngine()
	fin := domain.ProjectFinancials{
		Revenue:    decimal.NewFromInt(10000),
		TotalCosts: decimal.NewFromInt(50000),
		NumPeople:  2,
	}

	for _, tc := range []struct {
		name      string
		structure domain.TaxStructure
		method    domain.DistributionMethod
	}{
		{"individual", domain.StructureIndividual, domain.MethodNotApplicable},
		{"business salary", domain.StructureBusiness, domain.MethodSalary},
		{"business dividend", domain.StructureBusiness, domain.MethodDividend},
		{"business mixed", domain.StructureBusiness, domain.MethodMixed},
	} {
		t.Run(tc.name, func(t *testing.T) {
			res, err := e.Calculate(fin, "US", tc.structure, tc.method, decimal.Zero, "")
			require.NoError(t, err)
			assert.True(t, res.TotalTax.IsZero(), "tax on a loss: %s", res.TotalTax)
			assert.Equal(t, "-40000.00", res.NetIncomeGroup.StringFixed(2))
			assert.True(t, res.EffectiveRate.IsZero())
		})
	}
}

// The money has to add up: for any distributing strategy, gross income
// minus total tax equals group net income, and per-person net times the
// headcount equals the group net.
func TestCalculateConservation(t *testing.T) {
	e := newTestEngine()
	fin := twoPersonProject()

	cases := []struct {
		structure domain.TaxStructure
		method    domain.DistributionMethod
	}{
		{domain.StructureIndividual, domain.MethodNotApplicable},
		{domain.StructureBusiness, domain.MethodSalary},
		{domain.StructureBusiness, domain.MethodDividend},
		{domain.StructureBusiness, domain.MethodMixed},
	}
	for _, jur := range []string{"US", "Spain", "UK", "Canada"} {
		for _, c := range cases {
			res, err := e.Calculate(fin, jur, c.structure, c.method, decimal.Zero, "")
			require.NoError(t, err, "%s %s/%s", jur, c.structure, c.method)

			assert.True(t, res.GrossIncome.Sub(res.TotalTax).Equal(res.NetIncomeGroup),
				"%s %s/%s: gross %s - tax %s != net %s",
				jur, c.structure, c.method, res.GrossIncome, res.TotalTax, res.NetIncomeGroup)
			assert.True(t, res.NetIncomePerPerson.Mul(decimal.NewFromInt(2)).Equal(res.NetIncomeGroup))
		}
	}
}

// Breakdown lines with positive amounts are the taxes themselves; they must
// sum to the reported total.
func TestCalculateBreakdownSumsToTotal(t *testing.T) {
	e := newTestEngine()

	for _, c := range []struct {
		structure domain.TaxStructure
		method    domain.DistributionMethod
	}{
		{domain.StructureIndividual, domain.MethodNotApplicable},
		{domain.StructureBusiness, domain.MethodSalary},
		{domain.StructureBusiness, domain.MethodDividend},
		{domain.StructureBusiness, domain.MethodMixed},
	} {
		res, err := e.Calculate(twoPersonProject(), "US", c.structure, c.method, decimal.Zero, "")
		require.NoError(t, err)

		sum := decimal.Zero
		for _, line := range res.Breakdown {
			if line.Amount.IsPositive() {
				sum = sum.Add(line.Amount)
			}
		}
		assert.True(t, sum.Equal(res.TotalTax),
			"%s/%s: breakdown sum %s != total %s", c.structure, c.method, sum, res.TotalTax)
	}
}

// Calculate is pure: running the same inputs twice gives identical results.
func TestCalculateIdempotent(t *testing.T) {
	e := newTestEngine()
	first, err := e.Calculate(twoPersonProject(), "US", domain.StructureBusiness, domain.MethodMixed, decimal.Zero, "CA")
	require.NoError(t, err)
	second, err := e.Calculate(twoPersonProject(), "US", domain.StructureBusiness, domain.MethodMixed, decimal.Zero, "CA")
	require.NoError(t, err)
	assert.True(t, first.TotalTax.Equal(second.TotalTax))
	assert.True(t, first.NetIncomeGroup.Equal(second.NetIncomeGroup))
	assert.Equal(t, len(first.Breakdown), len(second.Breakdown))
}
