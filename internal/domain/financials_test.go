package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTaxStructure(t *testing.T) {
	s, err := ParseTaxStructure("Individual")
	require.NoError(t, err)
	assert.Equal(t, StructureIndividual, s)

	s, err = ParseTaxStructure("Business")
	require.NoError(t, err)
	assert.Equal(t, StructureBusiness, s)

	_, err = ParseTaxStructure("Partnership")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = ParseTaxStructure("")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestParseDistributionMethod(t *testing.T) {
	m, err := ParseDistributionMethod("")
	require.NoError(t, err)
	assert.Equal(t, MethodNotApplicable, m)

	for _, name := range []string{"N/A", "Salary", "Dividend", "Mixed", "Reinvest"} {
		m, err := ParseDistributionMethod(name)
		require.NoError(t, err)
		assert.Equal(t, DistributionMethod(name), m)
	}

	// Unknown methods are rejected, never coerced to Salary.
	_, err = ParseDistributionMethod("Bonus")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = ParseDistributionMethod("salary")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestProjectFinancials(t *testing.T) {
	fin := ProjectFinancials{
		Revenue:    decimal.NewFromInt(100000),
		TotalCosts: decimal.NewFromInt(20000),
		NumPeople:  2,
	}
	require.NoError(t, fin.Validate())
	assert.True(t, fin.GrossIncome().Equal(decimal.NewFromInt(80000)))

	loss := ProjectFinancials{
		Revenue:    decimal.NewFromInt(10000),
		TotalCosts: decimal.NewFromInt(50000),
		NumPeople:  1,
	}
	require.NoError(t, loss.Validate())
	assert.True(t, loss.GrossIncome().Equal(decimal.NewFromInt(-40000)))

	assert.ErrorIs(t, ProjectFinancials{NumPeople: 0}.Validate(), ErrInvalidInput)
	assert.ErrorIs(t, ProjectFinancials{NumPeople: -3}.Validate(), ErrInvalidInput)
}

func TestBracketTableValidate(t *testing.T) {
	valid := BracketTable{
		BracketUpTo(decimal.NewFromInt(10000), decimal.NewFromFloat(0.10)),
		BracketUpTo(decimal.NewFromInt(40000), decimal.NewFromFloat(0.20)),
		TopBracket(decimal.NewFromFloat(0.30)),
	}
	require.NoError(t, valid.Validate())

	assert.ErrorIs(t, BracketTable{}.Validate(), ErrMissingBrackets)

	noTerminal := BracketTable{
		BracketUpTo(decimal.NewFromInt(10000), decimal.NewFromFloat(0.10)),
	}
	assert.Error(t, noTerminal.Validate())

	descending := BracketTable{
		BracketUpTo(decimal.NewFromInt(40000), decimal.NewFromFloat(0.10)),
		BracketUpTo(decimal.NewFromInt(10000), decimal.NewFromFloat(0.20)),
		TopBracket(decimal.NewFromFloat(0.30)),
	}
	assert.Error(t, descending.Validate())

	unboundedInMiddle := BracketTable{
		TopBracket(decimal.NewFromFloat(0.10)),
		BracketUpTo(decimal.NewFromInt(10000), decimal.NewFromFloat(0.20)),
	}
	assert.Error(t, unboundedInMiddle.Validate())

	negativeRate := BracketTable{
		TopBracket(decimal.NewFromFloat(-0.10)),
	}
	assert.Error(t, negativeRate.Validate())
}

func TestTaxResultJSON(t *testing.T) {
	res := TaxResult{
		Jurisdiction: "US",
		Structure:    StructureIndividual,
		Method:       MethodNotApplicable,
		GrossIncome:  decimal.NewFromInt(80000),
		TotalTax:     decimal.RequireFromString("17168.64"),
	}
	raw, err := json.Marshal(res)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "US", decoded["jurisdiction"])
	assert.Equal(t, "Individual", decoded["tax_structure"])
	assert.Equal(t, "17168.64", decoded["total_tax"])
	assert.NotContains(t, decoded, "company_retained")
	assert.NotContains(t, decoded, "state")
}
