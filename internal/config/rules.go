// Package config loads jurisdiction rule files. A rules file overrides or
// extends the built-in registry, so deployments can track tax-year changes
// without a rebuild.
package config

import (
	"fmt"
	"os"

	"github.com/moneysplit/moneysplit/internal/domain"
	"github.com/moneysplit/moneysplit/internal/jurisdiction"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// RulesFile is the on-disk shape of a jurisdiction rules file.
type RulesFile struct {
	Jurisdictions map[string]JurisdictionRules `yaml:"jurisdictions"`
	States        map[string]StateRules        `yaml:"states"`
}

// JurisdictionRules configures one jurisdiction. Every field is optional;
// absent fields keep the built-in value when the jurisdiction already
// exists, or stay unset for a new one.
type JurisdictionRules struct {
	StandardDeduction     *decimal.Decimal            `yaml:"standard_deduction"`
	DividendRate          *decimal.Decimal            `yaml:"dividend_rate"`
	FlatCorporateRate     *decimal.Decimal            `yaml:"flat_corporate_rate"`
	QBIRate               *decimal.Decimal            `yaml:"qbi_rate"`
	MixedSalaryBracketTop *decimal.Decimal            `yaml:"mixed_salary_bracket_top"`
	SelfEmployment        *domain.SelfEmploymentRules `yaml:"self_employment"`
	IndividualBrackets    []BracketRule               `yaml:"individual_brackets"`
	BusinessBrackets      []BracketRule               `yaml:"business_brackets"`
	FixedPersonal         []FixedTableRules           `yaml:"fixed_personal"`
}

// FixedTableRules is one named fixed schedule (UK income tax, a Canadian
// provincial table).
type FixedTableRules struct {
	Name     string        `yaml:"name"`
	Brackets []BracketRule `yaml:"brackets"`
}

// StateRules configures one US state schedule.
type StateRules struct {
	StandardDeduction decimal.Decimal `yaml:"standard_deduction"`
	Brackets          []BracketRule   `yaml:"brackets"`
}

// BracketRule is one bracket row. Omitting the limit (or setting unbounded)
// marks the terminal bracket.
type BracketRule struct {
	Limit     *decimal.Decimal `yaml:"limit"`
	Rate      decimal.Decimal  `yaml:"rate"`
	Unbounded bool             `yaml:"unbounded"`
}

// RulesParser loads and validates jurisdiction rules files.
type RulesParser struct{}

// NewRulesParser creates a new rules parser.
func NewRulesParser() *RulesParser {
	return &RulesParser{}
}

// LoadFromFile reads a YAML rules file and validates it.
func (rp *RulesParser) LoadFromFile(filename string) (*RulesFile, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file %s: %w", filename, err)
	}

	var rules RulesFile
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := rp.Validate(&rules); err != nil {
		return nil, fmt.Errorf("rules validation failed: %w", err)
	}
	return &rules, nil
}

// Validate checks every schedule in the file for the bracket invariants
// before anything is applied to a registry.
func (rp *RulesParser) Validate(rules *RulesFile) error {
	for code, jr := range rules.Jurisdictions {
		if len(jr.IndividualBrackets) > 0 {
			if err := toBracketTable(jr.IndividualBrackets).Validate(); err != nil {
				return fmt.Errorf("jurisdiction %s individual brackets: %w", code, err)
			}
		}
		if len(jr.BusinessBrackets) > 0 {
			if err := toBracketTable(jr.BusinessBrackets).Validate(); err != nil {
				return fmt.Errorf("jurisdiction %s business brackets: %w", code, err)
			}
		}
		for _, ft := range jr.FixedPersonal {
			if ft.Name == "" {
				return fmt.Errorf("jurisdiction %s: fixed personal table needs a name", code)
			}
			if err := toBracketTable(ft.Brackets).Validate(); err != nil {
				return fmt.Errorf("jurisdiction %s fixed table %q: %w", code, ft.Name, err)
			}
		}
		if jr.FlatCorporateRate != nil && jr.FlatCorporateRate.IsNegative() {
			return fmt.Errorf("jurisdiction %s: flat corporate rate cannot be negative", code)
		}
		if jr.DividendRate != nil && jr.DividendRate.IsNegative() {
			return fmt.Errorf("jurisdiction %s: dividend rate cannot be negative", code)
		}
	}
	for code, sr := range rules.States {
		if err := toBracketTable(sr.Brackets).Validate(); err != nil {
			return fmt.Errorf("state %s brackets: %w", code, err)
		}
	}
	return nil
}

// ApplyTo merges the rules onto a registry: new jurisdictions are added
// whole, existing ones have only the fields the file sets replaced. The
// registry is mutated in place and returned for chaining.
func (rp *RulesParser) ApplyTo(reg *jurisdiction.Registry, rules *RulesFile) *jurisdiction.Registry {
	for code, jr := range rules.Jurisdictions {
		profile := reg.Profile(code)
		if profile == nil {
			profile = &domain.JurisdictionProfile{Code: code}
		}
		if jr.StandardDeduction != nil {
			profile.StandardDeduction = jr.StandardDeduction
		}
		if jr.DividendRate != nil {
			profile.DividendRate = jr.DividendRate
		}
		if jr.FlatCorporateRate != nil {
			profile.FlatCorporateRate = jr.FlatCorporateRate
		}
		if jr.QBIRate != nil {
			profile.QBI = &domain.QBIRules{Rate: *jr.QBIRate}
		}
		if jr.MixedSalaryBracketTop != nil {
			profile.MixedSalaryBracketTop = jr.MixedSalaryBracketTop
		}
		if jr.SelfEmployment != nil {
			profile.SelfEmployment = jr.SelfEmployment
		}
		if len(jr.FixedPersonal) > 0 {
			profile.FixedPersonal = profile.FixedPersonal[:0]
			for _, ft := range jr.FixedPersonal {
				profile.FixedPersonal = append(profile.FixedPersonal, domain.NamedTable{
					Name:  ft.Name,
					Table: toBracketTable(ft.Brackets),
				})
			}
		}
		reg.SetProfile(profile)

		if len(jr.IndividualBrackets) > 0 {
			reg.SetBrackets(code, domain.ClassIndividual, toBracketTable(jr.IndividualBrackets))
		}
		if len(jr.BusinessBrackets) > 0 {
			reg.SetBrackets(code, domain.ClassBusiness, toBracketTable(jr.BusinessBrackets))
		}
	}

	for code, sr := range rules.States {
		reg.SetState(domain.StateProfile{
			Code:              code,
			StandardDeduction: sr.StandardDeduction,
			Table:             toBracketTable(sr.Brackets),
		})
	}
	return reg
}

// LoadRegistry builds the effective registry: built-in defaults, then the
// rules file on top when one is given.
func LoadRegistry(filename string) (*jurisdiction.Registry, error) {
	reg := jurisdiction.DefaultRegistry()
	if filename == "" {
		return reg, nil
	}
	parser := NewRulesParser()
	rules, err := parser.LoadFromFile(filename)
	if err != nil {
		return nil, err
	}
	return parser.ApplyTo(reg, rules), nil
}

func toBracketTable(rules []BracketRule) domain.BracketTable {
	table := make(domain.BracketTable, 0, len(rules))
	for _, r := range rules {
		if r.Unbounded || r.Limit == nil {
			table = append(table, domain.TopBracket(r.Rate))
			continue
		}
		table = append(table, domain.BracketUpTo(*r.Limit, r.Rate))
	}
	return table
}
