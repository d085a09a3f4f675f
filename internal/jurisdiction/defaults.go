package jurisdiction

import (
	"github.com/moneysplit/moneysplit/internal/domain"
	"github.com/shopspring/decimal"
)

// Built-in rule data for the 2023 tax year. These are starting values, not
// authoritative law: a YAML config file or the bracket store overrides them
// per deployment.

func dec(f float64) decimal.Decimal     { return decimal.NewFromFloat(f) }
func decPtr(f float64) *decimal.Decimal { d := decimal.NewFromFloat(f); return &d }

// DefaultRegistry builds a registry covering US, Spain, UK and Canada, plus
// the CA/NY/TX/FL state schedules.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.SetProfile(&domain.JurisdictionProfile{
		Code:              "US",
		StandardDeduction: decPtr(13850), // single filer
		DividendRate:      decPtr(0.15),  // qualified dividends
		SelfEmployment: &domain.SelfEmploymentRules{
			NetEarningsFactor:           dec(0.9235),
			SocialSecurityRate:          dec(0.124),
			WageBase:                    dec(160200),
			MedicareRate:                dec(0.029),
			AdditionalMedicareRate:      dec(0.009),
			AdditionalMedicareThreshold: dec(200000),
		},
		QBI:                   &domain.QBIRules{Rate: dec(0.20)},
		MixedSalaryBracketTop: decPtr(44725), // top of the 12% bracket
	})
	r.SetBrackets("US", domain.ClassIndividual, domain.BracketTable{
		domain.BracketUpTo(dec(10275), dec(0.10)),
		domain.BracketUpTo(dec(41775), dec(0.12)),
		domain.BracketUpTo(dec(89075), dec(0.22)),
		domain.BracketUpTo(dec(170050), dec(0.24)),
		domain.BracketUpTo(dec(215950), dec(0.32)),
		domain.BracketUpTo(dec(539900), dec(0.35)),
		domain.TopBracket(dec(0.37)),
	})
	r.SetBrackets("US", domain.ClassBusiness, domain.BracketTable{
		domain.TopBracket(dec(0.21)),
	})

	r.SetProfile(&domain.JurisdictionProfile{
		Code:                  "Spain",
		StandardDeduction:     decPtr(5550), // minimum personal allowance
		DividendRate:          decPtr(0.19),
		MixedSalaryBracketTop: decPtr(20200), // top of the 24% tramo
	})
	r.SetBrackets("Spain", domain.ClassIndividual, domain.BracketTable{
		domain.BracketUpTo(dec(12450), dec(0.19)),
		domain.BracketUpTo(dec(20200), dec(0.24)),
		domain.BracketUpTo(dec(35200), dec(0.30)),
		domain.BracketUpTo(dec(60000), dec(0.37)),
		domain.BracketUpTo(dec(300000), dec(0.45)),
		domain.TopBracket(dec(0.47)),
	})
	r.SetBrackets("Spain", domain.ClassBusiness, domain.BracketTable{
		domain.TopBracket(dec(0.25)),
	})

	// UK personal allowance is the 0% band of the fixed table; National
	// Insurance is not modeled.
	r.SetProfile(&domain.JurisdictionProfile{
		Code:              "UK",
		FlatCorporateRate: decPtr(0.19),
		FixedPersonal: []domain.NamedTable{
			{
				Name: "UK Income Tax",
				Table: domain.BracketTable{
					domain.BracketUpTo(dec(12570), decimal.Zero),
					domain.BracketUpTo(dec(50270), dec(0.20)),
					domain.BracketUpTo(dec(125140), dec(0.40)),
					domain.TopBracket(dec(0.45)),
				},
			},
		},
	})

	// Canada: federal schedule plus Ontario as the single fixed province.
	r.SetProfile(&domain.JurisdictionProfile{
		Code:              "Canada",
		FlatCorporateRate: decPtr(0.15),
		FixedPersonal: []domain.NamedTable{
			{
				Name: "Federal Tax (Canada)",
				Table: domain.BracketTable{
					domain.BracketUpTo(dec(53359), dec(0.15)),
					domain.BracketUpTo(dec(106717), dec(0.205)),
					domain.BracketUpTo(dec(165430), dec(0.26)),
					domain.BracketUpTo(dec(235675), dec(0.29)),
					domain.TopBracket(dec(0.33)),
				},
			},
			{
				Name: "Provincial Tax (Ontario)",
				Table: domain.BracketTable{
					domain.BracketUpTo(dec(49231), dec(0.0505)),
					domain.BracketUpTo(dec(98463), dec(0.0915)),
					domain.BracketUpTo(dec(150000), dec(0.1116)),
					domain.BracketUpTo(dec(220000), dec(0.1216)),
					domain.TopBracket(dec(0.1316)),
				},
			},
		},
	})

	r.SetState(domain.StateProfile{
		Code:              "CA",
		StandardDeduction: dec(5202),
		Table: domain.BracketTable{
			domain.BracketUpTo(dec(10099), dec(0.01)),
			domain.BracketUpTo(dec(23942), dec(0.02)),
			domain.BracketUpTo(dec(37788), dec(0.04)),
			domain.BracketUpTo(dec(52455), dec(0.06)),
			domain.BracketUpTo(dec(66295), dec(0.08)),
			domain.BracketUpTo(dec(338639), dec(0.093)),
			domain.BracketUpTo(dec(406364), dec(0.103)),
			domain.BracketUpTo(dec(677275), dec(0.113)),
			domain.TopBracket(dec(0.133)),
		},
	})
	r.SetState(domain.StateProfile{
		Code:              "NY",
		StandardDeduction: dec(8000),
		Table: domain.BracketTable{
			domain.BracketUpTo(dec(8500), dec(0.04)),
			domain.BracketUpTo(dec(11700), dec(0.045)),
			domain.BracketUpTo(dec(13900), dec(0.0525)),
			domain.BracketUpTo(dec(80650), dec(0.055)),
			domain.BracketUpTo(dec(215400), dec(0.06)),
			domain.BracketUpTo(dec(1077550), dec(0.0685)),
			domain.BracketUpTo(dec(5000000), dec(0.0965)),
			domain.BracketUpTo(dec(25000000), dec(0.103)),
			domain.TopBracket(dec(0.109)),
		},
	})
	r.SetState(domain.StateProfile{
		Code:  "TX",
		Table: domain.BracketTable{domain.TopBracket(decimal.Zero)},
	})
	r.SetState(domain.StateProfile{
		Code:  "FL",
		Table: domain.BracketTable{domain.TopBracket(decimal.Zero)},
	})

	return r
}
