// Package jurisdiction holds the per-country tax rule data the engine runs
// against. A Registry is built once at startup (from built-in defaults, a
// YAML file, or a database snapshot) and passed by reference into every
// calculation; nothing here is ambient global state.
package jurisdiction

import (
	"fmt"
	"sort"

	"github.com/moneysplit/moneysplit/internal/domain"
)

// tableKey identifies a provider-sourced bracket schedule.
type tableKey struct {
	Jurisdiction string
	Class        domain.TaxClass
}

// Registry is an immutable snapshot of jurisdiction rules. Concurrent
// calculations may share one Registry because no method mutates it after
// construction.
type Registry struct {
	profiles map[string]*domain.JurisdictionProfile
	tables   map[tableKey]domain.BracketTable
	states   map[string]domain.StateProfile
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		profiles: make(map[string]*domain.JurisdictionProfile),
		tables:   make(map[tableKey]domain.BracketTable),
		states:   make(map[string]domain.StateProfile),
	}
}

// Clone returns an independent registry: setting profiles, brackets, or
// states on the clone leaves the original untouched. Bracket tables and
// rule data are treated as immutable and shared.
func (r *Registry) Clone() *Registry {
	c := &Registry{
		profiles: make(map[string]*domain.JurisdictionProfile, len(r.profiles)),
		tables:   make(map[tableKey]domain.BracketTable, len(r.tables)),
		states:   make(map[string]domain.StateProfile, len(r.states)),
	}
	for code, p := range r.profiles {
		cp := *p
		c.profiles[code] = &cp
	}
	for key, table := range r.tables {
		c.tables[key] = table
	}
	for code, sp := range r.states {
		c.states[code] = sp
	}
	return c
}

// SetProfile registers a jurisdiction profile, replacing any existing one.
func (r *Registry) SetProfile(p *domain.JurisdictionProfile) {
	r.profiles[p.Code] = p
}

// SetBrackets registers a provider-sourced schedule for a
// (jurisdiction, class) pair.
func (r *Registry) SetBrackets(jurisdiction string, class domain.TaxClass, table domain.BracketTable) {
	r.tables[tableKey{jurisdiction, class}] = table
}

// SetState registers a US state profile.
func (r *Registry) SetState(sp domain.StateProfile) {
	r.states[sp.Code] = sp
}

// Profile returns the profile for a jurisdiction, or nil when the
// jurisdiction is unknown. Unknown jurisdictions still calculate whenever
// bracket tables exist for them; they just carry no adjustments.
func (r *Registry) Profile(code string) *domain.JurisdictionProfile {
	return r.profiles[code]
}

// State looks up a US state profile by two-letter code.
func (r *Registry) State(code string) (domain.StateProfile, bool) {
	sp, ok := r.states[code]
	return sp, ok
}

// Brackets implements domain.BracketProvider.
func (r *Registry) Brackets(jurisdiction string, class domain.TaxClass) (domain.BracketTable, error) {
	table, ok := r.tables[tableKey{jurisdiction, class}]
	if !ok || len(table) == 0 {
		return nil, fmt.Errorf("%w for %s %s", domain.ErrMissingBrackets, jurisdiction, class)
	}
	return table, nil
}

// Jurisdictions lists every code with a registered profile or schedule,
// sorted for stable output.
func (r *Registry) Jurisdictions() []string {
	seen := make(map[string]bool)
	for code := range r.profiles {
		seen[code] = true
	}
	for key := range r.tables {
		seen[key.Jurisdiction] = true
	}
	codes := make([]string, 0, len(seen))
	for code := range seen {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// States lists registered state codes, sorted.
func (r *Registry) States() []string {
	codes := make([]string, 0, len(r.states))
	for code := range r.states {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Validate checks every registered schedule, fixed personal table, and
// state table for the bracket invariants.
func (r *Registry) Validate() error {
	for key, table := range r.tables {
		if err := table.Validate(); err != nil {
			return fmt.Errorf("brackets for %s %s: %w", key.Jurisdiction, key.Class, err)
		}
	}
	for code, p := range r.profiles {
		for _, nt := range p.FixedPersonal {
			if err := nt.Table.Validate(); err != nil {
				return fmt.Errorf("fixed table %q for %s: %w", nt.Name, code, err)
			}
		}
	}
	for code, sp := range r.states {
		if err := sp.Table.Validate(); err != nil {
			return fmt.Errorf("state brackets for %s: %w", code, err)
		}
	}
	return nil
}
