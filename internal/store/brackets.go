package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/moneysplit/moneysplit/internal/domain"
	"github.com/moneysplit/moneysplit/internal/jurisdiction"
	"github.com/shopspring/decimal"
)

// BracketRow is one stored bracket. A nil IncomeLimit is the unbounded
// terminal bracket.
type BracketRow struct {
	ID          int64            `json:"id"`
	Country     string           `json:"country"`
	TaxType     domain.TaxClass  `json:"tax_type"`
	IncomeLimit *decimal.Decimal `json:"income_limit"`
	Rate        decimal.Decimal  `json:"rate"`
}

// BracketsRepo manages stored bracket schedules. Schedules in the database
// override the built-in defaults for their (country, class) pair.
type BracketsRepo struct {
	pool *pgxpool.Pool
}

// NewBracketsRepo creates a brackets repository.
func NewBracketsRepo(pool *pgxpool.Pool) *BracketsRepo {
	return &BracketsRepo{pool: pool}
}

// List returns the schedule for one (country, class) pair in ascending
// limit order, with the unbounded bracket last.
func (r *BracketsRepo) List(ctx context.Context, country string, class domain.TaxClass) ([]BracketRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, country, tax_type, income_limit, rate
		FROM tax_brackets
		WHERE country = $1 AND tax_type = $2
		ORDER BY income_limit ASC NULLS LAST`, country, class)
	if err != nil {
		return nil, fmt.Errorf("failed to list brackets: %w", err)
	}
	defer rows.Close()

	var brackets []BracketRow
	for rows.Next() {
		var b BracketRow
		if err := rows.Scan(&b.ID, &b.Country, &b.TaxType, &b.IncomeLimit, &b.Rate); err != nil {
			return nil, fmt.Errorf("failed to scan bracket: %w", err)
		}
		brackets = append(brackets, b)
	}
	return brackets, rows.Err()
}

// Add inserts one bracket row and returns its ID.
func (r *BracketsRepo) Add(ctx context.Context, b BracketRow) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO tax_brackets (country, tax_type, income_limit, rate)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		b.Country, b.TaxType, b.IncomeLimit, b.Rate).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to add bracket: %w", err)
	}
	return id, nil
}

// Delete removes one bracket row.
func (r *BracketsRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tax_brackets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete bracket %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: bracket %d", ErrNotFound, id)
	}
	return nil
}

// Countries lists the (country, class) pairs with stored schedules.
func (r *BracketsRepo) Countries(ctx context.Context) (map[string][]domain.TaxClass, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT country, tax_type FROM tax_brackets ORDER BY country, tax_type`)
	if err != nil {
		return nil, fmt.Errorf("failed to list bracket countries: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]domain.TaxClass)
	for rows.Next() {
		var country string
		var class domain.TaxClass
		if err := rows.Scan(&country, &class); err != nil {
			return nil, fmt.Errorf("failed to scan bracket country: %w", err)
		}
		out[country] = append(out[country], class)
	}
	return out, rows.Err()
}

// SeedDefaults inserts the registry's provider-sourced schedules when the
// table is empty, mirroring the built-in defaults into editable rows.
func (r *BracketsRepo) SeedDefaults(ctx context.Context, reg *jurisdiction.Registry) error {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tax_brackets`).Scan(&count); err != nil {
		return fmt.Errorf("failed to count brackets: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, country := range reg.Jurisdictions() {
		for _, class := range []domain.TaxClass{domain.ClassIndividual, domain.ClassBusiness} {
			table, err := reg.Brackets(country, class)
			if err != nil {
				continue // fixed-schedule jurisdictions have no provider tables
			}
			for _, row := range rowsFromTable(country, class, table) {
				if _, err := r.Add(ctx, row); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// SnapshotRegistry overlays every stored schedule onto a copy of the base
// registry and validates the result, so edits in the database take effect
// without touching in-flight calculations.
func (r *BracketsRepo) SnapshotRegistry(ctx context.Context, base func() *jurisdiction.Registry) (*jurisdiction.Registry, error) {
	// Overlay onto a clone: base() may hand out a long-lived registry,
	// and in-flight calculations must never observe the stored schedules.
	reg := base().Clone()

	byCountry, err := r.Countries(ctx)
	if err != nil {
		return nil, err
	}
	for country, classes := range byCountry {
		for _, class := range classes {
			rows, err := r.List(ctx, country, class)
			if err != nil {
				return nil, err
			}
			reg.SetBrackets(country, class, tableFromRows(rows))
		}
	}

	if err := reg.Validate(); err != nil {
		return nil, fmt.Errorf("stored brackets produce an invalid registry: %w", err)
	}
	return reg, nil
}

// tableFromRows converts stored rows, already in ascending limit order with
// NULL limits last, back into a bracket table. A nil IncomeLimit becomes the
// unbounded terminal bracket.
func tableFromRows(rows []BracketRow) domain.BracketTable {
	table := make(domain.BracketTable, 0, len(rows))
	for _, b := range rows {
		if b.IncomeLimit == nil {
			table = append(table, domain.TopBracket(b.Rate))
			continue
		}
		table = append(table, domain.BracketUpTo(*b.IncomeLimit, b.Rate))
	}
	return table
}

// rowsFromTable encodes a bracket table as insertable rows, mapping the
// unbounded terminal bracket to a NULL income limit.
func rowsFromTable(country string, class domain.TaxClass, table domain.BracketTable) []BracketRow {
	rows := make([]BracketRow, 0, len(table))
	for _, b := range table {
		row := BracketRow{Country: country, TaxType: class, Rate: b.Rate}
		if !b.Unbounded {
			limit := b.Limit
			row.IncomeLimit = &limit
		}
		rows = append(rows, row)
	}
	return rows
}
