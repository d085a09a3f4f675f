package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/moneysplit/moneysplit/internal/domain"
	"github.com/shopspring/decimal"
)

// ErrNotFound reports a lookup for a record or person that does not exist.
var ErrNotFound = errors.New("record not found")

// TaxRecord is a persisted calculation.
type TaxRecord struct {
	ID                 int64                     `json:"id"`
	NumPeople          int                       `json:"num_people"`
	Revenue            decimal.Decimal           `json:"revenue"`
	TotalCosts         decimal.Decimal           `json:"total_costs"`
	GroupIncome        decimal.Decimal           `json:"group_income"`
	IndividualIncome   decimal.Decimal           `json:"individual_income"`
	TaxOrigin          string                    `json:"tax_origin"`
	TaxOption          domain.TaxStructure       `json:"tax_option"`
	DistributionMethod domain.DistributionMethod `json:"distribution_method"`
	SalaryAmount       decimal.Decimal           `json:"salary_amount"`
	TaxAmount          decimal.Decimal           `json:"tax_amount"`
	NetIncomePerPerson decimal.Decimal           `json:"net_income_per_person"`
	NetIncomeGroup     decimal.Decimal           `json:"net_income_group"`
	CreatedAt          time.Time                 `json:"created_at"`
}

// Person is one member's share of a persisted record.
type Person struct {
	ID          int64           `json:"id"`
	RecordID    int64           `json:"record_id"`
	Name        string          `json:"name"`
	WorkShare   decimal.Decimal `json:"work_share"`
	GrossIncome decimal.Decimal `json:"gross_income"`
	TaxPaid     decimal.Decimal `json:"tax_paid"`
	NetIncome   decimal.Decimal `json:"net_income"`
}

// RecordWithPeople bundles a record with its member rows.
type RecordWithPeople struct {
	TaxRecord
	People []Person `json:"people"`
}

// MonthlySummary aggregates records by calendar month for forecasting.
type MonthlySummary struct {
	Month       string          `json:"month"`
	Revenue     decimal.Decimal `json:"revenue"`
	Costs       decimal.Decimal `json:"costs"`
	Profit      decimal.Decimal `json:"profit"`
	NumProjects int             `json:"num_projects"`
}

// RecordsRepo provides CRUD access to tax_records and people.
type RecordsRepo struct {
	pool *pgxpool.Pool
}

// NewRecordsRepo creates a records repository.
func NewRecordsRepo(pool *pgxpool.Pool) *RecordsRepo {
	return &RecordsRepo{pool: pool}
}

const recordColumns = `id, num_people, revenue, total_costs, group_income, individual_income,
	tax_origin, tax_option, distribution_method, salary_amount,
	tax_amount, net_income_per_person, net_income_group, created_at`

// Save inserts a record together with its people in one transaction and
// returns the new record ID.
func (r *RecordsRepo) Save(ctx context.Context, rec *TaxRecord, people []Person) (int64, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("database pool not configured")
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var id int64
	err = tx.QueryRow(ctx, `
		INSERT INTO tax_records (
			num_people, revenue, total_costs, group_income, individual_income,
			tax_origin, tax_option, distribution_method, salary_amount,
			tax_amount, net_income_per_person, net_income_group
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`,
		rec.NumPeople, rec.Revenue, rec.TotalCosts, rec.GroupIncome, rec.IndividualIncome,
		rec.TaxOrigin, rec.TaxOption, rec.DistributionMethod, rec.SalaryAmount,
		rec.TaxAmount, rec.NetIncomePerPerson, rec.NetIncomeGroup,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to save record: %w", err)
	}

	for _, p := range people {
		_, err = tx.Exec(ctx, `
			INSERT INTO people (record_id, name, work_share, gross_income, tax_paid, net_income)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			id, p.Name, p.WorkShare, p.GrossIncome, p.TaxPaid, p.NetIncome)
		if err != nil {
			return 0, fmt.Errorf("failed to save person %q: %w", p.Name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit record: %w", err)
	}
	return id, nil
}

// List returns the most recent records, newest first.
func (r *RecordsRepo) List(ctx context.Context, limit int) ([]TaxRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+recordColumns+`
		FROM tax_records
		ORDER BY created_at DESC, id DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	var records []TaxRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Get returns one record with its people.
func (r *RecordsRepo) Get(ctx context.Context, id int64) (*RecordWithPeople, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+recordColumns+`
		FROM tax_records
		WHERE id = $1`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: record %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	people, err := r.PeopleByRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	return &RecordWithPeople{TaxRecord: rec, People: people}, nil
}

// Delete removes a record; linked people cascade.
func (r *RecordsRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tax_records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete record %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: record %d", ErrNotFound, id)
	}
	return nil
}

// AddPerson attaches one person to an existing record.
func (r *RecordsRepo) AddPerson(ctx context.Context, p Person) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO people (record_id, name, work_share, gross_income, tax_paid, net_income)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		p.RecordID, p.Name, p.WorkShare, p.GrossIncome, p.TaxPaid, p.NetIncome).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to add person: %w", err)
	}
	return id, nil
}

// PeopleByRecord lists the people attached to a record.
func (r *RecordsRepo) PeopleByRecord(ctx context.Context, recordID int64) ([]Person, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, record_id, name, work_share, gross_income, tax_paid, net_income
		FROM people
		WHERE record_id = $1
		ORDER BY id`, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to list people: %w", err)
	}
	defer rows.Close()

	var people []Person
	for rows.Next() {
		var p Person
		if err := rows.Scan(&p.ID, &p.RecordID, &p.Name, &p.WorkShare, &p.GrossIncome, &p.TaxPaid, &p.NetIncome); err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		people = append(people, p)
	}
	return people, rows.Err()
}

// PersonHistory lists every record share for a person by name, newest
// first. Name matching is case-insensitive.
func (r *RecordsRepo) PersonHistory(ctx context.Context, name string) ([]Person, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.id, p.record_id, p.name, p.work_share, p.gross_income, p.tax_paid, p.net_income
		FROM people p
		JOIN tax_records t ON p.record_id = t.id
		WHERE LOWER(p.name) = LOWER($1)
		ORDER BY t.created_at DESC`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to query person history: %w", err)
	}
	defer rows.Close()

	var people []Person
	for rows.Next() {
		var p Person
		if err := rows.Scan(&p.ID, &p.RecordID, &p.Name, &p.WorkShare, &p.GrossIncome, &p.TaxPaid, &p.NetIncome); err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		people = append(people, p)
	}
	return people, rows.Err()
}

// MonthlyHistory aggregates revenue, costs and profit per calendar month,
// oldest first. This feeds the forecaster.
func (r *RecordsRepo) MonthlyHistory(ctx context.Context) ([]MonthlySummary, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT to_char(created_at, 'YYYY-MM') AS month,
		       SUM(revenue),
		       SUM(total_costs),
		       SUM(net_income_group),
		       COUNT(*)
		FROM tax_records
		GROUP BY month
		ORDER BY month`)
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly history: %w", err)
	}
	defer rows.Close()

	var months []MonthlySummary
	for rows.Next() {
		var m MonthlySummary
		if err := rows.Scan(&m.Month, &m.Revenue, &m.Costs, &m.Profit, &m.NumProjects); err != nil {
			return nil, fmt.Errorf("failed to scan monthly summary: %w", err)
		}
		months = append(months, m)
	}
	return months, rows.Err()
}

func scanRecord(row pgx.Row) (TaxRecord, error) {
	var rec TaxRecord
	err := row.Scan(
		&rec.ID, &rec.NumPeople, &rec.Revenue, &rec.TotalCosts, &rec.GroupIncome, &rec.IndividualIncome,
		&rec.TaxOrigin, &rec.TaxOption, &rec.DistributionMethod, &rec.SalaryAmount,
		&rec.TaxAmount, &rec.NetIncomePerPerson, &rec.NetIncomeGroup, &rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return rec, err
		}
		return rec, fmt.Errorf("failed to scan record: %w", err)
	}
	return rec, nil
}
