package domain

import "errors"

// Engine failure modes. Callers branch with errors.Is; transport layers map
// them to status codes. A calculation never substitutes a default on error.
var (
	// ErrInvalidInput covers zero or negative people counts, unknown tax
	// structures, and unrecognized distribution methods. Unknown methods are
	// rejected outright rather than falling back to Salary behavior.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMissingBrackets is returned when no bracket schedule exists for a
	// (jurisdiction, class) pair.
	ErrMissingBrackets = errors.New("no tax brackets found")

	// ErrSalaryExceedsProfit is returned by the Mixed distribution when the
	// requested salary is larger than after-corporate-tax profit.
	ErrSalaryExceedsProfit = errors.New("salary exceeds after-tax profit")

	// ErrNoViableStrategy is returned by the optimal search when no strategy
	// yields positive group net income.
	ErrNoViableStrategy = errors.New("no strategy yields positive net income")
)
