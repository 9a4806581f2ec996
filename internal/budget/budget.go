// Package budget defines the monthly budget record and its invariants.
//
// A Record is the atomic unit of synchronization: income plus five fixed
// expense categories, stamped with the time of the last local mutation.
// The LastUpdated timestamp (milliseconds since epoch) is the sole
// conflict-resolution key between a local copy and the server copy.
package budget

import (
	"fmt"
	"math"
)

// Category identifies one of the five fixed expense categories.
type Category string

const (
	CategoryBills         Category = "bills"
	CategoryFood          Category = "food"
	CategoryTransport     Category = "transport"
	CategorySubscriptions Category = "subscriptions"
	CategoryMiscellaneous Category = "miscellaneous"
)

// Categories returns all expense categories in display order.
func Categories() []Category {
	return []Category{
		CategoryBills,
		CategoryFood,
		CategoryTransport,
		CategorySubscriptions,
		CategoryMiscellaneous,
	}
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryBills, CategoryFood, CategoryTransport,
		CategorySubscriptions, CategoryMiscellaneous:
		return true
	}
	return false
}

// Expenses holds the amount for each fixed category.
type Expenses struct {
	Bills         float64 `json:"bills"`
	Food          float64 `json:"food"`
	Transport     float64 `json:"transport"`
	Subscriptions float64 `json:"subscriptions"`
	Miscellaneous float64 `json:"miscellaneous"`
}

// Get returns the amount for category c, or 0 for an unknown category.
func (e Expenses) Get(c Category) float64 {
	switch c {
	case CategoryBills:
		return e.Bills
	case CategoryFood:
		return e.Food
	case CategoryTransport:
		return e.Transport
	case CategorySubscriptions:
		return e.Subscriptions
	case CategoryMiscellaneous:
		return e.Miscellaneous
	}
	return 0
}

// Set writes the amount for category c.
func (e *Expenses) Set(c Category, amount float64) error {
	switch c {
	case CategoryBills:
		e.Bills = amount
	case CategoryFood:
		e.Food = amount
	case CategoryTransport:
		e.Transport = amount
	case CategorySubscriptions:
		e.Subscriptions = amount
	case CategoryMiscellaneous:
		e.Miscellaneous = amount
	default:
		return fmt.Errorf("unknown expense category: %q", c)
	}
	return nil
}

// Total returns the sum of all expense categories.
func (e Expenses) Total() float64 {
	return e.Bills + e.Food + e.Transport + e.Subscriptions + e.Miscellaneous
}

// DefaultID is the stable identifier for the single local budget record.
const DefaultID = "budget-1"

// Record is the full budget document, local and remote.
//
// IsSynced is local-only bookkeeping: true iff the local copy is known to
// equal the last-confirmed server copy. It is carried on the wire for
// schema compatibility but is never meaningful to the server, which
// reports its own copies with IsSynced=true unconditionally.
type Record struct {
	ID          string   `json:"id"`
	Income      float64  `json:"income"`
	Expenses    Expenses `json:"expenses"`
	LastUpdated int64    `json:"lastUpdated"`
	IsSynced    bool     `json:"isSynced"`
}

// DefaultRecord returns a fresh unsynced record with all amounts zeroed.
// now is the creation time in milliseconds since epoch.
func DefaultRecord(now int64) Record {
	return Record{
		ID:          DefaultID,
		Income:      0,
		Expenses:    Expenses{},
		LastUpdated: now,
		IsSynced:    false,
	}
}

// TotalExpenses returns the sum of all expense categories.
func (r Record) TotalExpenses() float64 {
	return r.Expenses.Total()
}

// Remaining returns income minus total expenses. May be negative.
func (r Record) Remaining() float64 {
	return r.Income - r.Expenses.Total()
}

// Validate checks that every field of r is well-formed and returns a list
// of problems, one per violated constraint. An empty slice means valid.
func Validate(r Record) []string {
	var problems []string

	if r.ID == "" {
		problems = append(problems, "budget.id must be a non-empty string")
	}
	if !validAmount(r.Income) {
		problems = append(problems, "budget.income must be a non-negative finite number")
	}
	for _, c := range Categories() {
		if !validAmount(r.Expenses.Get(c)) {
			problems = append(problems,
				fmt.Sprintf("budget.expenses.%s must be a non-negative finite number", c))
		}
	}
	if r.LastUpdated <= 0 {
		problems = append(problems, "budget.lastUpdated must be a positive timestamp")
	}

	return problems
}

func validAmount(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}
