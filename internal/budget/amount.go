package budget

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount sanitizes a user-entered amount string into a non-negative
// number suitable for SetIncome/SetExpense. Accepts an optional leading
// currency symbol and thousands separators; rejects negative values,
// exponent notation, and anything with more than one decimal point.
func ParseAmount(input string) (float64, error) {
	s := strings.TrimSpace(input)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")

	if s == "" {
		return 0, fmt.Errorf("amount is empty")
	}
	if strings.Count(s, ".") > 1 {
		return 0, fmt.Errorf("amount %q has more than one decimal point", input)
	}
	if strings.ContainsAny(s, "eE") {
		return 0, fmt.Errorf("amount %q must be a plain decimal number", input)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", input, err)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("amount %q must not be negative", input)
	}

	f, _ := d.Float64()
	return f, nil
}
