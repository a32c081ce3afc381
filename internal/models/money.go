package models

import "github.com/shopspring/decimal"

func init() {
	// Money goes over the wire as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// MoneyScale is the number of decimal places stored for every amount.
const MoneyScale = 2

// IsWholeCents reports whether d can be stored at MoneyScale without
// rounding. "1.50" and "1.500" qualify, "1.004" does not.
func IsWholeCents(d decimal.Decimal) bool {
	return d.Equal(d.Round(MoneyScale))
}
