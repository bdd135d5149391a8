package utils

import "github.com/shopspring/decimal"

// MoneyPrecision is the number of decimal places stored for converted amounts.
const MoneyPrecision = 2

// RoundMoney rounds amount half away from zero to MoneyPrecision places.
// Example: 137.755 returns 137.76
func RoundMoney(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(MoneyPrecision)
}
