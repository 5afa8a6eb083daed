package models

import "github.com/shopspring/decimal"

// LineTotal returns price × quantity rounded to cents.
func LineTotal(price float64, quantity int) float64 {
	return decimal.NewFromFloat(price).
		Mul(decimal.NewFromInt(int64(quantity))).
		Round(2).
		InexactFloat64()
}

// SumLines adds line subtotals without accumulating float drift.
func SumLines[T any](lines []T, line func(T) (float64, int)) float64 {
	total := decimal.Zero
	for _, l := range lines {
		price, qty := line(l)
		total = total.Add(decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(qty))))
	}
	return total.Round(2).InexactFloat64()
}

// ToCents converts a currency amount to the smallest unit.
func ToCents(amount float64) int64 {
	return decimal.NewFromFloat(amount).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
