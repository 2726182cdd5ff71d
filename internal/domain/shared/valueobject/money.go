package valueobject

import (
	"github.com/shopspring/decimal"
)

// MoneyPlaces is the number of decimal places every stored amount carries
const MoneyPlaces int32 = 2

var hundred = decimal.NewFromInt(100)

// Round2 rounds an amount to 2 decimal places, half away from zero.
// Every monetary step in billing goes through this function so displayed
// components always add up to displayed totals.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// Add2 returns round2(a + b)
func Add2(a, b decimal.Decimal) decimal.Decimal {
	return Round2(a.Add(b))
}

// Sub2 returns round2(a - b)
func Sub2(a, b decimal.Decimal) decimal.Decimal {
	return Round2(a.Sub(b))
}

// Mul2 returns round2(a * b)
func Mul2(a, b decimal.Decimal) decimal.Decimal {
	return Round2(a.Mul(b))
}

// Sum2 adds the values in order, rounding after every addition
func Sum2(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = Add2(total, v)
	}
	return total
}

// Share returns round2(amount * weight / total). total must be non-zero.
func Share(amount, weight, total decimal.Decimal) decimal.Decimal {
	return Round2(amount.Mul(weight).Div(total))
}

// FloorZero returns d, or zero when d is negative
func FloorZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Cents converts an amount to integer cents after rounding
func Cents(d decimal.Decimal) int64 {
	return Round2(d).Mul(hundred).IntPart()
}
