package entity

import "github.com/shopspring/decimal"

// Money es un valor monetario en reais con precisión decimal.
type Money = decimal.Decimal

func decimalFromInt(n int) Money {
	return decimal.NewFromInt(int64(n))
}
