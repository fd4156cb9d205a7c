package entity

import "time"

// DailyPoint un punto de los gráficos diarios (cantidad y valor de vendas).
type DailyPoint struct {
	Day   time.Time
	Count int
	Value Money
}

// ProductRank producto en un ranking de más vendidos.
type ProductRank struct {
	ProductID int64
	Name      string
	Quantity  int
	Revenue   Money
}
