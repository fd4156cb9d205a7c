package entity

import "time"

// ClosedPeriod snapshot inmutable del cierre de un período de vendas de un funcionario.
type ClosedPeriod struct {
	ID            int64
	CompanyID     int64
	UserID        int64
	StartedAt     time.Time
	EndedAt       time.Time
	Revenue       Money
	SalesCount    int
	ItemsSold     int
	AverageTicket Money
	Commission    Money
	CreatedAt     time.Time
}
