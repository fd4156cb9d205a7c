// Package period define el cálculo de cierre de un período de vendas (comisión, ticket medio).
package period

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/raposo-pdv/pdv-api/internal/domain/entity"
)

// CommissionRate tasa fija de comisión sobre el faturamento del período.
var CommissionRate = decimal.RequireFromString("0.35")

// Totals agregados crudos de las vendas de un funcionario en un rango.
// Revenue suma el total de cada venda una sola vez, sin multiplicar por sus ítems.
type Totals struct {
	Revenue    decimal.Decimal
	SalesCount int
	ItemsSold  int
}

// Metrics resultado derivado del período.
type Metrics struct {
	Start         time.Time
	End           time.Time
	Revenue       decimal.Decimal
	SalesCount    int
	ItemsSold     int
	AverageTicket decimal.Decimal
	Commission    decimal.Decimal
}

// Compute aplica la fórmula: comisión = revenue × 0.35, ticket = revenue / vendas (0 sin vendas).
func Compute(start, end time.Time, t Totals) Metrics {
	avg := decimal.Zero
	if t.SalesCount > 0 {
		avg = t.Revenue.Div(decimal.NewFromInt(int64(t.SalesCount))).Round(2)
	}
	return Metrics{
		Start:         start,
		End:           end,
		Revenue:       t.Revenue.Round(2),
		SalesCount:    t.SalesCount,
		ItemsSold:     t.ItemsSold,
		AverageTicket: avg,
		Commission:    t.Revenue.Mul(CommissionRate).Round(2),
	}
}

// Snapshot convierte las métricas en el registro inmutable de cierre.
func (m Metrics) Snapshot(companyID, userID int64) *entity.ClosedPeriod {
	return &entity.ClosedPeriod{
		CompanyID:     companyID,
		UserID:        userID,
		StartedAt:     m.Start,
		EndedAt:       m.End,
		Revenue:       m.Revenue,
		SalesCount:    m.SalesCount,
		ItemsSold:     m.ItemsSold,
		AverageTicket: m.AverageTicket,
		Commission:    m.Commission,
	}
}
