// Package subscription calcula el estado de pago de la mensualidad de una empresa.
package subscription

import (
	"time"

	"github.com/raposo-pdv/pdv-api/internal/domain/entity"
)

// DueDate devuelve el vencimiento del mes de ref: el día acordado (limitado al último día del mes),
// corrido al lunes siguiente si cae sábado o domingo.
func DueDate(ref time.Time, paymentDay int) time.Time {
	if paymentDay < 1 {
		paymentDay = 1
	}
	y, m, _ := ref.Date()
	last := time.Date(y, m+1, 0, 0, 0, 0, 0, ref.Location()).Day()
	if paymentDay > last {
		paymentDay = last
	}
	due := time.Date(y, m, paymentDay, 0, 0, 0, 0, ref.Location())
	switch due.Weekday() {
	case time.Saturday:
		due = due.AddDate(0, 0, 2)
	case time.Sunday:
		due = due.AddDate(0, 0, 1)
	}
	return due
}

// Status devuelve "Em Dia" si hubo pago en el mes de now; si no, "Atrasado" cuando el
// vencimiento ya pasó y "Aguardando Pagamento" en otro caso.
func Status(now time.Time, paymentDay int, lastPaidAt *time.Time) string {
	if lastPaidAt != nil {
		py, pm, _ := lastPaidAt.In(now.Location()).Date()
		ny, nm, _ := now.Date()
		if py == ny && pm == nm {
			return entity.PaymentStatusUpToDate
		}
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if today.After(DueDate(now, paymentDay)) {
		return entity.PaymentStatusOverdue
	}
	return entity.PaymentStatusPending
}
