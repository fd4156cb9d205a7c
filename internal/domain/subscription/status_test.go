package subscription

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/raposo-pdv/pdv-api/internal/domain/entity"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 0, 0, 0, time.UTC)
}

func TestDueDate_CorrimientoFinDeSemana(t *testing.T) {
	// 2025-03-01 es sábado → lunes 03
	assert.Equal(t, 3, DueDate(day(2025, time.March, 20), 1).Day())
	// 2025-06-01 es domingo → lunes 02
	assert.Equal(t, 2, DueDate(day(2025, time.June, 20), 1).Day())
	// día 31 en febrero → último día del mes (2025-02-28 viernes)
	assert.Equal(t, 28, DueDate(day(2025, time.February, 10), 31).Day())
}

func TestStatus(t *testing.T) {
	paid := day(2025, time.May, 2)
	assert.Equal(t, entity.PaymentStatusUpToDate, Status(day(2025, time.May, 20), 5, &paid))

	lastMonth := day(2025, time.April, 2)
	assert.Equal(t, entity.PaymentStatusOverdue, Status(day(2025, time.May, 20), 5, &lastMonth))
	assert.Equal(t, entity.PaymentStatusPending, Status(day(2025, time.May, 3), 5, &lastMonth))
	assert.Equal(t, entity.PaymentStatusPending, Status(day(2025, time.May, 5), 5, nil))

	// vence sábado 2025-03-01, corrido al lunes 03: el lunes aún no está atrasado
	assert.Equal(t, entity.PaymentStatusPending, Status(day(2025, time.March, 3), 1, nil))
	assert.Equal(t, entity.PaymentStatusOverdue, Status(day(2025, time.March, 4), 1, nil))
}
