// Package ports define los puertos de salida compartidos por los casos de uso.
// Los adaptadores concretos viven en internal/infrastructure.
package ports

import (
	"context"
	"time"
)

// Clock fuente de la hora actual. Las carpetas de fecha de las fotos, los cierres de período y
// la fecha de las vendas salen de aquí para poder fijarla en tests.
type Clock interface {
	Now() time.Time
}

// SystemClock reloj real en la zona horaria configurada.
type SystemClock struct {
	Location *time.Location
}

// Now implementa Clock.
func (c SystemClock) Now() time.Time {
	if c.Location == nil {
		return time.Now()
	}
	return time.Now().In(c.Location)
}

// Mail mensaje saliente.
type Mail struct {
	To      string
	Subject string
	HTML    string
}

// Mailer envía emails (SMTP en producción, solo log en desarrollo).
// El contexto debe llevar un timeout para no bloquear el request.
type Mailer interface {
	Send(ctx context.Context, m Mail) error
}
