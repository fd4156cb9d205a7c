package postgres

import (
	"context"
	"fmt"

	"github.com/raposo-pdv/pdv-api/migrations"
)

// Migrate aplica los scripts de migrations/ en orden. Los scripts son idempotentes.
func Migrate(ctx context.Context, q Querier) error {
	scripts, err := migrations.Scripts()
	if err != nil {
		return fmt.Errorf("leer migraciones: %w", err)
	}
	for i, sql := range scripts {
		// Sin argumentos pgx usa el protocolo simple: admite varias sentencias por script.
		if _, err := q.Exec(ctx, sql); err != nil {
			return fmt.Errorf("migración %d: %w", i+1, err)
		}
	}
	return nil
}
