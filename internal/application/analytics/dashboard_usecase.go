// Package analytics contiene el caso de uso del dashboard de la empresa.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/raposo-pdv/pdv-api/internal/application/dto"
	"github.com/raposo-pdv/pdv-api/internal/application/period"
	"github.com/raposo-pdv/pdv-api/internal/application/ports"
	"github.com/raposo-pdv/pdv-api/internal/domain"
	"github.com/raposo-pdv/pdv-api/internal/domain/entity"
	domperiod "github.com/raposo-pdv/pdv-api/internal/domain/period"
	"github.com/raposo-pdv/pdv-api/internal/domain/repository"
)

const (
	dateLayout        = "2006-01-02"
	defaultRangeDays  = 30
	newClientsWindow  = 30 * 24 * time.Hour
	lowStockThreshold = 5
	dashboardTop      = 5
)

// DashboardUseCase genera el resumen de vendas de la empresa.
//
// Fuente de datos: AnalyticsRepository (consultas read-only).
type DashboardUseCase struct {
	analyticsRepo repository.AnalyticsRepository
	clock         ports.Clock
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(analyticsRepo repository.AnalyticsRepository, clock ports.Clock) *DashboardUseCase {
	return &DashboardUseCase{analyticsRepo: analyticsRepo, clock: clock}
}

// GetSummary construye el DashboardSummaryDTO para la empresa en [from, to] (YYYY-MM-DD).
// Sin fechas usa los últimos 30 días. Las consultas corren en paralelo; la primera que
// falla cancela las demás.
func (uc *DashboardUseCase) GetSummary(ctx context.Context, companyID int64, fromStr, toStr string) (*dto.DashboardSummaryDTO, error) {
	now := uc.clock.Now()
	from, to, err := parseRange(fromStr, toStr, now)
	if err != nil {
		return nil, err
	}

	var (
		newClients int
		totals     domperiod.Totals
		daily      []entity.DailyPoint
		lowStock   int
		top        []entity.ProductRank
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := uc.analyticsRepo.NewClientsSince(gctx, companyID, now.Add(-newClientsWindow))
		newClients = n
		return wrap("novos clientes", err)
	})
	g.Go(func() error {
		t, err := uc.analyticsRepo.SalesTotals(gctx, companyID, from, to)
		totals = t
		return wrap("totais de vendas", err)
	})
	g.Go(func() error {
		d, err := uc.analyticsRepo.DailySales(gctx, companyID, from, to)
		daily = d
		return wrap("vendas diárias", err)
	})
	g.Go(func() error {
		n, err := uc.analyticsRepo.CountLowStock(gctx, companyID, lowStockThreshold)
		lowStock = n
		return wrap("estoque baixo", err)
	})
	g.Go(func() error {
		r, err := uc.analyticsRepo.TopProducts(gctx, companyID, from, to, dashboardTop)
		top = r
		return wrap("top produtos", err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	avg := decimal.Zero
	if totals.SalesCount > 0 {
		avg = totals.Revenue.Div(decimal.NewFromInt(int64(totals.SalesCount))).Round(2)
	}
	points := period.ToDailyPoints(daily)
	return &dto.DashboardSummaryDTO{
		NewClients30d: newClients,
		Revenue:       totals.Revenue.Round(2),
		SalesCount:    totals.SalesCount,
		AverageTicket: avg,
		LowStock:      lowStock,
		TopProducts:   period.ToTopProducts(top),
		DailyCount:    points,
		DailyValue:    points,
		From:          from.Format(dateLayout),
		To:            to.Format(dateLayout),
	}, nil
}

// parseRange convierte las fechas en [from 00:00, to 23:59:59.999999999] en la zona de now.
func parseRange(fromStr, toStr string, now time.Time) (time.Time, time.Time, error) {
	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	to := today
	from := today.AddDate(0, 0, -(defaultRangeDays - 1))
	if toStr != "" {
		t, err := time.ParseInLocation(dateLayout, toStr, loc)
		if err != nil {
			return time.Time{}, time.Time{}, domain.Invalid("data_fim", "use o formato AAAA-MM-DD")
		}
		to = t
		if fromStr == "" {
			from = to.AddDate(0, 0, -(defaultRangeDays - 1))
		}
	}
	if fromStr != "" {
		f, err := time.ParseInLocation(dateLayout, fromStr, loc)
		if err != nil {
			return time.Time{}, time.Time{}, domain.Invalid("data_inicio", "use o formato AAAA-MM-DD")
		}
		from = f
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, domain.Invalid("data_fim", "data final anterior à inicial")
	}
	return from, to.Add(24*time.Hour - time.Nanosecond), nil
}

func wrap(what string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("dashboard: %s: %w", what, err)
}
