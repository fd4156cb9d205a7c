// Package period implementa el cierre de caja de cada funcionario: snapshot del período
// abierto, comisión y reinicio del período, además del perfil con las métricas en curso.
package period

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/raposo-pdv/pdv-api/internal/application/dto"
	"github.com/raposo-pdv/pdv-api/internal/application/ports"
	"github.com/raposo-pdv/pdv-api/internal/application/sales"
	"github.com/raposo-pdv/pdv-api/internal/domain"
	"github.com/raposo-pdv/pdv-api/internal/domain/entity"
	domperiod "github.com/raposo-pdv/pdv-api/internal/domain/period"
	"github.com/raposo-pdv/pdv-api/internal/domain/repository"
)

const (
	profileTopProducts = 5
	profileLastSales   = 5
)

// Engine casos de uso del período de vendas.
type Engine struct {
	tx       TxRunner
	users    repository.UserRepository
	periods  repository.ClosedPeriodRepository
	sales    repository.SaleRepository
	verifier CredentialVerifier
	observer Observer
	clock    ports.Clock
	log      zerolog.Logger
}

// NewEngine construye el caso de uso. observer puede ser nil.
func NewEngine(
	tx TxRunner,
	users repository.UserRepository,
	periods repository.ClosedPeriodRepository,
	sales repository.SaleRepository,
	verifier CredentialVerifier,
	observer Observer,
	clock ports.Clock,
	log zerolog.Logger,
) *Engine {
	if observer == nil {
		observer = nopObserver{}
	}
	return &Engine{
		tx:       tx,
		users:    users,
		periods:  periods,
		sales:    sales,
		verifier: verifier,
		observer: observer,
		clock:    clock,
		log:      log,
	}
}

// Close cierra el período abierto del funcionario. Con la contraseña correcta inserta un
// ClosedPeriod con las vendas de [inicio, ahora] y mueve el inicio un microsegundo después
// de ahora, todo en una transacción. Si otro cierre concurrente ya movió el inicio devuelve domain.ErrConflict.
func (uc *Engine) Close(ctx context.Context, userID, companyID int64, password string) (*dto.ClosePeriodResponse, error) {
	if strings.TrimSpace(password) == "" {
		return nil, domain.Invalid("senha", "senha é obrigatória para fechar o período")
	}

	var snapshot *entity.ClosedPeriod
	err := uc.tx.RunPeriod(ctx, func(users repository.UserRepository, periods repository.ClosedPeriodRepository, sales repository.SaleRepository) error {
		u, err := users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if u == nil || u.CompanyID != companyID {
			return domain.ErrUserNotFound
		}
		ok, err := uc.verifier.Verify(ctx, u.ID, password)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrInvalidCredentials
		}

		start := u.PeriodStartedAt
		// Postgres guarda microsegundos: el cierre cubre [start, now] y el período
		// siguiente arranca en now+1µs, así una venda en el instante del cierre no se repite.
		now := uc.clock.Now().Truncate(time.Microsecond)
		if now.Before(start) {
			now = start
		}
		totals, err := sales.TotalsByUser(ctx, companyID, u.ID, start, now)
		if err != nil {
			return err
		}
		snapshot = domperiod.Compute(start, now, totals).Snapshot(companyID, u.ID)
		snapshot.CreatedAt = now
		if err := periods.Create(ctx, snapshot); err != nil {
			return err
		}

		reset, err := users.ResetPeriodStart(ctx, u.ID, start, now.Add(time.Microsecond))
		if err != nil {
			return err
		}
		if !reset {
			return domain.ErrConflict
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.observer.PeriodClosed(snapshot.Revenue, snapshot.Commission)
	uc.log.Info().
		Int64("company_id", companyID).
		Int64("user_id", userID).
		Int64("period_id", snapshot.ID).
		Str("revenue", snapshot.Revenue.StringFixed(2)).
		Str("commission", snapshot.Commission.StringFixed(2)).
		Msg("período fechado")
	return &dto.ClosePeriodResponse{
		Message: "Período fechado com sucesso!",
		Period:  toPeriodResponse(snapshot),
	}, nil
}

// History períodos cerrados del funcionario, más recientes primero.
func (uc *Engine) History(ctx context.Context, userID, companyID int64) ([]dto.PeriodResponse, error) {
	rows, err := uc.periods.ListByUser(ctx, companyID, userID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PeriodResponse, 0, len(rows))
	for _, p := range rows {
		out = append(out, toPeriodResponse(p))
	}
	return out, nil
}

// Profile datos del funcionario y métricas del período abierto. No persiste nada.
func (uc *Engine) Profile(ctx context.Context, userID, companyID int64) (*dto.ProfileResponse, error) {
	u, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil || u.CompanyID != companyID {
		return nil, domain.ErrUserNotFound
	}

	start, now := u.PeriodStartedAt, uc.clock.Now()
	if now.Before(start) {
		now = start
	}
	totals, err := uc.sales.TotalsByUser(ctx, companyID, u.ID, start, now)
	if err != nil {
		return nil, err
	}
	top, err := uc.sales.TopProductsByUser(ctx, companyID, u.ID, start, now, profileTopProducts)
	if err != nil {
		return nil, err
	}
	recent, err := uc.sales.RecentByUser(ctx, companyID, u.ID, profileLastSales)
	if err != nil {
		return nil, err
	}
	daily, err := uc.sales.DailyByUser(ctx, companyID, u.ID, start, now)
	if err != nil {
		return nil, err
	}

	metrics := domperiod.Compute(start, now, totals)
	out := &dto.ProfileResponse{
		User: dto.UserResponse{
			ID:              u.ID,
			CompanyID:       u.CompanyID,
			Name:            u.Name,
			Email:           u.Email,
			Role:            u.Role,
			PeriodStartedAt: u.PeriodStartedAt,
		},
		Metrics:     toPeriodResponse(metrics.Snapshot(companyID, u.ID)),
		TopProducts: ToTopProducts(top),
		LastSales:   make([]dto.SaleListItem, 0, len(recent)),
		DailyChart:  ToDailyPoints(daily),
	}
	for _, s := range recent {
		out.LastSales = append(out.LastSales, sales.ToListItem(s))
	}
	return out, nil
}

func toPeriodResponse(p *entity.ClosedPeriod) dto.PeriodResponse {
	return dto.PeriodResponse{
		ID:            p.ID,
		StartedAt:     p.StartedAt,
		EndedAt:       p.EndedAt,
		Revenue:       p.Revenue,
		SalesCount:    p.SalesCount,
		AverageTicket: p.AverageTicket,
		ItemsSold:     p.ItemsSold,
		Commission:    p.Commission,
	}
}

// ToTopProducts convierte el ranking en su DTO.
func ToTopProducts(rows []entity.ProductRank) []dto.TopProductResponse {
	out := make([]dto.TopProductResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.TopProductResponse{ProductID: r.ProductID, Name: r.Name, Quantity: r.Quantity, Revenue: r.Revenue})
	}
	return out
}

// ToDailyPoints convierte la serie diaria en su DTO (días como YYYY-MM-DD).
func ToDailyPoints(rows []entity.DailyPoint) []dto.DailyPointResponse {
	out := make([]dto.DailyPointResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.DailyPointResponse{Day: r.Day.Format("2006-01-02"), Count: r.Count, Value: r.Value})
	}
	return out
}
