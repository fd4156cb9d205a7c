package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/raposo-pdv/pdv-api/internal/application/dto"
)

type dashboardService interface {
	GetSummary(ctx context.Context, companyID int64, fromStr, toStr string) (*dto.DashboardSummaryDTO, error)
}

// DashboardHandler maneja el resumen del dashboard.
type DashboardHandler struct {
	uc dashboardService
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc dashboardService) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// GetSummary devuelve faturamento, vendas, ticket médio, gráficos diarios y estoque baixo.
// GET /api/dashboard?data_inicio=AAAA-MM-DD&data_fim=AAAA-MM-DD
//
// Sin fechas se usan los últimos 30 días.
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	summary, err := h.uc.GetSummary(c.UserContext(), GetCompanyID(c), c.Query("data_inicio"), c.Query("data_fim"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(summary)
}
