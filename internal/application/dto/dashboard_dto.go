package dto

import "github.com/shopspring/decimal"

// DashboardSummaryDTO respuesta de GET /api/dashboard.
type DashboardSummaryDTO struct {
	NewClients30d int                  `json:"novos_clientes"`
	Revenue       decimal.Decimal      `json:"faturamento_periodo"`
	SalesCount    int                  `json:"vendas_periodo"`
	AverageTicket decimal.Decimal      `json:"ticket_medio"`
	LowStock      int                  `json:"produtos_estoque_baixo"`
	TopProducts   []TopProductResponse `json:"top_produtos"`
	DailyCount    []DailyPointResponse `json:"grafico_vendas_quantidade"`
	DailyValue    []DailyPointResponse `json:"grafico_vendas_valor"`
	From          string               `json:"data_inicio"`
	To            string               `json:"data_fim"`
}
