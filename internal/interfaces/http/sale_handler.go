package http

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/raposo-pdv/pdv-api/internal/application/dto"
	"github.com/raposo-pdv/pdv-api/internal/domain"
	"github.com/raposo-pdv/pdv-api/internal/domain/entity"
)

const dateLayout = "2006-01-02"

type saleService interface {
	Create(ctx context.Context, companyID, userID int64, in dto.CreateSaleRequest) (*dto.CreatedSaleResponse, error)
	Cancel(ctx context.Context, companyID, saleID int64) error
	List(ctx context.Context, companyID int64, f entity.SaleFilter) ([]dto.SaleListItem, error)
	Get(ctx context.Context, companyID, id int64) (*dto.SaleResponse, error)
	Receipt(ctx context.Context, companyID, id int64) ([]byte, string, error)
}

// SaleHandler maneja las vendas de la empresa.
type SaleHandler struct {
	uc  saleService
	loc *time.Location
}

// NewSaleHandler construye el handler. loc es la zona usada para interpretar data_inicio/data_fim.
func NewSaleHandler(uc saleService, loc *time.Location) *SaleHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &SaleHandler{uc: uc, loc: loc}
}

// Create godoc
// @Summary      Registrar venda
// @Tags         vendas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSaleRequest  true  "cliente_id, itens, pagamentos"
// @Success      201   {object}  dto.CreatedSaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/vendas [post]
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "corpo inválido")
	}
	out, err := h.uc.Create(c.UserContext(), GetCompanyID(c), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar vendas (mais recentes primeiro)
// @Tags         vendas
// @Security     Bearer
// @Produce      json
// @Param        data_inicio  query  string  false  "AAAA-MM-DD"
// @Param        data_fim     query  string  false  "AAAA-MM-DD (inclusive)"
// @Param        usuario_id   query  int     false  "Funcionário"
// @Param        cliente_id   query  int     false  "Cliente"
// @Success      200  {array}  dto.SaleListItem
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/vendas [get]
func (h *SaleHandler) List(c *fiber.Ctx) error {
	f, err := h.filter(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.List(c.UserContext(), GetCompanyID(c), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Detalhe da venda
// @Tags         vendas
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID da venda"
// @Success      200  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/vendas/{id} [get]
func (h *SaleHandler) GetByID(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return invalidID(c)
	}
	out, err := h.uc.Get(c.UserContext(), GetCompanyID(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Receipt godoc
// @Summary      Recibo da venda em PDF
// @Tags         vendas
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  int  true  "ID da venda"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/vendas/{id}/recibo [get]
func (h *SaleHandler) Receipt(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return invalidID(c)
	}
	pdf, filename, err := h.uc.Receipt(c.UserContext(), GetCompanyID(c), id)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+filename+`"`)
	return c.Send(pdf)
}

// Cancel godoc
// @Summary      Excluir venda (devolve o estoque)
// @Tags         vendas
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID da venda"
// @Success      200  {object}  dto.MessageResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/vendas/{id} [delete]
func (h *SaleHandler) Cancel(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return invalidID(c)
	}
	if err := h.uc.Cancel(c.UserContext(), GetCompanyID(c), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Venda excluída e estoque devolvido."})
}

// filter arma el SaleFilter; data_fim cubre el día entero.
func (h *SaleHandler) filter(c *fiber.Ctx) (entity.SaleFilter, error) {
	var f entity.SaleFilter
	if s := strings.TrimSpace(c.Query("data_inicio")); s != "" {
		t, err := time.ParseInLocation(dateLayout, s, h.loc)
		if err != nil {
			return f, domain.Invalid("data_inicio", "use o formato AAAA-MM-DD")
		}
		f.From = &t
	}
	if s := strings.TrimSpace(c.Query("data_fim")); s != "" {
		t, err := time.ParseInLocation(dateLayout, s, h.loc)
		if err != nil {
			return f, domain.Invalid("data_fim", "use o formato AAAA-MM-DD")
		}
		end := t.Add(24*time.Hour - time.Nanosecond)
		f.To = &end
	}
	var ok bool
	if f.UserID, ok = queryID(c, "usuario_id"); !ok {
		return f, domain.Invalid("usuario_id", "id inválido")
	}
	if f.ClientID, ok = queryID(c, "cliente_id"); !ok {
		return f, domain.Invalid("cliente_id", "id inválido")
	}
	return f, nil
}
