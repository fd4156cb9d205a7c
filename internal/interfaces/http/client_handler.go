package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/raposo-pdv/pdv-api/internal/application/dto"
)

type clientService interface {
	Create(ctx context.Context, companyID int64, in dto.ClientRequest) (*dto.ClientResponse, error)
	Update(ctx context.Context, companyID, id int64, in dto.ClientRequest) (*dto.ClientResponse, error)
	Delete(ctx context.Context, companyID, id int64) error
	List(ctx context.Context, companyID int64, search string) ([]dto.ClientResponse, error)
	Get(ctx context.Context, companyID, id int64) (*dto.ClientResponse, error)
	Details(ctx context.Context, companyID, id int64) (*dto.ClientDetailsResponse, error)
}

// ClientHandler maneja los clientes de la empresa.
type ClientHandler struct {
	uc clientService
}

// NewClientHandler construye el handler.
func NewClientHandler(uc clientService) *ClientHandler {
	return &ClientHandler{uc: uc}
}

// Create godoc
// @Summary      Cadastrar cliente
// @Tags         clientes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ClientRequest  true  "Dados do cliente"
// @Success      201   {object}  dto.ClientResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/clientes [post]
func (h *ClientHandler) Create(c *fiber.Ctx) error {
	var in dto.ClientRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "corpo inválido")
	}
	out, err := h.uc.Create(c.UserContext(), GetCompanyID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar clientes
// @Tags         clientes
// @Security     Bearer
// @Produce      json
// @Param        busca  query  string  false  "Nome, telefone, email ou CPF"
// @Success      200    {array}  dto.ClientResponse
// @Router       /api/clientes [get]
func (h *ClientHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), GetCompanyID(c), c.Query("busca"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obter cliente
// @Tags         clientes
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID do cliente"
// @Success      200  {object}  dto.ClientResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/clientes/{id} [get]
func (h *ClientHandler) GetByID(c *fiber.Ctx) error {
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

// Details godoc
// @Summary      Cliente com histórico de compras e total a prazo
// @Tags         clientes
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID do cliente"
// @Success      200  {object}  dto.ClientDetailsResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/clientes/{id}/detalhes [get]
func (h *ClientHandler) Details(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return invalidID(c)
	}
	out, err := h.uc.Details(c.UserContext(), GetCompanyID(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Atualizar cliente
// @Tags         clientes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                true  "ID do cliente"
// @Param        body  body  dto.ClientRequest  true  "Dados do cliente"
// @Success      200   {object}  dto.ClientResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/clientes/{id} [put]
func (h *ClientHandler) Update(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return invalidID(c)
	}
	var in dto.ClientRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "corpo inválido")
	}
	out, err := h.uc.Update(c.UserContext(), GetCompanyID(c), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Excluir cliente (não permitido com vendas registradas)
// @Tags         clientes
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID do cliente"
// @Success      200  {object}  dto.MessageResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/clientes/{id} [delete]
func (h *ClientHandler) Delete(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return invalidID(c)
	}
	if err := h.uc.Delete(c.UserContext(), GetCompanyID(c), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Cliente excluído com sucesso."})
}
