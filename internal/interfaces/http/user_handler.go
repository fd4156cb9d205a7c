package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/raposo-pdv/pdv-api/internal/application/dto"
)

type periodService interface {
	Close(ctx context.Context, userID, companyID int64, password string) (*dto.ClosePeriodResponse, error)
	History(ctx context.Context, userID, companyID int64) ([]dto.PeriodResponse, error)
	Profile(ctx context.Context, userID, companyID int64) (*dto.ProfileResponse, error)
}

type userService interface {
	CreateEmployee(ctx context.Context, companyID int64, in dto.CreateEmployeeRequest) (*dto.UserResponse, error)
	List(ctx context.Context, companyID int64) ([]dto.UserResponse, error)
}

// UserHandler perfil, cierre de período y funcionarios de la empresa.
type UserHandler struct {
	periods periodService
	users   userService
}

// NewUserHandler construye el handler.
func NewUserHandler(periods periodService, users userService) *UserHandler {
	return &UserHandler{periods: periods, users: users}
}

// Profile godoc
// @Summary      Perfil e métricas do período aberto
// @Tags         usuarios
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ProfileResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/usuarios/perfil [get]
func (h *UserHandler) Profile(c *fiber.Ctx) error {
	out, err := h.periods.Profile(c.UserContext(), GetUserID(c), GetCompanyID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ClosePeriod godoc
// @Summary      Fechar o período (confirma com a senha)
// @Tags         usuarios
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ClosePeriodRequest  true  "senha"
// @Success      200   {object}  dto.ClosePeriodResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/usuarios/fechar-periodo [post]
func (h *UserHandler) ClosePeriod(c *fiber.Ctx) error {
	var in dto.ClosePeriodRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "corpo inválido")
	}
	out, err := h.periods.Close(c.UserContext(), GetUserID(c), GetCompanyID(c), in.Password)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// History godoc
// @Summary      Histórico de períodos fechados
// @Tags         usuarios
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.PeriodResponse
// @Router       /api/usuarios/historico-periodos [get]
func (h *UserHandler) History(c *fiber.Ctx) error {
	out, err := h.periods.History(c.UserContext(), GetUserID(c), GetCompanyID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// CreateEmployee godoc
// @Summary      Cadastrar funcionário (somente owner)
// @Tags         usuarios
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateEmployeeRequest  true  "nome, email, senha"
// @Success      201   {object}  dto.UserResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/usuarios [post]
func (h *UserHandler) CreateEmployee(c *fiber.Ctx) error {
	var in dto.CreateEmployeeRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "corpo inválido")
	}
	out, err := h.users.CreateEmployee(c.UserContext(), GetCompanyID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar usuários da empresa
// @Tags         usuarios
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.UserResponse
// @Router       /api/usuarios [get]
func (h *UserHandler) List(c *fiber.Ctx) error {
	out, err := h.users.List(c.UserContext(), GetCompanyID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
