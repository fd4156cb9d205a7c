package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/raposo-pdv/pdv-api/internal/application/dto"
)

type companyService interface {
	ListActive(ctx context.Context) ([]dto.CompanyResponse, error)
	ListPending(ctx context.Context) ([]dto.CompanyResponse, error)
	Activate(ctx context.Context, id int64) error
	Deactivate(ctx context.Context, id int64) error
	Details(ctx context.Context, id int64) (*dto.CompanyDetailsResponse, error)
	MyCompany(ctx context.Context, id int64) (*dto.CompanyResponse, error)
	ResetPassword(ctx context.Context, id int64, newPassword string) error
	RecordPayment(ctx context.Context, id int64, in dto.RecordPaymentRequest) (*dto.SubscriptionPaymentResponse, error)
}

// CompanyHandler maneja las peticiones HTTP para empresas: la propia empresa y el back office del superadmin.
type CompanyHandler struct {
	uc companyService
}

// NewCompanyHandler construye el handler inyectando el caso de uso.
func NewCompanyHandler(uc companyService) *CompanyHandler {
	return &CompanyHandler{uc: uc}
}

// Mine godoc
// @Summary      Dados da empresa do usuário autenticado
// @Tags         empresas
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.CompanyResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/empresas/meus-dados [get]
func (h *CompanyHandler) Mine(c *fiber.Ctx) error {
	out, err := h.uc.MyCompany(c.UserContext(), GetCompanyID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ListActive godoc
// @Summary      Empresas ativas com status de pagamento
// @Tags         superadmin
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.CompanyResponse
// @Router       /api/empresas/ativas [get]
func (h *CompanyHandler) ListActive(c *fiber.Ctx) error {
	out, err := h.uc.ListActive(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ListPending godoc
// @Summary      Empresas aguardando aprovação
// @Tags         superadmin
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.CompanyResponse
// @Router       /api/empresas/pendentes [get]
func (h *CompanyHandler) ListPending(c *fiber.Ctx) error {
	out, err := h.uc.ListPending(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Detalhe da empresa com usuários e pagamentos
// @Tags         superadmin
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID da empresa"
// @Success      200  {object}  dto.CompanyDetailsResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/empresas/{id} [get]
func (h *CompanyHandler) GetByID(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return invalidID(c)
	}
	out, err := h.uc.Details(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Activate godoc
// @Summary      Aprovar/ativar empresa
// @Tags         superadmin
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID da empresa"
// @Success      200  {object}  dto.MessageResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/empresas/{id}/ativar [put]
func (h *CompanyHandler) Activate(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return invalidID(c)
	}
	if err := h.uc.Activate(c.UserContext(), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Empresa ativada com sucesso."})
}

// Deactivate godoc
// @Summary      Inativar empresa
// @Tags         superadmin
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID da empresa"
// @Success      200  {object}  dto.MessageResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/empresas/{id}/inativar [put]
func (h *CompanyHandler) Deactivate(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return invalidID(c)
	}
	if err := h.uc.Deactivate(c.UserContext(), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Empresa inativada com sucesso."})
}

// ResetPassword godoc
// @Summary      Redefinir a senha da empresa e do owner
// @Tags         superadmin
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                           true  "ID da empresa"
// @Param        body  body  dto.AdminResetPasswordRequest  true  "novaSenha"
// @Success      200   {object}  dto.MessageResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/empresas/{id}/redefinir-senha [put]
func (h *CompanyHandler) ResetPassword(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return invalidID(c)
	}
	var in dto.AdminResetPasswordRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "corpo inválido")
	}
	if err := h.uc.ResetPassword(c.UserContext(), id, in.New); err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Senha redefinida com sucesso."})
}

// RecordPayment godoc
// @Summary      Registrar pagamento da mensalidade
// @Tags         superadmin
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                       true  "ID da empresa"
// @Param        body  body  dto.RecordPaymentRequest  true  "valor, data_pagamento, referencia"
// @Success      201   {object}  dto.SubscriptionPaymentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/empresas/{id}/pagamentos [post]
func (h *CompanyHandler) RecordPayment(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return invalidID(c)
	}
	var in dto.RecordPaymentRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "corpo inválido")
	}
	out, err := h.uc.RecordPayment(c.UserContext(), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}
