package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/raposo-pdv/pdv-api/internal/application/dto"
)

type authService interface {
	RegisterCompany(ctx context.Context, in dto.RegisterCompanyRequest) (*dto.RegisterCompanyResponse, error)
	Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error)
	ChangeOwnPassword(ctx context.Context, userID int64, in dto.ChangePasswordRequest) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPasswordWithToken(ctx context.Context, in dto.ResetPasswordRequest) error
}

// AuthHandler maneja registro público, login y contraseñas.
type AuthHandler struct {
	uc authService
}

// NewAuthHandler construye el handler de auth.
func NewAuthHandler(uc authService) *AuthHandler {
	return &AuthHandler{uc: uc}
}

// Register godoc
// @Summary      Cadastro público de empresa (aguarda aprovação)
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterCompanyRequest  true  "nome_empresa, email_contato, senha, telefone_comercial"
// @Success      201   {object}  dto.RegisterCompanyResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/empresas/registrar-publico [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterCompanyRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "corpo inválido")
	}
	out, err := h.uc.RegisterCompany(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Login godoc
// @Summary      Iniciar sessão
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "email, senha"
// @Success      200   {object}  dto.LoginResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/usuarios/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "corpo inválido")
	}
	out, err := h.uc.Login(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ForgotPassword godoc
// @Summary      Solicitar redefinição de senha (resposta idêntica exista ou não o email)
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ForgotPasswordRequest  true  "email"
// @Success      200   {object}  dto.MessageResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/usuarios/esqueci-senha [post]
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var in dto.ForgotPasswordRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "corpo inválido")
	}
	if err := h.uc.RequestPasswordReset(c.UserContext(), in.Email); err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Se o email estiver cadastrado, você receberá um link para redefinir a senha."})
}

// ResetPassword godoc
// @Summary      Redefinir senha com o token recebido por email
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ResetPasswordRequest  true  "token, novaSenha"
// @Success      200   {object}  dto.MessageResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /api/usuarios/redefinir-senha [post]
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var in dto.ResetPasswordRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "corpo inválido")
	}
	if err := h.uc.ResetPasswordWithToken(c.UserContext(), in); err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Senha redefinida com sucesso."})
}

// ChangePassword godoc
// @Summary      Alterar a própria senha
// @Tags         usuarios
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ChangePasswordRequest  true  "senhaAtual, novaSenha"
// @Success      200   {object}  dto.MessageResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /api/usuarios/minha-senha [put]
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	var in dto.ChangePasswordRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "corpo inválido")
	}
	if err := h.uc.ChangeOwnPassword(c.UserContext(), GetUserID(c), in); err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Senha alterada com sucesso."})
}
